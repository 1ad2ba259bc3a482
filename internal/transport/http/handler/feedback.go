package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"testforge/internal/app"
	"testforge/internal/transport/http/response"
)

type FeedbackHandler struct {
	fbService *app.FeedbackService
}

type StoreFeedbackRequest struct {
	ProductTitle     string `json:"product_title" binding:"required"`
	Feature          string `json:"feature" binding:"required"`
	Feedback         string `json:"feedback" binding:"required"`
	PreviousTestCase string `json:"previous_test_case"`
}

func NewFeedbackHandler(fbService *app.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{fbService: fbService}
}

func (h *FeedbackHandler) Store(c *gin.Context) {
	var req StoreFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	fb, err := h.fbService.Record(req.ProductTitle, req.Feature, req.Feedback, req.PreviousTestCase)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "product_title, feature and feedback are required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "store feedback failed")
		}
		return
	}
	response.OK(c, fb)
}

func (h *FeedbackHandler) List(c *gin.Context) {
	entries, err := h.fbService.List(c.Query("product_title"), c.Query("feature"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "product_title and feature are required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list feedback failed")
		}
		return
	}
	response.OK(c, gin.H{"feedback": entries})
}
