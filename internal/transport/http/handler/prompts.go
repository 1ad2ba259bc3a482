package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"testforge/internal/app"
	"testforge/internal/transport/http/response"
)

type PromptHandler struct {
	promptService *app.PromptService
}

type StorePromptRequest struct {
	Title        string `json:"title" binding:"required"`
	Feature      string `json:"feature" binding:"required"`
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt" binding:"required"`
}

func NewPromptHandler(promptService *app.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

func (h *PromptHandler) Store(c *gin.Context) {
	var req StorePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	sp, err := h.promptService.Store(req.Title, req.Feature, req.SystemPrompt, req.UserPrompt)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "title, feature and user_prompt are required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "store prompt failed")
		}
		return
	}
	response.OK(c, sp)
}

func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.promptService.List(c.Query("title"), c.Query("feature"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "title is required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list prompts failed")
		}
		return
	}
	response.OK(c, gin.H{"prompts": prompts})
}
