package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"testforge/internal/ai"
	"testforge/internal/app"
	"testforge/internal/prompt"
	"testforge/internal/transport/http/response"
)

type GenerateHandler struct {
	genService *app.GenerationService
}

type GenerateRequest struct {
	Query          string `json:"query" binding:"required"`
	OperationType  string `json:"operation_type" binding:"required"`
	GenerationType string `json:"generation_type" binding:"required"`
	ProductA       string `json:"product_a" binding:"required"`
	ProductB       string `json:"product_b"`
	MaxTestCases   int    `json:"max_test_cases"`
}

type RegenerateRequest struct {
	GenerateRequest
	Feedback         string `json:"feedback" binding:"required"`
	PreviousTestCase string `json:"previous_test_case"`
}

func NewGenerateHandler(genService *app.GenerationService) *GenerateHandler {
	return &GenerateHandler{genService: genService}
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.genService.Generate(c.Request.Context(), toGenerateInput(req))
	if err != nil {
		writeGenerateError(c, err)
		return
	}
	response.OK(c, result)
}

// Regenerate records the feedback and runs a fresh generation cycle.
func (h *GenerateHandler) Regenerate(c *gin.Context) {
	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.genService.Regenerate(c.Request.Context(), toGenerateInput(req.GenerateRequest), req.Feedback, req.PreviousTestCase)
	if err != nil {
		writeGenerateError(c, err)
		return
	}
	response.OK(c, result)
}

func toGenerateInput(req GenerateRequest) app.GenerateInput {
	return app.GenerateInput{
		Query:        req.Query,
		Operation:    prompt.OperationType(req.OperationType),
		Generation:   prompt.GenerationType(req.GenerationType),
		ProductA:     req.ProductA,
		ProductB:     req.ProductB,
		MaxTestCases: req.MaxTestCases,
	}
}

func writeGenerateError(c *gin.Context, err error) {
	var genErr *app.GenerationFailedError
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid generation request")
	case errors.Is(err, app.ErrFeedbackStore):
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "storing feedback failed")
	case errors.Is(err, ai.ErrOracleUnavailable):
		response.Error(c, http.StatusServiceUnavailable, response.CodeOracleUnavailable, "model backend unavailable, retry later")
	case errors.As(err, &genErr):
		c.JSON(http.StatusInternalServerError, response.APIResponse{
			Code:    response.CodeGenerationFailed,
			Message: genErr.Error(),
			Data: gin.H{
				"attempts":        genErr.Attempts,
				"last_raw_output": genErr.LastRawOutput,
			},
		})
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generation failed")
	}
}
