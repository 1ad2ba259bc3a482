package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"testforge/internal/ai"
	"testforge/internal/app"
	"testforge/internal/transport/http/response"
)

type QAHandler struct {
	qaService *app.QAService
}

type AskRequest struct {
	SessionID string   `json:"session_id" binding:"required"`
	Question  string   `json:"question" binding:"required"`
	Titles    []string `json:"titles"`
}

func NewQAHandler(qaService *app.QAService) *QAHandler {
	return &QAHandler{qaService: qaService}
}

func (h *QAHandler) CreateSession(c *gin.Context) {
	sessionID, err := h.qaService.StartSession(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		return
	}
	response.OK(c, gin.H{"session_id": sessionID})
}

func (h *QAHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.qaService.Ask(c.Request.Context(), app.AskInput{
		SessionID: req.SessionID,
		Question:  req.Question,
		Titles:    req.Titles,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid question")
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found or expired")
		case errors.Is(err, ai.ErrOracleUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeOracleUnavailable, "model backend unavailable, retry later")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *QAHandler) Transcript(c *gin.Context) {
	sessionID := c.Query("session_id")
	turns, err := h.qaService.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		writeQALookupError(c, err)
		return
	}
	response.OK(c, gin.H{"turns": turns})
}

// Export returns the transcript as downloadable plain text.
func (h *QAHandler) Export(c *gin.Context) {
	sessionID := c.Query("session_id")
	text, err := h.qaService.ExportTranscript(c.Request.Context(), sessionID)
	if err != nil {
		writeQALookupError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=transcript.txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *QAHandler) EndSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.qaService.EndSession(c.Request.Context(), sessionID); err != nil {
		writeQALookupError(c, err)
		return
	}
	response.OK(c, nil)
}

func writeQALookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "session_id is required")
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found or expired")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "session lookup failed")
	}
}
