package app

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")

	ErrContextNotFound  = errors.New("no documents found for product")
	ErrSessionNotFound  = errors.New("qa session not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrPromptNotFound   = errors.New("stored prompt not found")
	ErrFeedbackStore    = errors.New("feedback store failure")
)

// GenerationFailedError reports that a generation cycle exhausted its
// retry budget without producing parseable output. LastRawOutput keeps
// the oracle's final answer so the caller can inspect what went wrong.
type GenerationFailedError struct {
	Attempts      int
	Reason        string
	LastRawOutput string
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %s", e.Attempts, e.Reason)
}
