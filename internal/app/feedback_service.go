package app

import (
	"fmt"
	"strings"

	"testforge/internal/model"
)

// FeedbackService records user corrections for later prompt injection.
// Entries are append-only; newer feedback supersedes older entries for
// the same key without deleting them.
type FeedbackService struct {
	repo   FeedbackStore
	window int
}

func NewFeedbackService(repo FeedbackStore, window int) *FeedbackService {
	if window <= 0 {
		window = 3
	}
	return &FeedbackService{repo: repo, window: window}
}

// Record appends one feedback entry. A write failure never rolls back
// a generation that was already delivered.
func (s *FeedbackService) Record(productTitle, feature, body, previousTestCase string) (*model.Feedback, error) {
	productTitle = strings.TrimSpace(productTitle)
	feature = strings.TrimSpace(feature)
	body = strings.TrimSpace(body)
	if productTitle == "" || feature == "" || body == "" {
		return nil, ErrInvalidInput
	}

	fb := &model.Feedback{
		ProductTitle:     productTitle,
		Feature:          feature,
		Body:             body,
		PreviousTestCase: previousTestCase,
	}
	if err := s.repo.Create(fb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedbackStore, err)
	}
	return fb, nil
}

// List returns the recent feedback window for a key, oldest first.
func (s *FeedbackService) List(productTitle, feature string) ([]model.Feedback, error) {
	productTitle = strings.TrimSpace(productTitle)
	feature = strings.TrimSpace(feature)
	if productTitle == "" || feature == "" {
		return nil, ErrInvalidInput
	}
	entries, err := s.repo.ListByKey(productTitle, feature, s.window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedbackStore, err)
	}
	return entries, nil
}
