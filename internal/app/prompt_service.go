package app

import (
	"strings"

	"testforge/internal/model"
	"testforge/internal/repository"
)

// PromptService manages user-authored prompt pairs that override the
// built-in templates for a product/feature.
type PromptService struct {
	repo *repository.PromptRepository
}

func NewPromptService(repo *repository.PromptRepository) *PromptService {
	return &PromptService{repo: repo}
}

// Store saves a prompt pair for a product title and feature.
func (s *PromptService) Store(title, feature, systemPrompt, userPrompt string) (*model.StoredPrompt, error) {
	title = strings.TrimSpace(title)
	feature = strings.TrimSpace(feature)
	userPrompt = strings.TrimSpace(userPrompt)
	if title == "" || feature == "" || userPrompt == "" {
		return nil, ErrInvalidInput
	}

	sp := &model.StoredPrompt{
		Title:        title,
		Feature:      feature,
		SystemPrompt: strings.TrimSpace(systemPrompt),
		UserPrompt:   userPrompt,
	}
	if err := s.repo.Create(sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// List returns stored prompts for a title, newest first, optionally
// filtered by feature.
func (s *PromptService) List(title, feature string) ([]model.StoredPrompt, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByTitle(title, strings.TrimSpace(feature))
}
