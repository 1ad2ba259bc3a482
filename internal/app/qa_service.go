package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"testforge/internal/ai"
	"testforge/internal/model"
)

// TurnStore holds the turns of a Q&A session.
type TurnStore interface {
	GetTurns(ctx context.Context, sessionID string) ([]model.ConversationTurn, bool, error)
	SetTurns(ctx context.Context, sessionID string, turns []model.ConversationTurn) error
	DeleteTurns(ctx context.Context, sessionID string) error
}

// QAService answers free-form questions about uploaded documentation,
// keeping a bounded conversation history per session.
type QAService struct {
	retriever       ContextRetriever
	oracle          Oracle
	turns           TurnStore
	topK            int
	maxContextTurns int
}

func NewQAService(retriever ContextRetriever, oracle Oracle, turns TurnStore, topK, maxContextTurns int) *QAService {
	if topK <= 0 {
		topK = defaultTopK
	}
	if maxContextTurns <= 0 {
		maxContextTurns = 10
	}
	return &QAService{
		retriever:       retriever,
		oracle:          oracle,
		turns:           turns,
		topK:            topK,
		maxContextTurns: maxContextTurns,
	}
}

// StartSession creates an empty session and returns its ID.
func (s *QAService) StartSession(ctx context.Context) (string, error) {
	sessionID := uuid.NewString()
	if err := s.turns.SetTurns(ctx, sessionID, []model.ConversationTurn{}); err != nil {
		return "", err
	}
	return sessionID, nil
}

// AskInput is one question within a session. Titles scopes retrieval
// to the named products; empty means no document context.
type AskInput struct {
	SessionID string
	Question  string
	Titles    []string
}

// AskResult is the answer plus the context snippets it was grounded on.
type AskResult struct {
	Answer   string   `json:"answer"`
	Snippets []string `json:"snippets"`
}

// Ask retrieves context for the question, replays the recent turn
// window, invokes the oracle and appends the new turn to the session.
func (s *QAService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" || strings.TrimSpace(input.SessionID) == "" {
		return nil, ErrInvalidInput
	}

	turns, found, err := s.turns.GetTurns(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	var snippets []string
	for _, title := range input.Titles {
		got, err := s.retriever.Retrieve(ctx, title, question, s.topK)
		if err != nil {
			if errors.Is(err, ErrContextNotFound) {
				continue
			}
			log.Printf("qa retrieval for %q failed, answering without it: %v", title, err)
			continue
		}
		snippets = append(snippets, got...)
	}

	messages := s.buildMessages(question, snippets, turns)
	answer, err := s.oracle.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)

	turns = append(turns, model.ConversationTurn{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
	if err := s.turns.SetTurns(ctx, input.SessionID, turns); err != nil {
		// The answer is already produced; losing the history write
		// should not fail the request.
		log.Printf("persist qa turn failed: %v", err)
	}

	return &AskResult{Answer: answer, Snippets: snippets}, nil
}

// Transcript returns all turns of a session, oldest first.
func (s *QAService) Transcript(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidInput
	}
	turns, found, err := s.turns.GetTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return turns, nil
}

// EndSession discards a session and its turns.
func (s *QAService) EndSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidInput
	}
	return s.turns.DeleteTurns(ctx, sessionID)
}

// buildMessages replays the recent turn window ahead of the new
// question so follow-ups stay coherent without unbounded prompts.
func (s *QAService) buildMessages(question string, snippets []string, turns []model.ConversationTurn) []ai.ChatMessage {
	systemContent := "You are a helpful assistant. Answer the user's question based only on the provided documentation context. If the context does not contain enough information, say so. Do not make up facts."

	var sb strings.Builder
	if len(snippets) > 0 {
		sb.WriteString("Context:")
		for _, snippet := range snippets {
			sb.WriteString("\n---\n")
			sb.WriteString(snippet)
		}
		sb.WriteString("\n---\n\n")
	} else {
		sb.WriteString("No documentation context was found for this question; say so if you cannot answer from general knowledge of the conversation.\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)

	if len(turns) > s.maxContextTurns {
		turns = turns[len(turns)-s.maxContextTurns:]
	}

	messages := make([]ai.ChatMessage, 0, 2*len(turns)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: systemContent})
	for _, turn := range turns {
		messages = append(messages, ai.ChatMessage{Role: "user", Content: turn.Question})
		messages = append(messages, ai.ChatMessage{Role: "assistant", Content: turn.Answer})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: sb.String()})
	return messages
}

// ExportTranscript renders a session as plain text for download.
func (s *QAService) ExportTranscript(ctx context.Context, sessionID string) (string, error) {
	turns, err := s.Transcript(ctx, sessionID)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i, turn := range turns {
		fmt.Fprintf(&sb, "Q%d: %s\nA%d: %s\n\n", i+1, turn.Question, i+1, turn.Answer)
	}
	return strings.TrimSpace(sb.String()), nil
}
