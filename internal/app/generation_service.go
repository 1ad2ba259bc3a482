package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"testforge/internal/ai"
	"testforge/internal/artifact"
	"testforge/internal/model"
	"testforge/internal/prompt"
)

// GenState is one stage of a generation request. The visited states
// are recorded in the result so a caller can see how a request moved
// through the pipeline.
type GenState string

const (
	StateReceived       GenState = "received"
	StateBuildingPrompt GenState = "building_prompt"
	StateInvoking       GenState = "invoking"
	StateParsing        GenState = "parsing"
	StateDelivered      GenState = "delivered"
	StateFailed         GenState = "failed"
)

// storedPromptMinSimilarity is the feature-text similarity a stored
// prompt must reach to override the built-in templates.
const storedPromptMinSimilarity = 0.2

// Oracle is the language-model surface the pipeline invokes.
type Oracle interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// ContextRetriever supplies document snippets for a product.
type ContextRetriever interface {
	Retrieve(ctx context.Context, productTitle, query string, topK int) ([]string, error)
}

// FeedbackStore is the feedback surface the pipeline needs.
type FeedbackStore interface {
	Create(fb *model.Feedback) error
	ListByKey(productTitle, feature string, limit int) ([]model.Feedback, error)
}

// PromptStore looks up user-authored prompt overrides.
type PromptStore interface {
	ListByTitle(title, feature string) ([]model.StoredPrompt, error)
}

// RecordPublisher hands delivered generations to the async audit trail.
type RecordPublisher interface {
	Publish(ctx context.Context, record model.GenerationRecord) error
}

// GenerationService runs the generation cycle: retrieve context, build
// the prompt, invoke the oracle, parse the output, and retry with a
// corrective prompt when the output is malformed.
type GenerationService struct {
	retriever      ContextRetriever
	builder        *prompt.Builder
	oracle         Oracle
	feedbackRepo   FeedbackStore
	promptRepo     PromptStore
	publisher      RecordPublisher // nil disables the audit trail
	retryBudget    int
	topK           int
	feedbackWindow int
}

func NewGenerationService(
	retriever ContextRetriever,
	builder *prompt.Builder,
	oracle Oracle,
	feedbackRepo FeedbackStore,
	promptRepo PromptStore,
	publisher RecordPublisher,
	retryBudget, topK, feedbackWindow int,
) *GenerationService {
	if retryBudget < 0 {
		retryBudget = 0
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if feedbackWindow <= 0 {
		feedbackWindow = 3
	}
	return &GenerationService{
		retriever:      retriever,
		builder:        builder,
		oracle:         oracle,
		feedbackRepo:   feedbackRepo,
		promptRepo:     promptRepo,
		publisher:      publisher,
		retryBudget:    retryBudget,
		topK:           topK,
		feedbackWindow: feedbackWindow,
	}
}

// GenerateInput is one generation request. Query doubles as the
// feature under test and the retrieval query.
type GenerateInput struct {
	Query        string
	Operation    prompt.OperationType
	Generation   prompt.GenerationType
	ProductA     string
	ProductB     string
	MaxTestCases int
}

// GenerateResult carries the delivered artifacts plus how the request
// got there.
type GenerateResult struct {
	Artifacts []artifact.TestArtifact `json:"artifacts"`
	Attempts  int                     `json:"attempts"`
	Trace     []GenState              `json:"trace"`
}

// Generate runs one full cycle. Malformed oracle output is retried
// with a corrective prompt up to the parse retry budget; an
// unavailable oracle fails immediately without further retries here.
func (s *GenerationService) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	if err := validateGenerateInput(input); err != nil {
		return nil, err
	}

	trace := []GenState{StateReceived, StateBuildingPrompt}

	built, err := s.buildPrompt(ctx, input)
	if err != nil {
		return nil, err
	}

	// A single-case request yields exactly one artifact no matter how
	// many cases the model produced; a suite is capped at the requested
	// size or the stated default.
	maxArtifacts := 1
	if input.Generation == prompt.GenTestSuite {
		maxArtifacts = input.MaxTestCases
		if maxArtifacts <= 0 {
			maxArtifacts = prompt.DefaultMaxTestCases
		}
	}

	var lastRaw, lastReason string
	maxAttempts := s.retryBudget + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		trace = append(trace, StateInvoking)
		raw, err := s.oracle.Complete(ctx, []ai.ChatMessage{
			{Role: "system", Content: built.System},
			{Role: "user", Content: built.User},
		})
		if err != nil {
			trace = append(trace, StateFailed)
			if errors.Is(err, ai.ErrOracleUnavailable) {
				return &GenerateResult{Attempts: attempt, Trace: trace}, err
			}
			return &GenerateResult{Attempts: attempt, Trace: trace}, fmt.Errorf("oracle invocation failed: %w", err)
		}

		trace = append(trace, StateParsing)
		artifacts, err := artifact.Parse(raw, maxArtifacts)
		if err == nil {
			trace = append(trace, StateDelivered)
			result := &GenerateResult{Artifacts: artifacts, Attempts: attempt, Trace: trace}
			s.publishRecord(ctx, input, result, raw)
			return result, nil
		}

		var parseErr *artifact.ParseError
		if !errors.As(err, &parseErr) {
			trace = append(trace, StateFailed)
			return &GenerateResult{Attempts: attempt, Trace: trace}, err
		}

		lastRaw = raw
		lastReason = parseErr.Reason
		if attempt < maxAttempts {
			built = s.builder.BuildCorrective(built, raw)
		}
	}

	trace = append(trace, StateFailed)
	return &GenerateResult{Attempts: maxAttempts, Trace: trace}, &GenerationFailedError{
		Attempts:      maxAttempts,
		Reason:        lastReason,
		LastRawOutput: lastRaw,
	}
}

// Regenerate records the user's correction and runs a fresh cycle with
// the new feedback merged into the prompt. A feedback write failure
// aborts before any oracle cost is spent.
func (s *GenerationService) Regenerate(ctx context.Context, input GenerateInput, feedbackBody, previousTestCase string) (*GenerateResult, error) {
	feedbackBody = strings.TrimSpace(feedbackBody)
	if feedbackBody == "" {
		return nil, ErrInvalidInput
	}
	if err := validateGenerateInput(input); err != nil {
		return nil, err
	}

	fb := &model.Feedback{
		ProductTitle:     input.ProductA,
		Feature:          input.Query,
		Body:             feedbackBody,
		PreviousTestCase: previousTestCase,
	}
	if err := s.feedbackRepo.Create(fb); err != nil {
		return nil, fmt.Errorf("store feedback failed: %w", err)
	}
	return s.Generate(ctx, input)
}

func (s *GenerationService) buildPrompt(ctx context.Context, input GenerateInput) (prompt.Prompt, error) {
	q := prompt.Query{
		Operation:    input.Operation,
		Generation:   input.Generation,
		Feature:      input.Query,
		ProductA:     input.ProductA,
		ProductB:     input.ProductB,
		MaxTestCases: input.MaxTestCases,
	}

	contextA := s.retrieveOrDegrade(ctx, input.ProductA, input.Query)
	var contextB []string
	if input.Operation == prompt.OpCompare {
		contextB = s.retrieveOrDegrade(ctx, input.ProductB, input.Query)
	}

	feedback, err := s.feedbackRepo.ListByKey(input.ProductA, input.Query, s.feedbackWindow)
	if err != nil {
		return prompt.Prompt{}, fmt.Errorf("load feedback failed: %w", err)
	}

	if sp := s.lookupStoredPrompt(input.ProductA, input.Query); sp != nil {
		return s.builder.BuildFromStored(*sp, q, contextA, contextB, feedback), nil
	}
	return s.builder.Build(q, contextA, contextB, feedback)
}

// retrieveOrDegrade never fails the request: a missing document or a
// retrieval error degrades to model-only generation.
func (s *GenerationService) retrieveOrDegrade(ctx context.Context, productTitle, query string) []string {
	snippets, err := s.retriever.Retrieve(ctx, productTitle, query, s.topK)
	if err != nil {
		if !errors.Is(err, ErrContextNotFound) {
			log.Printf("context retrieval for %q failed, degrading to model-only generation: %v", productTitle, err)
		}
		return nil
	}
	return snippets
}

// lookupStoredPrompt returns the stored prompt whose feature text best
// matches the query, or nil when none clears the similarity threshold.
func (s *GenerationService) lookupStoredPrompt(title, feature string) *model.StoredPrompt {
	if s.promptRepo == nil {
		return nil
	}
	stored, err := s.promptRepo.ListByTitle(title, "")
	if err != nil {
		log.Printf("load stored prompts for %q failed, using default templates: %v", title, err)
		return nil
	}

	var best *model.StoredPrompt
	bestScore := storedPromptMinSimilarity
	for i := range stored {
		score := textSimilarity(stored[i].Feature, feature)
		if score >= bestScore {
			best = &stored[i]
			bestScore = score
		}
	}
	return best
}

func (s *GenerationService) publishRecord(ctx context.Context, input GenerateInput, result *GenerateResult, raw string) {
	if s.publisher == nil {
		return
	}
	record := model.GenerationRecord{
		ProductTitle:   input.ProductA,
		Feature:        input.Query,
		OperationType:  string(input.Operation),
		GenerationType: string(input.Generation),
		ArtifactCount:  len(result.Artifacts),
		Attempts:       result.Attempts,
		Output:         raw,
	}
	if err := s.publisher.Publish(ctx, record); err != nil {
		log.Printf("publish generation record failed: %v", err)
	}
}

func validateGenerateInput(input GenerateInput) error {
	if strings.TrimSpace(input.Query) == "" || strings.TrimSpace(input.ProductA) == "" {
		return ErrInvalidInput
	}
	switch input.Operation {
	case prompt.OpExisting, prompt.OpNew:
	case prompt.OpCompare:
		if strings.TrimSpace(input.ProductB) == "" {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	switch input.Generation {
	case prompt.GenTestCase, prompt.GenTestSuite:
	default:
		return ErrInvalidInput
	}
	if input.MaxTestCases < 0 {
		return ErrInvalidInput
	}
	return nil
}

// textSimilarity is a bigram Dice coefficient over lowercased runes,
// in [0,1]. Short strings fall back to exact comparison.
func textSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	bigramsA := runeBigrams(a)
	bigramsB := runeBigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}

	counts := make(map[string]int, len(bigramsA))
	for _, bg := range bigramsA {
		counts[bg]++
	}
	overlap := 0
	for _, bg := range bigramsB {
		if counts[bg] > 0 {
			counts[bg]--
			overlap++
		}
	}
	return 2 * float64(overlap) / float64(len(bigramsA)+len(bigramsB))
}

func runeBigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}
