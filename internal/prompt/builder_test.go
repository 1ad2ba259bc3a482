package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testforge/internal/model"
)

func newTestBuilder() *Builder {
	return NewBuilder(DefaultTemplates())
}

func TestBuildExistingTestCase(t *testing.T) {
	b := newTestBuilder()
	q := Query{
		Operation:  OpExisting,
		Generation: GenTestCase,
		Feature:    "login",
		ProductA:   "Widget1",
	}
	p, err := b.Build(q, []string{"Users sign in with email.", "Sessions last 24h."}, nil, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, p.System)
	assert.Contains(t, p.User, "Widget1")
	assert.Contains(t, p.User, `"login"`)
	assert.Contains(t, p.User, "Users sign in with email.")
	assert.Contains(t, p.User, "Sessions last 24h.")
	assert.Contains(t, p.User, "Test Case N:")
	assert.NotContains(t, p.User, "MUST ADDRESS")
	assert.NotContains(t, p.User, "{{")
}

func TestBuildSuiteStatesMaxCases(t *testing.T) {
	b := newTestBuilder()
	q := Query{
		Operation:    OpNew,
		Generation:   GenTestSuite,
		Feature:      "export",
		ProductA:     "Widget1",
		MaxTestCases: 7,
	}
	p, err := b.Build(q, nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, p.User, "at most 7 test cases")
}

func TestBuildEmptyContextInsertsMarker(t *testing.T) {
	b := newTestBuilder()
	q := Query{Operation: OpExisting, Generation: GenTestCase, Feature: "login", ProductA: "Widget1"}
	p, err := b.Build(q, nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, p.User, NoContextMarker)
}

func TestBuildCompareUsesBothContexts(t *testing.T) {
	b := newTestBuilder()
	q := Query{
		Operation:  OpCompare,
		Generation: GenTestSuite,
		Feature:    "sync",
		ProductA:   "Widget1",
		ProductB:   "Widget2",
	}
	p, err := b.Build(q, []string{"Widget1 syncs hourly."}, []string{"Widget2 syncs instantly."}, nil)
	require.NoError(t, err)

	posA := strings.Index(p.User, "Widget1 syncs hourly.")
	posB := strings.Index(p.User, "Widget2 syncs instantly.")
	require.GreaterOrEqual(t, posA, 0)
	require.GreaterOrEqual(t, posB, 0)
	assert.Less(t, posA, posB)
	assert.Contains(t, p.User, "Widget2")
}

func TestBuildFeedbackOrderedOldestFirst(t *testing.T) {
	b := newTestBuilder()
	q := Query{Operation: OpExisting, Generation: GenTestCase, Feature: "login", ProductA: "Widget1"}
	feedback := []model.Feedback{
		{Body: "add boundary values"},
		{Body: "missed edge case X"},
	}
	p, err := b.Build(q, nil, nil, feedback)
	require.NoError(t, err)

	assert.Contains(t, p.User, "MUST ADDRESS")
	posOld := strings.Index(p.User, "add boundary values")
	posNew := strings.Index(p.User, "missed edge case X")
	require.GreaterOrEqual(t, posOld, 0)
	require.GreaterOrEqual(t, posNew, 0)
	assert.Less(t, posOld, posNew)
}

func TestBuildUnknownPairFails(t *testing.T) {
	b := newTestBuilder()
	q := Query{Operation: OperationType("bogus"), Generation: GenTestCase}
	_, err := b.Build(q, nil, nil, nil)
	require.Error(t, err)
}

func TestBuildFromStoredAppendsContextAndFeedback(t *testing.T) {
	b := newTestBuilder()
	sp := model.StoredPrompt{
		SystemPrompt: "You are a QA lead.",
		UserPrompt:   "Write tests for the checkout flow.",
	}
	q := Query{Operation: OpExisting, Generation: GenTestCase, Feature: "checkout", ProductA: "Shop"}
	p := b.BuildFromStored(sp, q, []string{"Checkout takes card payments."}, nil, []model.Feedback{{Body: "cover refunds"}})

	assert.Equal(t, "You are a QA lead.", p.System)
	assert.Contains(t, p.User, "Write tests for the checkout flow.")
	assert.Contains(t, p.User, "Checkout takes card payments.")
	assert.Contains(t, p.User, "cover refunds")
}

func TestBuildFromStoredKeepsPlaceholders(t *testing.T) {
	b := newTestBuilder()
	sp := model.StoredPrompt{
		UserPrompt: "Docs:\n{{context}}\n{{feedback}}\nWrite tests for {{feature}}.",
	}
	q := Query{Operation: OpExisting, Generation: GenTestCase, Feature: "checkout", ProductA: "Shop"}
	p := b.BuildFromStored(sp, q, []string{"Snippet."}, nil, nil)

	assert.Contains(t, p.User, "Snippet.")
	assert.Contains(t, p.User, "Write tests for checkout.")
	// Placeholders were substituted, not duplicated.
	assert.Equal(t, 1, strings.Count(p.User, "Snippet."))
}

func TestBuildCorrectiveCarriesPreviousOutput(t *testing.T) {
	b := newTestBuilder()
	prev := Prompt{System: "sys", User: "original request"}
	p := b.BuildCorrective(prev, "garbage that failed to parse")

	assert.Equal(t, "sys", p.System)
	assert.Contains(t, p.User, "original request")
	assert.Contains(t, p.User, "garbage that failed to parse")
	assert.Contains(t, p.User, "could not be parsed")
}
