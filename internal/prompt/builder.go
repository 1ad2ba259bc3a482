package prompt

import (
	"fmt"
	"strings"

	"testforge/internal/model"
)

// NoContextMarker replaces the context block when retrieval found
// nothing, so the oracle is told explicitly rather than handed an
// empty string.
const NoContextMarker = "(no relevant documentation was found; state assumptions explicitly in each test case)"

// DefaultMaxTestCases is the suite size bound stated in the prompt when
// the request does not name one. Callers enforce the same bound on the
// parsed output.
const DefaultMaxTestCases = 10

// Query describes one generation request after input validation.
type Query struct {
	Operation    OperationType
	Generation   GenerationType
	Feature      string
	ProductA     string
	ProductB     string // compare only
	MaxTestCases int    // suites only; 0 means no limit stated
}

// Prompt is the fully assembled pair handed to the oracle.
type Prompt struct {
	System string
	User   string
}

// Builder assembles prompts from templates, retrieved context and
// prior feedback. It holds no mutable state and is safe for
// concurrent use.
type Builder struct {
	templates *TemplateSet
}

func NewBuilder(templates *TemplateSet) *Builder {
	return &Builder{templates: templates}
}

// Build assembles the prompt for a query. contextA carries the
// retrieved snippets for the primary product; contextB is only
// consulted for compare operations. Feedback entries must be ordered
// oldest first.
func (b *Builder) Build(q Query, contextA, contextB []string, feedback []model.Feedback) (Prompt, error) {
	tmpl, err := b.templates.Lookup(q.Operation, q.Generation)
	if err != nil {
		return Prompt{}, err
	}
	return b.render(tmpl, q, contextA, contextB, feedback), nil
}

// BuildFromStored assembles a prompt from a user-authored template
// pair instead of the built-in set. Placeholders the stored prompt
// does not carry are simply not substituted; a stored prompt without
// a {{context}} placeholder gets the context appended so retrieval is
// never silently discarded.
func (b *Builder) BuildFromStored(sp model.StoredPrompt, q Query, contextA, contextB []string, feedback []model.Feedback) Prompt {
	tmpl := Template{System: sp.SystemPrompt, User: sp.UserPrompt}
	if !strings.Contains(tmpl.User, "{{context}}") && !strings.Contains(tmpl.User, "{{context_a}}") {
		tmpl.User += "\n\nProduct documentation:\n{{context}}"
	}
	if !strings.Contains(tmpl.User, "{{feedback}}") {
		tmpl.User += "\n{{feedback}}"
	}
	return b.render(tmpl, q, contextA, contextB, feedback)
}

// BuildCorrective wraps a previously built prompt after a parse
// failure: the oracle is shown its malformed output and told to
// answer again in the required format.
func (b *Builder) BuildCorrective(prev Prompt, rawOutput string) Prompt {
	var sb strings.Builder
	sb.WriteString(prev.User)
	sb.WriteString("\n\nYour previous answer could not be parsed:\n---\n")
	sb.WriteString(strings.TrimSpace(rawOutput))
	sb.WriteString("\n---\nAnswer again following the required format exactly, with no other text.")
	return Prompt{System: prev.System, User: sb.String()}
}

func (b *Builder) render(tmpl Template, q Query, contextA, contextB []string, feedback []model.Feedback) Prompt {
	r := strings.NewReplacer(
		"{{context}}", contextBlock(contextA),
		"{{context_a}}", contextBlock(contextA),
		"{{context_b}}", contextBlock(contextB),
		"{{feedback}}", feedbackBlock(feedback),
		"{{feature}}", q.Feature,
		"{{product_a}}", q.ProductA,
		"{{product_b}}", q.ProductB,
		"{{max_cases}}", maxCases(q.MaxTestCases),
	)
	return Prompt{
		System: strings.TrimSpace(tmpl.System),
		User:   strings.TrimSpace(r.Replace(tmpl.User)),
	}
}

func contextBlock(snippets []string) string {
	if len(snippets) == 0 {
		return NoContextMarker
	}
	var sb strings.Builder
	for i, s := range snippets {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSpace(s))
	}
	return sb.String()
}

// feedbackBlock renders prior feedback oldest first so later entries
// override earlier ones when they conflict.
func feedbackBlock(feedback []model.Feedback) string {
	if len(feedback) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\nThe user gave feedback on earlier attempts. You MUST ADDRESS every point below:\n")
	for i, f := range feedback {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.TrimSpace(f.Body)))
		if prev := strings.TrimSpace(f.PreviousTestCase); prev != "" {
			sb.WriteString("   (on this earlier output: ")
			sb.WriteString(firstLine(prev))
			sb.WriteString(")\n")
		}
	}
	return sb.String()
}

func maxCases(n int) string {
	if n <= 0 {
		n = DefaultMaxTestCases
	}
	return fmt.Sprintf("%d", n)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
