package artifact

import "fmt"

// TestArtifact is one structured test case record. Every artifact surfaced
// by the parser has passed schema validation: non-empty description and
// expected result.
type TestArtifact struct {
	Index          int      `json:"index"`
	Description    string   `json:"description"`
	Preconditions  []string `json:"preconditions"`
	Steps          []string `json:"steps"`
	ExpectedResult string   `json:"expected_result"`
}

// ParseError reports malformed model output. Raw carries the full model
// text for retry prompting and diagnostics.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output failed: %s", e.Reason)
}
