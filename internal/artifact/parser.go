package artifact

import (
	"regexp"
	"strings"
)

// The canonical output schema instructed to the model is a sequence of
// labeled sections per test case:
//
//	Test Case 1:
//	Description: ...
//	Preconditions:
//	1. ...
//	Steps:
//	1. ...
//	Expected Result: ...
//
// Parsing tolerates markdown headings, bold labels, bullet markers and the
// documented label aliases, and nothing beyond that: output that omits a
// required field or contains no test case at all is rejected.
var (
	caseHeadingRe = regexp.MustCompile(`(?i)^\s*(?:#+\s*)?(?:\*\*)?\s*test\s*case\s*(?:\d+(?:\s*/\s*\d+)?)?\s*(?:\*\*)?\s*(?:[:.\-]|$)`)
	fieldLabelRe  = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?(?:\*\*)?\s*(description|desc|objective|pre-?conditions?|prerequisites|steps|step\s*actions?|test\s*steps|procedure|expected\s*results?|expected\s*outcome|expectation)\s*(?:\*\*)?\s*[:：]\s*(?:\*\*\s*)?(.*)$`)
	listMarkerRe  = regexp.MustCompile(`^\s*(?:\d+\s*[.)]\s*|[-*•]\s*)`)
)

type fieldKind int

const (
	fieldNone fieldKind = iota
	fieldDescription
	fieldPreconditions
	fieldSteps
	fieldExpected
)

// Parse converts raw model output into validated test artifacts. When the
// model returns more than maxArtifacts cases the sequence is truncated
// deterministically to the first maxArtifacts in returned order; a
// maxArtifacts of zero or below means unbounded.
func Parse(raw string, maxArtifacts int) ([]TestArtifact, error) {
	blocks := splitCases(raw)
	if len(blocks) == 0 {
		return nil, &ParseError{Reason: "no test case found in output", Raw: raw}
	}

	artifacts := make([]TestArtifact, 0, len(blocks))
	for _, block := range blocks {
		art, reason := parseCase(block)
		if reason != "" {
			return nil, &ParseError{Reason: reason, Raw: raw}
		}
		art.Index = len(artifacts) + 1
		artifacts = append(artifacts, art)
	}

	if maxArtifacts > 0 && len(artifacts) > maxArtifacts {
		artifacts = artifacts[:maxArtifacts]
	}
	return artifacts, nil
}

// splitCases breaks raw output into per-test-case blocks. Text before the
// first heading is dropped (models often emit a preamble sentence); when no
// heading is present at all the whole text is treated as a single case.
func splitCases(raw string) []string {
	lines := strings.Split(raw, "\n")

	var blocks []string
	var current []string
	seenHeading := false
	for _, line := range lines {
		if caseHeadingRe.MatchString(line) && !fieldLabelRe.MatchString(line) {
			if seenHeading && hasContent(current) {
				blocks = append(blocks, strings.Join(current, "\n"))
			}
			seenHeading = true
			current = nil
			continue
		}
		current = append(current, line)
	}
	if seenHeading {
		if hasContent(current) {
			blocks = append(blocks, strings.Join(current, "\n"))
		}
		return blocks
	}
	if hasContent(lines) {
		return []string{raw}
	}
	return nil
}

func hasContent(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

func parseCase(block string) (TestArtifact, string) {
	var art TestArtifact
	var descParts, expectedParts []string
	current := fieldNone
	sawAnyField := false

	for _, line := range strings.Split(block, "\n") {
		if m := fieldLabelRe.FindStringSubmatch(line); m != nil {
			current = classifyLabel(m[1])
			sawAnyField = true
			rest := strings.TrimSpace(m[2])
			if rest != "" {
				appendField(&art, &descParts, &expectedParts, current, rest)
			}
			continue
		}

		text := strings.TrimSpace(line)
		if text == "" || current == fieldNone {
			continue
		}
		appendField(&art, &descParts, &expectedParts, current, text)
	}

	if !sawAnyField {
		return art, "output contains no labeled fields"
	}
	art.Description = strings.TrimSpace(strings.Join(descParts, " "))
	art.ExpectedResult = strings.TrimSpace(strings.Join(expectedParts, " "))
	if art.Description == "" {
		return art, "test case is missing a description"
	}
	if art.ExpectedResult == "" {
		return art, "test case is missing an expected result"
	}
	return art, ""
}

func classifyLabel(label string) fieldKind {
	normalized := strings.ToLower(strings.Join(strings.Fields(label), " "))
	switch {
	case strings.HasPrefix(normalized, "desc"), normalized == "objective":
		return fieldDescription
	case strings.HasPrefix(normalized, "pre"):
		return fieldPreconditions
	case strings.HasPrefix(normalized, "expect"):
		return fieldExpected
	default:
		return fieldSteps
	}
}

func appendField(art *TestArtifact, descParts, expectedParts *[]string, kind fieldKind, text string) {
	switch kind {
	case fieldDescription:
		*descParts = append(*descParts, text)
	case fieldPreconditions:
		if item := stripListMarker(text); item != "" {
			art.Preconditions = append(art.Preconditions, item)
		}
	case fieldSteps:
		if item := stripListMarker(text); item != "" {
			art.Steps = append(art.Steps, item)
		}
	case fieldExpected:
		*expectedParts = append(*expectedParts, text)
	}
}

func stripListMarker(line string) string {
	return strings.TrimSpace(listMarkerRe.ReplaceAllString(line, ""))
}
