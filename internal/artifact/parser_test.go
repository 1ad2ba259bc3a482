package artifact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoCaseOutput = `Test Case 1:
Description: Verify login with valid credentials
Preconditions:
- User account exists
- Service is reachable
Steps:
1. Open the login page
2. Submit valid credentials
Expected Result: The dashboard is shown

Test Case 2:
Description: Verify login rejects a wrong password
Preconditions:
- User account exists
Steps:
1. Open the login page
2. Submit a wrong password
Expected Result: An error message is shown and no session is created
`

func TestParseCanonicalOutput(t *testing.T) {
	artifacts, err := Parse(twoCaseOutput, 0)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	first := artifacts[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "Verify login with valid credentials", first.Description)
	assert.Equal(t, []string{"User account exists", "Service is reachable"}, first.Preconditions)
	assert.Equal(t, []string{"Open the login page", "Submit valid credentials"}, first.Steps)
	assert.Equal(t, "The dashboard is shown", first.ExpectedResult)

	second := artifacts[1]
	assert.Equal(t, 2, second.Index)
	assert.Equal(t, []string{"Open the login page", "Submit a wrong password"}, second.Steps)
}

func TestParseLabelAliasesAndMarkdown(t *testing.T) {
	raw := `## Test Case 1: Login
**Objective:** Verify the login flow
Prerequisites:
* Account created
Test Steps:
- Open the app
- Sign in
Expected Outcome: User lands on the home screen
`
	artifacts, err := Parse(raw, 0)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Verify the login flow", artifacts[0].Description)
	assert.Equal(t, []string{"Account created"}, artifacts[0].Preconditions)
	assert.Equal(t, []string{"Open the app", "Sign in"}, artifacts[0].Steps)
	assert.Equal(t, "User lands on the home screen", artifacts[0].ExpectedResult)
}

func TestParseWithoutHeadingTreatsTextAsSingleCase(t *testing.T) {
	raw := `Description: Check export button
Steps: 1. Click export
Expected Result: A file downloads`

	artifacts, err := Parse(raw, 0)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, []string{"Click export"}, artifacts[0].Steps)
}

func TestParseDropsPreamble(t *testing.T) {
	raw := `Sure! Here are the test cases you asked for.

Test Case 1:
Description: Verify search returns results
Steps:
1. Enter a query
Expected Result: Matching items are listed
`
	artifacts, err := Parse(raw, 0)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.NotContains(t, artifacts[0].Description, "Sure!")
}

func TestParseMissingExpectedResult(t *testing.T) {
	raw := `Test Case 1:
Description: Verify something
Steps:
1. Do something
`
	_, err := Parse(raw, 0)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "expected result")
	assert.Equal(t, raw, parseErr.Raw)
}

func TestParseRejectsUnstructuredText(t *testing.T) {
	_, err := Parse("I could not generate test cases for this request.", 0)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseRejectsEmptyOutput(t *testing.T) {
	for _, raw := range []string{"", "   \n\n  "} {
		_, err := Parse(raw, 0)
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr), "input %q", raw)
		assert.Contains(t, parseErr.Reason, "no test case")
	}
}

func TestParseTruncatesToMaxArtifacts(t *testing.T) {
	raw := twoCaseOutput + `
Test Case 3:
Description: Verify logout
Steps:
1. Click logout
Expected Result: The login page is shown
`
	artifacts, err := Parse(raw, 2)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, 1, artifacts[0].Index)
	assert.Equal(t, 2, artifacts[1].Index)
	assert.Contains(t, artifacts[1].Description, "wrong password")
}

func TestParseOneMalformedCaseRejectsWholeOutput(t *testing.T) {
	raw := twoCaseOutput + `
Test Case 3:
Steps:
1. Click logout
Expected Result: The login page is shown
`
	_, err := Parse(raw, 0)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "description")
}
