package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRecordAndList(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := NewFeedbackService(repo, 3)

	_, err := svc.Record("Widget1", "login", "cover lockout after 3 failures", "Test Case 1: ...")
	require.NoError(t, err)
	_, err = svc.Record("Widget1", "login", "add boundary values", "")
	require.NoError(t, err)

	entries, err := svc.List("Widget1", "login")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "cover lockout after 3 failures", entries[0].Body)
	assert.Equal(t, "add boundary values", entries[1].Body)
}

func TestFeedbackListWindowKeepsNewest(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := NewFeedbackService(repo, 2)

	for _, body := range []string{"first", "second", "third"} {
		_, err := svc.Record("Widget1", "login", body, "")
		require.NoError(t, err)
	}

	entries, err := svc.List("Widget1", "login")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Body)
	assert.Equal(t, "third", entries[1].Body)
}

func TestFeedbackRecordValidation(t *testing.T) {
	svc := NewFeedbackService(&fakeFeedbackRepo{}, 3)

	_, err := svc.Record("", "login", "body", "")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Record("Widget1", "", "body", "")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Record("Widget1", "login", "   ", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFeedbackStoreErrorWrapped(t *testing.T) {
	repo := &fakeFeedbackRepo{createErr: errors.New("db down")}
	svc := NewFeedbackService(repo, 3)

	_, err := svc.Record("Widget1", "login", "body", "")
	require.ErrorIs(t, err, ErrFeedbackStore)
}
