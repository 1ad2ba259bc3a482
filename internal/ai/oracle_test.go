package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, maxRetries int) *Client {
	c := NewClient(Config{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Model:          "test-model",
		EmbeddingModel: "test-embedding",
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
	})
	// no real backoff in tests
	c.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return c
}

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestCompleteReturnsModelText(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Write([]byte(chatResponse("hello from the model")))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	text, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello from the model", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chatResponse("recovered")))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	text, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestCompleteExhaustionYieldsOracleUnavailable(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.ErrorIs(t, err, ErrOracleUnavailable)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestCompleteClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOracleUnavailable)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCompleteTooManyRequestsIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(chatResponse("after throttle")))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	text, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "after throttle", text)
}

func TestCompleteCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(server.URL, 3)
	_, err := c.Complete(ctx, []ChatMessage{{Role: "user", Content: "hi"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmbedParsesVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]},{"embedding":[0.3,0.4]}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	vectors, err := c.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0", 1)
	_, err := c.Embed(context.Background(), "   ")
	require.Error(t, err)
}
