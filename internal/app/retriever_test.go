package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testforge/internal/model"
)

type fakeDocStore struct {
	docs map[string]*model.Document
}

func (f *fakeDocStore) GetByTitle(title string) (*model.Document, error) {
	return f.docs[title], nil
}

type fakeChunkStore struct {
	chunks map[uint][]model.DocumentChunk
}

func (f *fakeChunkStore) ListByDocumentID(documentID uint) ([]model.DocumentChunk, error) {
	return f.chunks[documentID], nil
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vec, f.err
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func chunkWithVec(content string, vec []float32) model.DocumentChunk {
	c := model.DocumentChunk{Content: content}
	c.SetEmbedding(vec)
	return c
}

func TestRetrieveUnknownTitle(t *testing.T) {
	r := NewRetriever(&fakeDocStore{docs: map[string]*model.Document{}}, &fakeChunkStore{}, &fakeEmbedder{})

	_, err := r.Retrieve(context.Background(), "Nope", "anything", 5)
	require.ErrorIs(t, err, ErrContextNotFound)
}

func TestRetrieveRanksByCosineSimilarity(t *testing.T) {
	docs := &fakeDocStore{docs: map[string]*model.Document{"Widget1": {ID: 1, Title: "Widget1"}}}
	chunks := &fakeChunkStore{chunks: map[uint][]model.DocumentChunk{1: {
		chunkWithVec("orthogonal chunk", []float32{0, 1, 0}),
		chunkWithVec("aligned chunk", []float32{1, 0, 0}),
		chunkWithVec("opposite chunk", []float32{-1, 0, 0}),
	}}}
	embedder := &fakeEmbedder{vec: []float32{1, 0, 0}}

	r := NewRetriever(docs, chunks, embedder)
	snippets, err := r.Retrieve(context.Background(), "Widget1", "query", 2)
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	assert.Equal(t, "aligned chunk", snippets[0])
	assert.Equal(t, "orthogonal chunk", snippets[1])
}

func TestRetrieveFallsBackToKeywords(t *testing.T) {
	docs := &fakeDocStore{docs: map[string]*model.Document{"Widget1": {ID: 1, Title: "Widget1"}}}
	chunks := &fakeChunkStore{chunks: map[uint][]model.DocumentChunk{1: {
		{Content: "Billing is handled monthly."},
		{Content: "Login requires a registered email address."},
	}}}
	embedder := &fakeEmbedder{err: errors.New("embedding api down")}

	r := NewRetriever(docs, chunks, embedder)
	snippets, err := r.Retrieve(context.Background(), "Widget1", "login email", 1)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Contains(t, snippets[0], "Login requires")
}

func TestRetrieveFallsBackToLeadingChunks(t *testing.T) {
	docs := &fakeDocStore{docs: map[string]*model.Document{"Widget1": {ID: 1, Title: "Widget1"}}}
	chunks := &fakeChunkStore{chunks: map[uint][]model.DocumentChunk{1: {
		{Content: "first chunk"},
		{Content: "second chunk"},
		{Content: "third chunk"},
	}}}
	embedder := &fakeEmbedder{err: errors.New("embedding api down")}

	r := NewRetriever(docs, chunks, embedder)
	snippets, err := r.Retrieve(context.Background(), "Widget1", "zzz qqq", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"first chunk", "second chunk"}, snippets)
}

func TestRetrieveEmptyDocument(t *testing.T) {
	docs := &fakeDocStore{docs: map[string]*model.Document{"Widget1": {ID: 1, Title: "Widget1"}}}
	r := NewRetriever(docs, &fakeChunkStore{chunks: map[uint][]model.DocumentChunk{}}, &fakeEmbedder{})

	snippets, err := r.Retrieve(context.Background(), "Widget1", "query", 5)
	require.NoError(t, err)
	assert.Empty(t, snippets)
}
