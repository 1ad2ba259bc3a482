package app

import (
	"context"
	"math"
	"sort"
	"strings"

	"testforge/internal/model"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
	defaultTopK         = 5
	embeddingBatchSize  = 10 // embedding APIs often limit batch size
)

// DocumentStore is the document lookup surface the retriever needs.
type DocumentStore interface {
	GetByTitle(title string) (*model.Document, error)
}

// ChunkStore is the chunk lookup surface the retriever needs.
type ChunkStore interface {
	ListByDocumentID(documentID uint) ([]model.DocumentChunk, error)
}

// Embedder produces embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever selects the document chunks most relevant to a query.
// Ranking prefers embedding cosine similarity; when the query cannot
// be embedded or the stored chunks carry no vectors it degrades to
// keyword overlap, and when that scores nothing it falls back to the
// leading chunks in document order.
type Retriever struct {
	docStore   DocumentStore
	chunkStore ChunkStore
	embedder   Embedder
}

func NewRetriever(docStore DocumentStore, chunkStore ChunkStore, embedder Embedder) *Retriever {
	return &Retriever{
		docStore:   docStore,
		chunkStore: chunkStore,
		embedder:   embedder,
	}
}

// Retrieve returns up to topK chunk contents for the product, ranked
// by relevance to the query. ErrContextNotFound means no document is
// stored under the title at all; an empty result with nil error means
// the document exists but holds no text.
func (r *Retriever) Retrieve(ctx context.Context, productTitle, query string, topK int) ([]string, error) {
	if strings.TrimSpace(productTitle) == "" {
		return nil, ErrInvalidInput
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	doc, err := r.docStore.GetByTitle(productTitle)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrContextNotFound
	}

	chunks, err := r.chunkStore.ListByDocumentID(doc.ID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	ranked := r.rankByEmbedding(ctx, query, chunks, topK)
	if ranked == nil {
		ranked = rankByKeywords(query, chunks, topK)
	}
	if ranked == nil {
		// Nothing scored; the leading chunks are better than nothing.
		if topK > len(chunks) {
			topK = len(chunks)
		}
		ranked = chunks[:topK]
	}

	snippets := make([]string, len(ranked))
	for i := range ranked {
		snippets[i] = ranked[i].Content
	}
	return snippets, nil
}

// rankByEmbedding returns nil when the embedding path is unusable so
// the caller can fall back.
func (r *Retriever) rankByEmbedding(ctx context.Context, query string, chunks []model.DocumentChunk, topK int) []model.DocumentChunk {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil || len(queryVec) == 0 {
		return nil
	}

	type scoredChunk struct {
		chunk model.DocumentChunk
		score float32
	}
	var scored []scoredChunk
	for i := range chunks {
		vec := chunks[i].EmbeddingVector()
		if len(vec) == 0 {
			continue
		}
		scored = append(scored, scoredChunk{chunk: chunks[i], score: cosineSimilarity(queryVec, vec)})
	}
	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if topK > len(scored) {
		topK = len(scored)
	}
	out := make([]model.DocumentChunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = scored[i].chunk
	}
	return out
}

func rankByKeywords(query string, chunks []model.DocumentChunk, topK int) []model.DocumentChunk {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	type scoredChunk struct {
		chunk model.DocumentChunk
		score int
	}
	var scored []scoredChunk
	for i := range chunks {
		content := strings.ToLower(chunks[i].Content)
		score := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredChunk{chunk: chunks[i], score: score})
		}
	}
	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if topK > len(scored) {
		topK = len(scored)
	}
	out := make([]model.DocumentChunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = scored[i].chunk
	}
	return out
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// chunkText splits text into overlapping chunks by rune count.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap >= size {
		overlap = size / 2
	}
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		i += size - overlap
		if i >= len(runes) {
			break
		}
	}
	return chunks
}
