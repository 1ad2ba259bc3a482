package app

import (
	"context"
	"io"
	"log"
	"strings"

	"testforge/internal/model"
	"testforge/internal/pkg/extract"
)

// DocumentWriter is the persistence surface document ingestion needs.
// Replace and delete are atomic: a document and its chunks change
// together or not at all.
type DocumentWriter interface {
	ReplaceWithChunks(doc *model.Document, chunks []model.DocumentChunk) (bool, error)
	DeleteWithChunks(title, docType string) (bool, error)
	ListTitles(docType string) ([]string, error)
}

// DocumentService ingests product documentation: extraction, chunking,
// embedding and storage.
type DocumentService struct {
	docs     DocumentWriter
	embedder Embedder
}

func NewDocumentService(docs DocumentWriter, embedder Embedder) *DocumentService {
	return &DocumentService{
		docs:     docs,
		embedder: embedder,
	}
}

// UploadInput carries one file of a multi-file upload.
type UploadInput struct {
	Title    string // product title; derived from filename when empty
	DocType  string
	Filename string
	Content  io.Reader
}

// UploadResult reports what one upload produced.
type UploadResult struct {
	Document   model.Document `json:"document"`
	ChunkCount int            `json:"chunk_count"`
	Replaced   bool           `json:"replaced"`
	Embedded   bool           `json:"embedded"`
}

// Upload extracts text from the file and stores the document and its
// chunks in a single write, replacing any document with the same title
// and type. When the embedding call fails the chunks are stored without
// vectors and retrieval degrades to keyword matching.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = titleFromFilename(input.Filename)
	}
	docType := strings.TrimSpace(strings.ToLower(input.DocType))
	if title == "" || docType == "" {
		return nil, ErrInvalidInput
	}

	extracted, err := extract.Extract(input.Filename, input.Content)
	if err != nil {
		return nil, err
	}
	if len(extracted) == 0 {
		return nil, ErrInvalidInput
	}

	var chunks []model.DocumentChunk
	for _, ec := range extracted {
		for _, part := range chunkText(ec.Content, defaultChunkSize, defaultChunkOverlap) {
			chunks = append(chunks, model.DocumentChunk{
				Position: len(chunks),
				Page:     ec.Page,
				Content:  part,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, ErrInvalidInput
	}

	embedded := s.embedChunks(ctx, chunks)

	doc := &model.Document{Title: title, DocType: docType}
	replaced, err := s.docs.ReplaceWithChunks(doc, chunks)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Document:   *doc,
		ChunkCount: len(chunks),
		Replaced:   replaced,
		Embedded:   embedded,
	}, nil
}

// ListTitles returns the distinct product titles, optionally filtered
// by document type.
func (s *DocumentService) ListTitles(docType string) ([]string, error) {
	return s.docs.ListTitles(strings.TrimSpace(strings.ToLower(docType)))
}

// Delete removes a document and its chunks.
func (s *DocumentService) Delete(title, docType string) error {
	title = strings.TrimSpace(title)
	docType = strings.TrimSpace(strings.ToLower(docType))
	if title == "" || docType == "" {
		return ErrInvalidInput
	}
	removed, err := s.docs.DeleteWithChunks(title, docType)
	if err != nil {
		return err
	}
	if !removed {
		return ErrDocumentNotFound
	}
	return nil
}

// embedChunks fills in embedding vectors in place. Returns false when
// embedding was unavailable and the chunks stay vectorless.
func (s *DocumentService) embedChunks(ctx context.Context, chunks []model.DocumentChunk) bool {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	var embeddings [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			log.Printf("embed chunks failed, storing without vectors: %v", err)
			return false
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(chunks) {
		log.Printf("embedding count mismatch: got %d for %d chunks, storing without vectors", len(embeddings), len(chunks))
		return false
	}

	for i := range chunks {
		chunks[i].SetEmbedding(embeddings[i])
	}
	return true
}

func titleFromFilename(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.TrimSpace(base)
}
