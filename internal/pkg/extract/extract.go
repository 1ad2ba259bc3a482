package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Chunk is one extracted unit of document text. Page is 0 when the
// source format has no page notion.
type Chunk struct {
	Content string
	Page    int
}

// DocumentProcessingError reports why a file could not be turned into
// text. It wraps the underlying cause when there is one.
type DocumentProcessingError struct {
	Filename string
	Format   string
	Reason   string
	Err      error
}

func (e *DocumentProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("process %s (%s): %s: %v", e.Filename, e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("process %s (%s): %s", e.Filename, e.Format, e.Reason)
}

func (e *DocumentProcessingError) Unwrap() error { return e.Err }

// Extract reads r and returns the text chunks for the file, dispatching
// on the filename extension. Supported formats: pdf, docx, doc, xlsx,
// csv, txt and md.
func Extract(filename string, r io.Reader) ([]Chunk, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "pdf":
		return extractPDF(filename, r)
	case "docx":
		return extractDocx(filename, r)
	case "doc":
		// Legacy .doc files are sometimes docx in disguise; try the
		// zip container before giving up.
		chunks, err := extractDocx(filename, r)
		if err != nil {
			return nil, &DocumentProcessingError{
				Filename: filename,
				Format:   ext,
				Reason:   "legacy .doc binaries are not supported, re-save as .docx",
			}
		}
		return chunks, nil
	case "xlsx":
		return extractXlsx(filename, r)
	case "csv":
		return extractCSV(filename, r)
	case "txt", "md":
		return extractPlain(filename, r)
	default:
		return nil, &DocumentProcessingError{
			Filename: filename,
			Format:   ext,
			Reason:   "unsupported file format",
		}
	}
}

func extractPlain(filename string, r io.Reader) ([]Chunk, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "txt", Reason: "read failed", Err: err}
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return nil, nil
	}
	return []Chunk{{Content: text}}, nil
}
