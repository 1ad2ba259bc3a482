package extract

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads the entire content of r and extracts plain text
// page by page. Pages with no extractable text are skipped.
func extractPDF(filename string, r io.Reader) ([]Chunk, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "pdf", Reason: "read failed", Err: err}
	}
	if len(b) == 0 {
		return nil, nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "pdf", Reason: "not a valid PDF", Err: err}
	}

	var chunks []Chunk
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// One broken page should not discard the rest of the file.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{Content: text, Page: i})
	}
	return chunks, nil
}
