package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

// extractDocx unpacks the OOXML container and pulls the text runs out
// of word/document.xml, one chunk per non-empty paragraph group.
func extractDocx(filename string, r io.Reader) ([]Chunk, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "docx", Reason: "read failed", Err: err}
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "docx", Reason: "not a valid OOXML container", Err: err}
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "docx", Reason: "missing word/document.xml"}
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "docx", Reason: "open document.xml failed", Err: err}
	}
	defer rc.Close()

	var doc docxDocument
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "docx", Reason: "parse document.xml failed", Err: err}
	}

	var paragraphs []string
	for _, p := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, run := range p.Runs {
			sb.WriteString(run.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	if len(paragraphs) == 0 {
		return nil, nil
	}
	return []Chunk{{Content: strings.Join(paragraphs, "\n")}}, nil
}
