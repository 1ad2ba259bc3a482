package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"
)

type xlsxSharedStrings struct {
	Items []struct {
		Text string `xml:"t"`
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

type xlsxWorksheet struct {
	Rows []struct {
		Cells []struct {
			Type  string `xml:"t,attr"`
			Value string `xml:"v"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

// extractXlsx flattens every worksheet into tab-separated rows, one
// chunk per sheet. Shared strings are resolved; everything else is
// kept as its raw cell value.
func extractXlsx(filename string, r io.Reader) ([]Chunk, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "xlsx", Reason: "read failed", Err: err}
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "xlsx", Reason: "not a valid OOXML container", Err: err}
	}

	shared, err := readSharedStrings(zr)
	if err != nil {
		return nil, &DocumentProcessingError{Filename: filename, Format: "xlsx", Reason: "parse shared strings failed", Err: err}
	}

	var sheetFiles []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			sheetFiles = append(sheetFiles, f)
		}
	}
	sort.Slice(sheetFiles, func(i, j int) bool { return sheetFiles[i].Name < sheetFiles[j].Name })
	if len(sheetFiles) == 0 {
		return nil, &DocumentProcessingError{Filename: filename, Format: "xlsx", Reason: "workbook has no worksheets"}
	}

	var chunks []Chunk
	for i, f := range sheetFiles {
		text, err := readSheet(f, shared)
		if err != nil {
			return nil, &DocumentProcessingError{Filename: filename, Format: "xlsx", Reason: "parse " + f.Name + " failed", Err: err}
		}
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{Content: text, Page: i + 1})
	}
	return chunks, nil
}

func readSharedStrings(zr *zip.Reader) ([]string, error) {
	for _, f := range zr.File {
		if f.Name != "xl/sharedStrings.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		var ss xlsxSharedStrings
		if err := xml.NewDecoder(rc).Decode(&ss); err != nil {
			return nil, err
		}
		out := make([]string, len(ss.Items))
		for i, item := range ss.Items {
			if item.Text != "" {
				out[i] = item.Text
				continue
			}
			var sb strings.Builder
			for _, run := range item.Runs {
				sb.WriteString(run.Text)
			}
			out[i] = sb.String()
		}
		return out, nil
	}
	return nil, nil
}

func readSheet(f *zip.File, shared []string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var ws xlsxWorksheet
	if err := xml.NewDecoder(rc).Decode(&ws); err != nil {
		return "", err
	}

	var lines []string
	for _, row := range ws.Rows {
		fields := make([]string, 0, len(row.Cells))
		empty := true
		for _, cell := range row.Cells {
			v := cell.Value
			if cell.Type == "s" {
				if idx, err := strconv.Atoi(v); err == nil && idx >= 0 && idx < len(shared) {
					v = shared[idx]
				}
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			fields = append(fields, v)
		}
		if !empty {
			lines = append(lines, strings.Join(fields, "\t"))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
