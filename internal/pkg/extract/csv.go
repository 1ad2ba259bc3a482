package extract

import (
	"encoding/csv"
	"io"
	"strings"
)

// extractCSV flattens the whole file into one chunk of tab-separated
// rows. Ragged rows are tolerated.
func extractCSV(filename string, r io.Reader) ([]Chunk, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var lines []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DocumentProcessingError{Filename: filename, Format: "csv", Reason: "parse failed", Err: err}
		}
		empty := true
		for _, field := range record {
			if strings.TrimSpace(field) != "" {
				empty = false
				break
			}
		}
		if !empty {
			lines = append(lines, strings.Join(record, "\t"))
		}
	}
	if len(lines) == 0 {
		return nil, nil
	}
	return []Chunk{{Content: strings.Join(lines, "\n")}}, nil
}
