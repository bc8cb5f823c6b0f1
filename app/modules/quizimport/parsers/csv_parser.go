package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser parses CSV question-set files.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse parses CSV data and returns a QuestionSet.
func (p *CSVParser) Parse(data []byte) (*QuestionSet, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	// Rows may omit trailing empty columns.
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}
	return buildSet(rows)
}
