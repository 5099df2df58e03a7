package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/octobees/crm-automations/api/internal/dto"
)

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

func (e CSVValidationError) Error() string {
	return e.Message
}

var requiredCSVHeaders = []string{"first_name", "last_name", "email"}

// ImportCSV ingests leads from a CSV reader. The header row names the
// columns; rows failing intake validation are skipped and reported.
func (s *LeadService) ImportCSV(ctx context.Context, r io.Reader) (ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ImportSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return ImportSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	indexMap, valErr := buildLeadHeaderIndex(header)
	if valErr != nil {
		return ImportSummary{}, valErr
	}

	var rows []dto.CreateLeadRequest
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportSummary{}, fmt.Errorf("read csv row: %w", err)
		}

		rows = append(rows, dto.CreateLeadRequest{
			FirstName: cell(row, indexMap, "first_name"),
			LastName:  cell(row, indexMap, "last_name"),
			Email:     cell(row, indexMap, "email"),
			Company:   cell(row, indexMap, "company"),
			Phone:     cell(row, indexMap, "phone"),
			Source:    cell(row, indexMap, "source"),
			Industry:  cell(row, indexMap, "industry"),
			Notes:     cell(row, indexMap, "notes"),
		})
	}

	return s.Import(ctx, rows)
}

func buildLeadHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("csv header is missing columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func cell(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
