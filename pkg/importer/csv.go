// Package importer turns uploaded product CSV files into catalog import rows.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gitlab.connectwisedev.com/catalog-service/models"
	"gitlab.connectwisedev.com/catalog-service/pkg/catalog"
)

// Columns lists the recognised header names. Only name and price are mandatory.
var Columns = []string{"name", "description", "price", "stock", "category"}

var (
	ErrEmpty         = errors.New("CSV is empty or has only headers")
	ErrMissingColumn = errors.New("CSV header is missing a required column")
)

// Parse reads a CSV with a header row. Rows that cannot be converted are
// returned as failures; the error is reserved for unreadable input.
// Line numbers are the 1-based file lines the records start on.
func Parse(r io.Reader) ([]catalog.ImportRow, []catalog.ImportFailure, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmpty
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	col := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var (
		rows     []catalog.ImportRow
		failures []catalog.ImportFailure
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				failures = append(failures, catalog.ImportFailure{Line: perr.StartLine, Reason: perr.Err.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		pc := models.ProductCSV{
			Name:        col(record, "name"),
			Description: col(record, "description"),
			Price:       col(record, "price"),
			Stock:       col(record, "stock"),
			Category:    col(record, "category"),
		}
		np, err := pc.ToNewProduct()
		if err != nil {
			failures = append(failures, catalog.ImportFailure{Line: line, Reason: err.Error()})
			continue
		}
		rows = append(rows, catalog.ImportRow{Line: line, Product: np})
	}

	if len(rows) == 0 && len(failures) == 0 {
		return nil, nil, ErrEmpty
	}
	return rows, failures, nil
}
