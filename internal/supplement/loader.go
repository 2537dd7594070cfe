// Package supplement reads the hand-maintained CSV that fills in package
// fields the SBOM export does not carry.
package supplement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/saltyster/sbom-to-csv/internal/model"
)

const utf8BOM = "\uFEFF"

// Load parses a comma-separated file with a header row. Every value is kept
// as a string; an empty cell becomes "". Rows whose column count differs
// from the header are rejected.
func Load(r io.Reader) (*model.SupplementTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	// 0 means every record must match the header's field count.
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header row", model.ErrMalformedSupplement)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", model.ErrMalformedSupplement, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := &model.SupplementTable{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: line %d has %d columns, header has %d",
					model.ErrMalformedSupplement, parseErr.StartLine, len(record), len(header))
			}
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedSupplement, err)
		}

		// Duplicate header names: the later column wins.
		values := make(map[string]string, len(header))
		for i, column := range header {
			values[column] = record[i]
		}
		table.Rows = append(table.Rows, model.NewSupplementRow(len(table.Rows), values))
	}

	return table, nil
}

// LoadFile opens path and parses it with Load.
func LoadFile(path string) (*model.SupplementTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open supplement: %w", err)
	}
	defer f.Close()

	table, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
