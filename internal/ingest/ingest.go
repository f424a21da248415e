// Package ingest turns uploaded CSV and spreadsheet bytes into a
// models.Dataset.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/feedlens/pkg/models"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMalformedFile     = errors.New("malformed file")
)

const utf8BOM = "\ufeff"

// Supported reports whether filename has an extension Parse understands.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xlsm", ".xltx":
		return true
	}
	return false
}

// Parse reads r according to the extension of filename. The first non-blank
// row is the header; later blank rows are dropped. A file with no rows yields
// an empty Dataset and no error.
func Parse(filename string, r io.Reader) (models.Dataset, error) {
	var (
		records [][]string
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx", ".xlsm", ".xltx":
		records, err = readWorkbook(r)
	default:
		return models.Dataset{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return models.Dataset{}, err
	}

	return buildDataset(records), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading csv: %v", ErrMalformedFile, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return records, nil
}

// readWorkbook returns the rows of the first sheet.
func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", ErrMalformedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrMalformedFile, sheets[0], err)
	}
	return rows, nil
}

func buildDataset(records [][]string) models.Dataset {
	var nonBlank [][]string
	width := 0
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		nonBlank = append(nonBlank, rec)
		if len(rec) > width {
			width = len(rec)
		}
	}
	if len(nonBlank) == 0 {
		return models.Dataset{Columns: []string{}, Rows: []map[string]any{}}
	}

	columns := headerNames(nonBlank[0], width)
	rows := make([]map[string]any, 0, len(nonBlank)-1)
	for _, rec := range nonBlank[1:] {
		row := make(map[string]any, width)
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return models.Dataset{Columns: columns, Rows: rows}
}

// headerNames pads the header to width, names blank cells column_N (1-based)
// and suffixes repeats with _2, _3, ... until unique.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]bool, width)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}

		unique := name
		for n := 2; seen[unique]; n++ {
			unique = name + "_" + strconv.Itoa(n)
		}
		seen[unique] = true
		names[i] = unique
	}
	return names
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
