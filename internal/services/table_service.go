package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported table format")

// TableService turns an uploaded CSV or XLSX file into a Table. The first
// non-empty row is the header; rows are padded to the header width.
type TableService struct{}

func NewTableService() (*TableService, error) {
	return &TableService{}, nil
}

// Parse detects the format from the file name and returns the table together
// with the format tag used for round-trip export.
func (s *TableService) Parse(ctx context.Context, filename string, data []byte) (Table, string, error) {
	if s == nil {
		return Table{}, "", errors.New("table service is nil")
	}
	if len(data) == 0 {
		return Table{}, "", errors.New("file is empty")
	}
	_ = ctx

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		table, err := parseCSV(data)
		if err != nil {
			return Table{}, "", err
		}
		return table, FormatCSV, nil
	case ".xlsx":
		table, err := parseXLSX(data)
		if err != nil {
			return Table{}, "", err
		}
		return table, FormatXLSX, nil
	default:
		return Table{}, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func parseCSV(data []byte) (Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}

	return tableFromRows(rows)
}

func parseXLSX(data []byte) (Table, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		closeErr := workbook.Close()
		if closeErr != nil {
			return Table{}, fmt.Errorf("close workbook: %w", closeErr)
		}
		return Table{}, errors.New("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		closeErr := workbook.Close()
		if closeErr != nil {
			return Table{}, fmt.Errorf("close workbook: %w", closeErr)
		}
		return Table{}, fmt.Errorf("get rows for %s: %w", sheets[0], err)
	}

	if closeErr := workbook.Close(); closeErr != nil {
		return Table{}, fmt.Errorf("close workbook: %w", closeErr)
	}

	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (Table, error) {
	headerIndex := -1
	for index, row := range rows {
		if !rowIsEmpty(row) {
			headerIndex = index
			break
		}
	}
	if headerIndex == -1 {
		return Table{}, errors.New("table has no header row")
	}

	columns := make([]string, 0, len(rows[headerIndex]))
	for _, cell := range rows[headerIndex] {
		columns = append(columns, strings.TrimSpace(cell))
	}

	var data [][]string
	for _, row := range rows[headerIndex+1:] {
		if rowIsEmpty(row) {
			continue
		}
		data = append(data, normalizeRow(row, len(columns)))
	}

	return Table{Columns: columns, Rows: data}, nil
}

func normalizeRow(row []string, length int) []string {
	if len(row) >= length {
		return row
	}
	normalized := make([]string, length)
	copy(normalized, row)
	return normalized
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
