package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"serialtag/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Sheet1"

// ExportService writes an enriched batch back out as a table in its source
// format: the original columns followed by the serial code, issuance
// timestamp and QR target.
type ExportService struct{}

func NewExportService() (*ExportService, error) {
	return &ExportService{}, nil
}

// Export returns the file bytes and a download file name.
func (s *ExportService) Export(ctx context.Context, batch models.Batch, format string) ([]byte, string, error) {
	if s == nil {
		return nil, "", errors.New("export service is nil")
	}
	_ = ctx

	header, rows := exportRows(batch)

	switch format {
	case FormatCSV:
		data, err := writeCSV(header, rows)
		if err != nil {
			return nil, "", err
		}
		return data, "Generated_qr.csv", nil
	case FormatXLSX:
		data, err := writeXLSX(header, rows)
		if err != nil {
			return nil, "", err
		}
		return data, "Generated_qr.xlsx", nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func exportRows(batch models.Batch) ([]string, [][]string) {
	header := make([]string, 0, len(batch.Columns)+3)
	header = append(header, batch.Columns...)
	header = append(header, ColumnSerial, ColumnIssuedAt, ColumnQRTarget)

	rows := make([][]string, 0, len(batch.Records))
	for _, record := range batch.Records {
		row := make([]string, 0, len(header))
		for _, column := range batch.Columns {
			row = append(row, record.Fields[column])
		}
		row = append(row, record.SerialCode, record.IssuedAt.Format(time.RFC3339), record.ScanURL)
		rows = append(rows, row)
	}

	return header, rows
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func writeXLSX(header []string, rows [][]string) ([]byte, error) {
	workbook := excelize.NewFile()

	if err := setSheetRow(workbook, 1, header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := setSheetRow(workbook, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if closeErr := workbook.Close(); closeErr != nil {
		return nil, fmt.Errorf("close workbook: %w", closeErr)
	}

	return buf.Bytes(), nil
}

func setSheetRow(workbook *excelize.File, rowIndex int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIndex)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowIndex, err)
	}

	cells := make([]interface{}, len(values))
	for i, value := range values {
		cells[i] = value
	}
	if err := workbook.SetSheetRow(exportSheetName, cell, &cells); err != nil {
		return fmt.Errorf("set row %d: %w", rowIndex, err)
	}

	return nil
}
