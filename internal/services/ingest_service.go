package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"serialtag/internal/models"

	"github.com/google/uuid"
)

// IngestService runs one upload end to end: validate required columns,
// normalize identifier cells, assign a serial code and issuance timestamp per
// row, render the QR image for each scan URL, and write the whole thing as
// one immutable batch. Validation failures abort before anything is issued;
// a single row's render failure is logged and the row keeps going without an
// image.
type IngestService struct {
	serials    SerialGenerator
	renderer   QrRenderer
	batchStore BatchWriter
	index      SerialIndexer
	logService LogWriter

	baseURL         string
	requiredColumns []string
	padWidth        int
	now             func() time.Time
}

func NewIngestService(serials SerialGenerator, renderer QrRenderer, batchStore BatchWriter, index SerialIndexer, logService LogWriter, baseURL string, requiredColumns []string, padWidth int) (*IngestService, error) {
	if serials == nil {
		return nil, errors.New("serial generator is nil")
	}
	if renderer == nil {
		return nil, errors.New("qr renderer is nil")
	}
	if batchStore == nil {
		return nil, errors.New("batch store is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}
	if baseURL == "" {
		return nil, errors.New("base url is empty")
	}
	if len(requiredColumns) == 0 {
		return nil, errors.New("required columns are empty")
	}
	if padWidth < 0 {
		return nil, errors.New("pad width must not be negative")
	}

	return &IngestService{
		serials:         serials,
		renderer:        renderer,
		batchStore:      batchStore,
		index:           index,
		logService:      logService,
		baseURL:         strings.TrimRight(baseURL, "/"),
		requiredColumns: requiredColumns,
		padWidth:        padWidth,
		now:             time.Now,
	}, nil
}

func (s *IngestService) Ingest(ctx context.Context, table Table, sourceFormat string) (models.Batch, error) {
	if s == nil {
		return models.Batch{}, errors.New("ingest service is nil")
	}
	if len(table.Columns) == 0 {
		return models.Batch{}, errors.New("table has no columns")
	}

	eventID := uuid.NewString()

	columns := make([]string, 0, len(table.Columns))
	for _, column := range table.Columns {
		columns = append(columns, strings.TrimSpace(column))
	}

	if err := s.validateColumns(ctx, eventID, columns); err != nil {
		return models.Batch{}, err
	}

	primary := s.requiredColumns[0]
	secondary := ""
	if len(s.requiredColumns) > 1 {
		secondary = s.requiredColumns[1]
	}

	records := make([]models.Record, 0, len(table.Rows))
	images := make(map[string][]byte, len(table.Rows))
	rendered := 0
	for _, row := range table.Rows {
		fields := make(map[string]string, len(columns))
		for i, column := range columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			switch column {
			case primary:
				value = strings.TrimSpace(value)
			case secondary:
				value = padIdentifier(strings.TrimSpace(value), s.padWidth)
			}
			fields[column] = value
		}

		serial, err := s.serials.Generate(ctx)
		if err != nil {
			return models.Batch{}, fmt.Errorf("generate serial: %w", err)
		}

		record := models.Record{
			Fields:     fields,
			SerialCode: serial,
			IssuedAt:   s.now().UTC(),
			ScanURL:    fmt.Sprintf("%s/scan/%s", s.baseURL, serial),
		}
		records = append(records, record)

		image, err := s.renderer.Render(ctx, record.ScanURL)
		if err != nil {
			failMsg := fmt.Sprintf("render qr: %v", err)
			_ = s.logService.CreateLog(ctx, &eventID, LogActionQrRender, LogOutcomeFail, &serial, &failMsg)
			continue
		}
		images[serial] = image
		rendered++
	}

	batch := models.Batch{
		CreatedAt:    s.now().UTC(),
		SourceFormat: sourceFormat,
		Columns:      columns,
		Records:      records,
		Images:       images,
	}

	batchID, err := s.batchStore.Write(ctx, batch)
	if err != nil {
		failMsg := fmt.Sprintf("write batch rows=%d: %v", len(records), err)
		_ = s.logService.CreateLog(ctx, &eventID, LogActionBatchWrite, LogOutcomeFail, nil, &failMsg)
		return models.Batch{}, fmt.Errorf("write batch: %w", err)
	}
	batch.ID = batchID

	successMsg := fmt.Sprintf("batch=%s rows=%d images=%d/%d", batchID, len(records), rendered, len(records))
	_ = s.logService.CreateLog(ctx, &eventID, LogActionBatchWrite, LogOutcomeSuccess, nil, &successMsg)

	if s.index != nil {
		serials := make([]string, 0, len(records))
		for _, record := range records {
			serials = append(serials, record.SerialCode)
		}
		if err := s.index.Append(ctx, batchID, serials); err != nil {
			// The store stays authoritative; lookups fall back to the
			// full scan until the next rebuild catches the index up.
			failMsg := fmt.Sprintf("append index for batch %s: %v", batchID, err)
			_ = s.logService.CreateLog(ctx, &eventID, LogActionIndexAppend, LogOutcomeFail, nil, &failMsg)
		}
	}

	return batch, nil
}

func (s *IngestService) validateColumns(ctx context.Context, eventID string, columns []string) error {
	found := make(map[string]bool, len(columns))
	for _, column := range columns {
		found[column] = true
	}

	var missing []string
	for _, required := range s.requiredColumns {
		if !found[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	validationErr := &ValidationError{Missing: missing, Found: columns}
	failMsg := validationErr.Error()
	_ = s.logService.CreateLog(ctx, &eventID, LogActionIngestValidate, LogOutcomeFail, nil, &failMsg)

	return validationErr
}

// padIdentifier left-pads bare numeric identifiers, so a spreadsheet that
// stored "7" round-trips as "07". Non-numeric values pass through untouched.
func padIdentifier(value string, width int) string {
	if value == "" || width <= 0 || len(value) >= width {
		return value
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return value
		}
	}
	return strings.Repeat("0", width-len(value)) + value
}
