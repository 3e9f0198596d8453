package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"serialtag/internal/models"
	"serialtag/internal/store"
)

var (
	// ErrSerialNotFound means every batch was scanned and none holds the code.
	ErrSerialNotFound = errors.New("serial code not found")

	// ErrNoBatches means nothing has been ingested yet, so a miss says
	// nothing about whether the code is valid.
	ErrNoBatches = errors.New("no batches ingested yet")
)

// LookupService resolves a serial code to its record. Batches are scanned in
// ascending id order, so with duplicate codes the oldest batch wins. When an
// index is configured it is tried first, but a stale hit falls back to the
// full scan rather than reporting a miss.
type LookupService struct {
	batchStore store.BatchStore
	index      SerialIndexer
	logService LogWriter

	// legacyExport optionally points at a flat CSV written by pre-batching
	// deployments. Consulted only after every batch misses.
	legacyExport string
}

func NewLookupService(batchStore store.BatchStore, index SerialIndexer, logService LogWriter, legacyExport string) (*LookupService, error) {
	if batchStore == nil {
		return nil, errors.New("batch store is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &LookupService{
		batchStore:   batchStore,
		index:        index,
		logService:   logService,
		legacyExport: legacyExport,
	}, nil
}

func (s *LookupService) Find(ctx context.Context, serial string) (models.Record, error) {
	if s == nil {
		return models.Record{}, errors.New("lookup service is nil")
	}
	if s.batchStore == nil {
		return models.Record{}, errors.New("batch store is nil")
	}

	serial = strings.ToUpper(strings.TrimSpace(serial))
	if serial == "" {
		return models.Record{}, fmt.Errorf("find serial: %w", ErrSerialNotFound)
	}

	record, err := s.find(ctx, serial)
	if err != nil {
		failMsg := err.Error()
		_ = s.logService.CreateLog(ctx, nil, LogActionLookup, LogOutcomeFail, &serial, &failMsg)
		return models.Record{}, err
	}

	_ = s.logService.CreateLog(ctx, nil, LogActionLookup, LogOutcomeSuccess, &serial, nil)
	return record, nil
}

func (s *LookupService) find(ctx context.Context, serial string) (models.Record, error) {
	if s.index != nil {
		if batchID, ok, err := s.index.Locate(ctx, serial); err == nil && ok {
			if batch, err := s.batchStore.Read(ctx, batchID); err == nil {
				if record, found := scanBatch(batch, serial); found {
					return record, nil
				}
			}
			// Stale index entry: fall through to the authoritative scan.
		}
	}

	ids, err := s.batchStore.ListBatches(ctx)
	if err != nil {
		return models.Record{}, fmt.Errorf("list batches: %w", err)
	}
	if len(ids) == 0 {
		if record, found := s.findLegacy(serial); found {
			return record, nil
		}
		return models.Record{}, ErrNoBatches
	}

	for _, id := range ids {
		batch, err := s.batchStore.Read(ctx, id)
		if err != nil {
			// Corrupt or foreign batch: skip, don't abort.
			continue
		}
		if record, found := scanBatch(batch, serial); found {
			return record, nil
		}
	}

	if record, found := s.findLegacy(serial); found {
		return record, nil
	}

	return models.Record{}, ErrSerialNotFound
}

// SerialExists reports whether any batch already holds the code. It backs the
// generator's uniqueness check, so the store is read in full on every call;
// an index hit merely short-circuits the positive case.
func (s *LookupService) SerialExists(ctx context.Context, serial string) (bool, error) {
	if s == nil {
		return false, errors.New("lookup service is nil")
	}
	if s.batchStore == nil {
		return false, errors.New("batch store is nil")
	}

	if s.index != nil {
		if _, ok, err := s.index.Locate(ctx, serial); err == nil && ok {
			return true, nil
		}
	}

	ids, err := s.batchStore.ListBatches(ctx)
	if err != nil {
		return false, fmt.Errorf("list batches: %w", err)
	}

	for _, id := range ids {
		batch, err := s.batchStore.Read(ctx, id)
		if err != nil {
			continue
		}
		if _, found := scanBatch(batch, serial); found {
			return true, nil
		}
	}

	return false, nil
}

func scanBatch(batch models.Batch, serial string) (models.Record, bool) {
	for _, record := range batch.Records {
		if record.SerialCode == serial {
			return normalizeRecord(record, batch.Columns), true
		}
	}
	return models.Record{}, false
}

// normalizeRecord fills absent cells with empty strings so the external
// contract never surfaces a null.
func normalizeRecord(record models.Record, columns []string) models.Record {
	normalized := record.Clone()
	if normalized.Fields == nil {
		normalized.Fields = make(map[string]string, len(columns))
	}
	for _, column := range columns {
		if _, ok := normalized.Fields[column]; !ok {
			normalized.Fields[column] = ""
		}
	}
	return normalized
}

func (s *LookupService) findLegacy(serial string) (models.Record, bool) {
	if s.legacyExport == "" {
		return models.Record{}, false
	}

	data, err := os.ReadFile(s.legacyExport)
	if err != nil {
		return models.Record{}, false
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil || len(rows) < 2 {
		return models.Record{}, false
	}

	header := rows[0]
	serialIndex := -1
	for i, column := range header {
		if strings.TrimSpace(column) == ColumnSerial {
			serialIndex = i
			break
		}
	}
	if serialIndex == -1 {
		return models.Record{}, false
	}

	for _, row := range rows[1:] {
		if serialIndex >= len(row) || strings.TrimSpace(row[serialIndex]) != serial {
			continue
		}

		fields := make(map[string]string, len(header))
		for i, column := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			fields[strings.TrimSpace(column)] = value
		}

		record := models.Record{Fields: fields, SerialCode: serial}
		if issued, err := time.Parse(time.RFC3339, fields[ColumnIssuedAt]); err == nil {
			record.IssuedAt = issued
		}
		record.ScanURL = fields[ColumnQRTarget]
		delete(record.Fields, ColumnSerial)
		delete(record.Fields, ColumnIssuedAt)
		delete(record.Fields, ColumnQRTarget)

		return record, true
	}

	return models.Record{}, false
}
