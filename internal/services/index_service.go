package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"serialtag/internal/models"
	"serialtag/internal/store"

	"gorm.io/gorm"
)

// IndexService maintains the optional serial_code -> batch_id inverted index.
// The batch store stays authoritative: a stale or missing index entry only
// costs a full scan, never a wrong answer. Rebuild also audits the store for
// duplicate serial codes across batches.
type IndexService struct {
	db         *gorm.DB
	batchStore store.BatchStore
	logService LogWriter
}

func NewIndexService(db *gorm.DB, batchStore store.BatchStore, logService LogWriter) (*IndexService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if batchStore == nil {
		return nil, errors.New("batch store is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &IndexService{
		db:         db,
		batchStore: batchStore,
		logService: logService,
	}, nil
}

// Append records freshly issued serials for one batch.
func (s *IndexService) Append(ctx context.Context, batchID string, serials []string) error {
	if s == nil {
		return errors.New("index service is nil")
	}
	if s.db == nil {
		return errors.New("db is nil")
	}
	if batchID == "" {
		return errors.New("batch id is empty")
	}
	if len(serials) == 0 {
		return nil
	}

	entries := make([]models.SerialIndexEntry, 0, len(serials))
	now := time.Now().UTC()
	for _, serial := range serials {
		entries = append(entries, models.SerialIndexEntry{
			SerialCode: serial,
			BatchID:    batchID,
			IndexedAt:  now,
		})
	}

	if err := s.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("append index entries: %w", err)
	}

	return nil
}

// Locate returns the batch id indexed for a serial, if any.
func (s *IndexService) Locate(ctx context.Context, serial string) (string, bool, error) {
	if s == nil {
		return "", false, errors.New("index service is nil")
	}
	if s.db == nil {
		return "", false, errors.New("db is nil")
	}
	if serial == "" {
		return "", false, errors.New("serial is empty")
	}

	var entry models.SerialIndexEntry
	err := s.db.WithContext(ctx).Where("serial_code = ?", serial).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("locate serial: %w", err)
	}

	return entry.BatchID, true, nil
}

// Rebuild replaces the index with the current store contents and logs any
// serial code found in more than one batch. Unreadable batches are skipped,
// same as during lookup.
func (s *IndexService) Rebuild(ctx context.Context) (int, error) {
	if s == nil {
		return 0, errors.New("index service is nil")
	}
	if s.db == nil {
		return 0, errors.New("db is nil")
	}
	if s.batchStore == nil {
		return 0, errors.New("batch store is nil")
	}

	ids, err := s.batchStore.ListBatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("list batches: %w", err)
	}

	now := time.Now().UTC()
	seen := make(map[string]string)
	var entries []models.SerialIndexEntry
	for _, id := range ids {
		batch, err := s.batchStore.Read(ctx, id)
		if err != nil {
			continue
		}
		for _, record := range batch.Records {
			if firstBatch, dup := seen[record.SerialCode]; dup {
				serial := record.SerialCode
				message := fmt.Sprintf("duplicate serial in batches %s and %s", firstBatch, id)
				_ = s.logService.CreateLog(ctx, nil, LogActionIndexRebuild, LogOutcomeFail, &serial, &message)
				continue
			}
			seen[record.SerialCode] = id
			entries = append(entries, models.SerialIndexEntry{
				SerialCode: record.SerialCode,
				BatchID:    id,
				IndexedAt:  now,
			})
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SerialIndexEntry{}).Error; err != nil {
			return fmt.Errorf("clear index: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("insert index entries: %w", err)
		}
		return nil
	})
	if err != nil {
		failMsg := fmt.Sprintf("rebuild index: %v", err)
		_ = s.logService.CreateLog(ctx, nil, LogActionIndexRebuild, LogOutcomeFail, nil, &failMsg)
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	successMsg := fmt.Sprintf("indexed serials=%d batches=%d", len(entries), len(ids))
	_ = s.logService.CreateLog(ctx, nil, LogActionIndexRebuild, LogOutcomeSuccess, nil, &successMsg)

	return len(entries), nil
}
