package services

import (
	"context"
	"testing"

	"serialtag/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}

	return db
}

func createLogsTable(t *testing.T, db *gorm.DB) {
	t.Helper()

	query := "CREATE TABLE logs (id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))), event_id TEXT, datetime DATETIME NOT NULL, action TEXT NOT NULL, outcome TEXT NOT NULL, serial_code TEXT, message TEXT)"
	if err := db.Exec(query).Error; err != nil {
		t.Fatalf("create logs table: %v", err)
	}
}

func createSerialIndexTable(t *testing.T, db *gorm.DB) {
	t.Helper()

	query := "CREATE TABLE serial_index_entries (id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))), serial_code TEXT NOT NULL UNIQUE, batch_id TEXT NOT NULL, indexed_at DATETIME NOT NULL)"
	if err := db.Exec(query).Error; err != nil {
		t.Fatalf("create serial index table: %v", err)
	}
}

type loggedEntry struct {
	eventID *string
	action  string
	outcome string
	serial  *string
	message *string
}

type stubLogWriter struct {
	entries []loggedEntry
}

func (s *stubLogWriter) CreateLog(ctx context.Context, eventID *string, action string, outcome string, serialCode *string, message *string) error {
	copyString := func(value *string) *string {
		if value == nil {
			return nil
		}
		copied := *value
		return &copied
	}

	s.entries = append(s.entries, loggedEntry{
		eventID: copyString(eventID),
		action:  action,
		outcome: outcome,
		serial:  copyString(serialCode),
		message: copyString(message),
	})
	return nil
}

func (s *stubLogWriter) countByAction(action string, outcome string) int {
	count := 0
	for _, entry := range s.entries {
		if entry.action == action && entry.outcome == outcome {
			count++
		}
	}
	return count
}

type stubDirectory struct {
	existing   map[string]bool
	collisions int
	calls      int
	err        error
}

func (s *stubDirectory) SerialExists(ctx context.Context, serial string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	if s.collisions > 0 {
		s.collisions--
		return true, nil
	}
	return s.existing[serial], nil
}

type stubSerialGenerator struct {
	serials []string
	next    int
	err     error
}

func (s *stubSerialGenerator) Generate(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.next >= len(s.serials) {
		return "", context.Canceled
	}
	serial := s.serials[s.next]
	s.next++
	return serial, nil
}

type stubRenderer struct {
	failures int
	payloads []string
	err      error
}

func (s *stubRenderer) Render(ctx context.Context, payload string) ([]byte, error) {
	s.payloads = append(s.payloads, payload)
	if s.failures > 0 {
		s.failures--
		if s.err != nil {
			return nil, s.err
		}
		return nil, context.DeadlineExceeded
	}
	return []byte("png:" + payload), nil
}

type stubBatchWriter struct {
	batches []models.Batch
	id      string
	err     error
}

func (s *stubBatchWriter) Write(ctx context.Context, batch models.Batch) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.batches = append(s.batches, batch)
	return s.id, nil
}

type stubIndexer struct {
	appended    map[string][]string
	located     map[string]string
	locateCalls int
	appendErr   error
	locateErr   error
}

func (s *stubIndexer) Append(ctx context.Context, batchID string, serials []string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	if s.appended == nil {
		s.appended = make(map[string][]string)
	}
	s.appended[batchID] = append(s.appended[batchID], serials...)
	return nil
}

func (s *stubIndexer) Locate(ctx context.Context, serial string) (string, bool, error) {
	s.locateCalls++
	if s.locateErr != nil {
		return "", false, s.locateErr
	}
	batchID, ok := s.located[serial]
	return batchID, ok, nil
}
