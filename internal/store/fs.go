package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"serialtag/internal/models"
)

const recordsFileName = "records.json"

// FSStore lays batches out as one directory per id under root, holding the
// record data as JSON plus one PNG per rendered QR image.
type FSStore struct {
	root string
	now  func() time.Time
}

func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("store root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}

	return &FSStore{root: root, now: time.Now}, nil
}

// NewFSStoreWithClock injects the clock used to derive batch ids.
func NewFSStoreWithClock(root string, now func() time.Time) (*FSStore, error) {
	s, err := NewFSStore(root)
	if err != nil {
		return nil, err
	}
	if now != nil {
		s.now = now
	}
	return s, nil
}

func (s *FSStore) Write(ctx context.Context, batch models.Batch) (string, error) {
	if s == nil {
		return "", errors.New("fs store is nil")
	}
	_ = ctx

	now := s.now()
	id := NewBatchID(now)
	dir := filepath.Join(s.root, id)

	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("write batch %s: %w", id, ErrBatchExists)
		}
		return "", fmt.Errorf("create batch dir: %w", err)
	}

	stored := batch.Clone()
	stored.ID = id
	stored.CreatedAt = now.UTC()

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("encode batch: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, recordsFileName), data, 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("write batch records: %w", err)
	}

	for serial, image := range batch.Images {
		name := fmt.Sprintf("qr_%s.png", serial)
		if err := os.WriteFile(filepath.Join(dir, name), image, 0o644); err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("write qr image %s: %w", serial, err)
		}
	}

	return id, nil
}

func (s *FSStore) ListBatches(ctx context.Context) ([]string, error) {
	if s == nil {
		return nil, errors.New("fs store is nil")
	}
	_ = ctx

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read store root: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !validBatchID(entry.Name()) {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)

	return ids, nil
}

func (s *FSStore) Read(ctx context.Context, id string) (models.Batch, error) {
	if s == nil {
		return models.Batch{}, errors.New("fs store is nil")
	}
	_ = ctx

	data, err := os.ReadFile(filepath.Join(s.root, id, recordsFileName))
	if err != nil {
		return models.Batch{}, fmt.Errorf("read batch %s: %w", id, ErrBatchNotFound)
	}

	var batch models.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return models.Batch{}, fmt.Errorf("decode batch %s: %w", id, ErrBatchNotFound)
	}

	return batch, nil
}

// ImagePath returns where the QR image for a serial in a batch lives. The
// HTTP layer serves these files directly.
func (s *FSStore) ImagePath(batchID string, serial string) string {
	return filepath.Join(s.root, batchID, fmt.Sprintf("qr_%s.png", serial))
}
