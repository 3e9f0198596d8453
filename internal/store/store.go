// Package store persists ingestion batches. A batch is written once under a
// timestamp-derived id and never changes; ids sort lexicographically in
// creation order, so a directory listing doubles as a scan order.
package store

import (
	"context"
	"errors"
	"time"

	"serialtag/internal/models"
)

const batchIDLayout = "20060102_150405"

var (
	// ErrBatchExists means a write collided with an already persisted
	// batch id (two writes within the same wall-clock second).
	ErrBatchExists = errors.New("batch already exists")

	// ErrBatchNotFound covers both a missing id and a payload that cannot
	// be deserialized; readers scanning the store skip either case.
	ErrBatchNotFound = errors.New("batch not found")
)

type BatchStore interface {
	// Write persists the batch and its QR images under a fresh
	// timestamp-derived id and returns that id.
	Write(ctx context.Context, batch models.Batch) (string, error)

	// ListBatches returns all batch ids ascending by creation time.
	ListBatches(ctx context.Context) ([]string, error)

	// Read returns the batch stored under id.
	Read(ctx context.Context, id string) (models.Batch, error)
}

// NewBatchID derives the storage key for a batch written at t.
func NewBatchID(t time.Time) string {
	return t.UTC().Format(batchIDLayout)
}

func validBatchID(id string) bool {
	_, err := time.Parse(batchIDLayout, id)
	return err == nil
}
