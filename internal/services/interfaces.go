package services

import (
	"context"

	"serialtag/internal/models"
)

type LogWriter interface {
	CreateLog(ctx context.Context, eventID *string, action string, outcome string, serialCode *string, message *string) error
}

type SerialGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// CodeDirectory answers whether a serial code has already been issued
// anywhere in the store.
type CodeDirectory interface {
	SerialExists(ctx context.Context, serial string) (bool, error)
}

type QrRenderer interface {
	Render(ctx context.Context, payload string) ([]byte, error)
}

type BatchWriter interface {
	Write(ctx context.Context, batch models.Batch) (string, error)
}

type RecordFinder interface {
	Find(ctx context.Context, serial string) (models.Record, error)
}

type SerialIndexer interface {
	Append(ctx context.Context, batchID string, serials []string) error
	Locate(ctx context.Context, serial string) (string, bool, error)
}
