package store

import (
	"context"
	"errors"

	"lumira/pkg/domain"
)

// ErrNotFound indicates the requested reading does not exist.
var ErrNotFound = errors.New("reading not found")

// Store defines persistence operations for readings. Readings are
// write-once: SaveReading with an id that already exists is a no-op, so a
// retried persistence step never creates a duplicate logical record.
type Store interface {
	SaveReading(ctx context.Context, r domain.Reading) (string, error)
	GetReading(ctx context.Context, id string) (domain.Reading, error)
	ListReadingsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Reading, error)
}
