package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"lumira/pkg/domain"
)

func TestMemoryStoreSaveIsIdempotentOnID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := domain.Reading{ID: "r-1", OwnerID: "u-1", NarrativeText: "original", CreatedAt: time.Now().UTC()}
	if _, err := s.SaveReading(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	retry := first
	retry.NarrativeText = "retried"
	id, err := s.SaveReading(ctx, retry)
	if err != nil {
		t.Fatalf("retry save: %v", err)
	}
	if id != "r-1" {
		t.Fatalf("unexpected id: %q", id)
	}

	got, err := s.GetReading(ctx, "r-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.NarrativeText != "original" {
		t.Fatal("retried save must not replace the original record")
	}
	readings, err := s.ListReadingsByOwner(ctx, "u-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("expected one logical record, got %d", len(readings))
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.GetReading(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListNewestFirstAndScopedToOwner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, r := range []domain.Reading{
		{ID: "a", OwnerID: "u-1", NarrativeText: "one"},
		{ID: "b", OwnerID: "u-2", NarrativeText: "two"},
		{ID: "c", OwnerID: "u-1", NarrativeText: "three"},
	} {
		if _, err := s.SaveReading(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	readings, err := s.ListReadingsByOwner(ctx, "u-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(readings) != 2 || readings[0].ID != "c" || readings[1].ID != "a" {
		t.Fatalf("unexpected listing: %+v", readings)
	}
}
