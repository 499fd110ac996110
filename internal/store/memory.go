package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/musicweb/listing-scout/internal/listing"
)

// Memory provides an in-memory listing.Store for development/testing.
type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	listings map[int64]listing.Record
	hits     int64
}

// NewMemory constructs a Memory store.
func NewMemory() *Memory {
	return &Memory{
		nextID:   1,
		listings: make(map[int64]listing.Record),
	}
}

// InsertListing assigns the next id and stores the record.
func (s *Memory) InsertListing(_ context.Context, rec listing.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.listings[rec.ID] = rec
	return rec.ID, nil
}

// ListListings returns every record, newest first.
func (s *Memory) ListListings(_ context.Context) ([]listing.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]listing.Record, 0, len(s.listings))
	for _, rec := range s.listings {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID > records[j].ID })
	return records, nil
}

// DeleteListing removes one record by id.
func (s *Memory) DeleteListing(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[id]; !ok {
		return listing.ErrNotFound
	}
	delete(s.listings, id)
	return nil
}

// RecordHit increments the hit counter.
func (s *Memory) RecordHit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	return nil
}

// TotalHits returns the hit counter.
func (s *Memory) TotalHits(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, nil
}

// Ping always succeeds.
func (s *Memory) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Memory) Close() {}
