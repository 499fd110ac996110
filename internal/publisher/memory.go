package publisher

import (
	"context"
	"fmt"
	"sync"

	"github.com/musicweb/listing-scout/internal/listing"
)

// Memory stores published events for inspection in tests.
type Memory struct {
	mu     sync.RWMutex
	events []listing.IngestEvent
}

// NewMemory returns a memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records the event and returns a pseudo ID.
func (p *Memory) Publish(_ context.Context, event listing.IngestEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return fmt.Sprintf("memory-%d", len(p.events)), nil
}

// Events returns the recorded publishes.
func (p *Memory) Events() []listing.IngestEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]listing.IngestEvent, len(p.events))
	copy(out, p.events)
	return out
}
