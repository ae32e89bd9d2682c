package audit

import (
	"context"
	"sync"
)

// MemoryPublisher keeps events in process. It backs development runs
// without Kafka and service tests.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// NewBoundedMemoryPublisher keeps only the most recent limit events.
func NewBoundedMemoryPublisher(limit int) *MemoryPublisher {
	return &MemoryPublisher{limit: limit}
}

func (p *MemoryPublisher) Emit(ctx context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Enrich(ctx, e))
	if p.limit > 0 && len(p.events) > p.limit {
		p.events = append(p.events[:0], p.events[len(p.events)-p.limit:]...)
	}
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Event{}, p.events...)
}

// Actions lists the emitted actions in order.
func (p *MemoryPublisher) Actions() []Action {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Action, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

func (p *MemoryPublisher) Close(context.Context) error {
	return nil
}
