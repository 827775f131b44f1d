// Package provenance keeps a short history of where each answer came from:
// the live site or a CSV snapshot.
package provenance

import (
	"context"
	"sync"
	"time"
)

const (
	eventTTL     = 24 * time.Hour
	historyLimit = 50
)

type Source string

const (
	SourceSite     Source = "site"
	SourceSnapshot Source = "snapshot"
	SourceNone     Source = "none"
)

type Event struct {
	Domain      string    `json:"domain"`
	Category    string    `json:"category,omitempty"`
	Year        int       `json:"year"`
	Source      Source    `json:"source"`
	FailureKind string    `json:"failure_kind,omitempty"`
	Rows        int       `json:"rows"`
	At          time.Time `json:"at"`
}

// Store records events per domain, newest last, capped at historyLimit.
type Store interface {
	Append(ctx context.Context, e Event) error
	Recent(ctx context.Context, domain string) ([]Event, error)
}

// MemoryStore is the in-process Store used when no Redis is configured.
type MemoryStore struct {
	mu     sync.Mutex
	limit  int
	events map[string][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{limit: historyLimit, events: make(map[string][]Event)}
}

func (m *MemoryStore) Append(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.events[e.Domain], e)
	if len(history) > m.limit {
		history = history[len(history)-m.limit:]
	}
	m.events[e.Domain] = history
	return nil
}

func (m *MemoryStore) Recent(_ context.Context, domain string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.events[domain]))
	copy(out, m.events[domain])
	return out, nil
}
