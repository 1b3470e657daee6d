package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Store keeps live sessions. Load returns nil, nil for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store with the same TTL semantics as the Redis one.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(entry.raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	entry := memEntry{raw: raw}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[rec.ID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, strings.TrimSpace(id))
	s.mu.Unlock()
	return nil
}
