package stats

import (
	"context"
	"strings"
	"sync"
)

// memrepo keeps profiles in process memory. Used when DATABASE_URL is unset.
type memrepo struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

func NewMemoryRepository() Repository {
	return &memrepo{profiles: make(map[string]*Profile)}
}

func (m *memrepo) GetProfile(ctx context.Context, player string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[strings.TrimSpace(player)]; ok && p != nil {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (m *memrepo) UpsertProfile(ctx context.Context, profile *Profile) error {
	if profile == nil {
		return nil
	}
	copy := *profile
	m.mu.Lock()
	m.profiles[strings.TrimSpace(profile.Player)] = &copy
	m.mu.Unlock()
	return nil
}
