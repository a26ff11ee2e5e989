package results

import (
	"context"
	"sort"
	"sync"
)

// memrepo keeps results in memory when no database is configured.
type memrepo struct {
	mu   sync.RWMutex
	byID map[string]Result
}

func NewMemoryRepository() Repository {
	return &memrepo{byID: make(map[string]Result)}
}

func (m *memrepo) Save(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.GameID] = r
	return nil
}

func (m *memrepo) Recent(_ context.Context, name string, limit int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, r := range m.byID {
		if r.Player1Name == name || r.Player2Name == name {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EndedAt.After(out[j].EndedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memrepo) Close() error { return nil }
