package scoreboard

import (
	"context"
	"sync"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
)

// MemoryStore keeps counters in process memory. Used when no Redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	seen    map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		seen:    make(map[string]struct{}),
	}
}

func (s *MemoryStore) Add(_ context.Context, g *tictactoe.Game) error {
	ds := deltas(g)
	if len(ds) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[g.ID]; dup {
		return nil
	}
	s.seen[g.ID] = struct{}{}
	for _, d := range ds {
		rec, ok := s.records[d.name]
		if !ok {
			rec = &Record{Name: d.name}
			s.records[d.name] = rec
		}
		switch d.field {
		case fieldWins:
			rec.Wins++
		case fieldLosses:
			rec.Losses++
		case fieldDraws:
			rec.Draws++
		}
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (Record, error) {
	name, err := normalize(name)
	if err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[name]; ok {
		return *rec, nil
	}
	return Record{Name: name}, nil
}

func (s *MemoryStore) Close() error { return nil }
