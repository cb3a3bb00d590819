package memory

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a process-local store for local/dev use and tests. It
// honors the same contract as PostgresStore: last-write-wins facts, an
// append-only transcript with monotonic IDs, strict per-user partitioning.
type InMemoryStore struct {
	mu           sync.RWMutex
	facts        map[string]map[string]Fact
	interactions map[string][]Interaction
	nextID       int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		facts:        make(map[string]map[string]Fact),
		interactions: make(map[string][]Interaction),
	}
}

func (s *InMemoryStore) SaveFact(_ context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey, ok := s.facts[userID]
	if !ok {
		byKey = make(map[string]Fact)
		s.facts[userID] = byKey
	}
	f, exists := byKey[key]
	if !exists {
		f = Fact{UserID: userID, Key: key, CreatedAt: time.Now().UTC()}
	}
	f.Value = value
	byKey[key] = f
	return nil
}

func (s *InMemoryStore) GetFact(_ context.Context, userID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.facts[userID][key]
	if !ok {
		return "", ErrNotFound
	}
	return f.Value, nil
}

func (s *InMemoryStore) AllFacts(_ context.Context, userID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.facts[userID]))
	for key, f := range s.facts[userID] {
		out[key] = f.Value
	}
	return out, nil
}

func (s *InMemoryStore) LogInteraction(_ context.Context, userID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.interactions[userID] = append(s.interactions[userID], Interaction{
		ID:        s.nextID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *InMemoryStore) RecentHistory(_ context.Context, userID string, limit int) ([]Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.interactions[userID]
	if len(arr) == 0 {
		return []Interaction{}, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Interaction, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
