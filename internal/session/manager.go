package session

import (
	"context"
	"sync"
	"time"
)

// Manager serializes turns per user. Interleaved turns for one user could
// read a transcript missing the other turn's entries, so at most one turn is
// in flight per user ID at a time; turns for different users never block each
// other.
type Manager struct {
	mu    sync.Mutex
	users map[string]*userState
}

type userState struct {
	turn     sync.Mutex
	lastSeen time.Time
}

func NewManager() *Manager {
	return &Manager{users: make(map[string]*userState)}
}

// BeginTurn blocks until no other turn is in flight for userID and returns a
// release func the caller must invoke when the turn ends.
func (m *Manager) BeginTurn(userID string) (release func()) {
	m.mu.Lock()
	st, ok := m.users[userID]
	if !ok {
		st = &userState{}
		m.users[userID] = st
	}
	st.lastSeen = time.Now().UTC()
	m.mu.Unlock()

	st.turn.Lock()
	return st.turn.Unlock
}

// KnownUsers reports how many users currently have gate state.
func (m *Manager) KnownUsers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// PruneIdle drops gate state for users inactive longer than maxIdle. State
// with a turn in flight is never pruned.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for userID, st := range m.users {
		if st.lastSeen.After(cutoff) {
			continue
		}
		if !st.turn.TryLock() {
			continue
		}
		st.turn.Unlock()
		delete(m.users, userID)
		pruned++
	}
	return pruned
}

// StartJanitor prunes idle gate state periodically until ctx is done.
func (m *Manager) StartJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.PruneIdle(maxIdle)
			}
		}
	}()
}
