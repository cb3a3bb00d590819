package memory

import (
	"context"
	"errors"
	"time"
)

// Roles used at the store and orchestrator boundary. Provider adapters map
// these to whatever labels their backend expects.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotFound reports that no fact exists for a (user, key) pair.
var ErrNotFound = errors.New("memory: fact not found")

// Fact is a durable key/value statement about a user. At most one live value
// exists per (UserID, Key) pair; a later save replaces the earlier value.
type Fact struct {
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Interaction is one immutable logged conversation turn, user or assistant
// authored. IDs increase monotonically per store.
type Interaction struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists user facts and the conversation transcript. All state is
// partitioned by user ID. Implementations guarantee their schema exists after
// construction; every call is its own atomic unit against storage and
// connectivity failures propagate to the caller unretried.
type Store interface {
	// SaveFact inserts or replaces the value for (userID, key).
	SaveFact(ctx context.Context, userID, key, value string) error
	// GetFact returns the value for (userID, key), or ErrNotFound.
	GetFact(ctx context.Context, userID, key string) (string, error)
	// AllFacts returns every fact for the user as a key->value map.
	AllFacts(ctx context.Context, userID string) (map[string]string, error)

	// LogInteraction appends one immutable transcript entry.
	LogInteraction(ctx context.Context, userID, role, content string) error
	// RecentHistory returns up to limit most-recent entries for the user in
	// chronological order (oldest first). An empty transcript yields an empty
	// slice, not an error.
	RecentHistory(ctx context.Context, userID string, limit int) ([]Interaction, error)

	Close() error
}
