// Package agent orchestrates conversation turns: it owns context assembly
// from the memory layer and delegates text generation to the active provider.
package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kamuma03/Intel-agent/internal/memory"
	"github.com/kamuma03/Intel-agent/internal/observability"
	"github.com/kamuma03/Intel-agent/internal/provider"
	"github.com/kamuma03/Intel-agent/internal/recall"
	"github.com/kamuma03/Intel-agent/internal/session"
)

const (
	defaultHistoryLimit    = 5
	defaultGenerateTimeout = 60 * time.Second
	defaultRecallTopK      = 3
)

// Options tune orchestration. Zero values fall back to defaults; Recall and
// Metrics are optional collaborators and may be nil.
type Options struct {
	HistoryLimit    int
	GenerateTimeout time.Duration
	RecallTopK      int
	Recall          *recall.Index
	Metrics         *observability.Metrics
}

// Agent runs the per-turn state machine: log inbound, assemble context,
// generate, log outbound. Turns for one user are serialized; state never
// leaks across users because every store read and write is keyed by user ID.
type Agent struct {
	store    memory.Store
	provider provider.Provider
	recall   *recall.Index
	metrics  *observability.Metrics
	turns    *session.Manager

	historyLimit    int
	generateTimeout time.Duration
	recallTopK      int
}

func New(store memory.Store, p provider.Provider, opts Options) *Agent {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultGenerateTimeout
	}
	if opts.RecallTopK <= 0 {
		opts.RecallTopK = defaultRecallTopK
	}
	return &Agent{
		store:           store,
		provider:        p,
		recall:          opts.Recall,
		metrics:         opts.Metrics,
		turns:           session.NewManager(),
		historyLimit:    opts.HistoryLimit,
		generateTimeout: opts.GenerateTimeout,
		recallTopK:      opts.RecallTopK,
	}
}

// Respond runs one full turn for the user and returns the reply text.
// Callers are expected to bound message length (reference bound: 2000
// characters) before calling; the core does not enforce it.
func (a *Agent) Respond(ctx context.Context, userID, message string) (string, error) {
	release := a.turns.BeginTurn(userID)
	defer release()
	if a.metrics != nil {
		a.metrics.KnownUsers.Set(float64(a.turns.KnownUsers()))
	}

	// The inbound message is logged before any context read, so the
	// transcript stays accurate even when generation fails later.
	if err := a.store.LogInteraction(ctx, userID, memory.RoleUser, message); err != nil {
		return "", a.failTurn(fmt.Errorf("log inbound message: %w", err))
	}

	history, err := a.store.RecentHistory(ctx, userID, a.historyLimit)
	if err != nil {
		return "", a.failTurn(fmt.Errorf("read recent history: %w", err))
	}
	facts, err := a.store.AllFacts(ctx, userID)
	if err != nil {
		return "", a.failTurn(fmt.Errorf("read facts: %w", err))
	}
	notes := a.recallNotes(ctx, userID, message)

	prompt := buildPrompt(facts, notes, message)
	turns := toTurns(history)

	gctx, cancel := context.WithTimeout(ctx, a.generateTimeout)
	defer cancel()

	start := time.Now()
	reply, err := a.provider.Generate(gctx, prompt, turns)
	if err != nil {
		if a.metrics != nil {
			a.metrics.ProviderErrors.WithLabelValues(a.provider.Name()).Inc()
		}
		// No assistant entry is written for a failed generation.
		return "", a.failTurn(fmt.Errorf("generate reply: %w", err))
	}
	if a.metrics != nil {
		a.metrics.ObserveGenerateLatency(time.Since(start))
	}

	if err := a.store.LogInteraction(ctx, userID, memory.RoleAssistant, reply); err != nil {
		return "", a.failTurn(fmt.Errorf("log assistant reply: %w", err))
	}

	if a.metrics != nil {
		a.metrics.TurnsTotal.WithLabelValues("ok").Inc()
	}
	return reply, nil
}

// SaveMemory upserts one fact. It never touches the interaction log and never
// triggers generation.
func (a *Agent) SaveMemory(ctx context.Context, userID, key, value string) error {
	if err := a.store.SaveFact(ctx, userID, key, value); err != nil {
		return fmt.Errorf("save fact: %w", err)
	}
	if a.metrics != nil {
		a.metrics.FactsSaved.Inc()
	}
	if a.recall != nil {
		// Best effort: the fact is durably saved already.
		if err := a.recall.Add(ctx, userID, key+": "+value); err != nil {
			log.Printf("recall index add failed for user %s: %v", userID, err)
		}
	}
	return nil
}

// StartTurnJanitor prunes idle per-user turn state in the background until
// ctx is cancelled.
func (a *Agent) StartTurnJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	a.turns.StartJanitor(ctx, interval, maxIdle)
}

// Memories returns all facts recorded for the user.
func (a *Agent) Memories(ctx context.Context, userID string) (map[string]string, error) {
	return a.store.AllFacts(ctx, userID)
}

// Memory returns one fact value, or memory.ErrNotFound.
func (a *Agent) Memory(ctx context.Context, userID, key string) (string, error) {
	return a.store.GetFact(ctx, userID, key)
}

func (a *Agent) recallNotes(ctx context.Context, userID, message string) []string {
	if a.recall == nil {
		return nil
	}
	notes, err := a.recall.Search(ctx, userID, message, a.recallTopK)
	if err != nil {
		log.Printf("recall search failed for user %s: %v", userID, err)
		return nil
	}
	return notes
}

func (a *Agent) failTurn(err error) error {
	if a.metrics != nil {
		a.metrics.TurnsTotal.WithLabelValues("error").Inc()
	}
	return err
}

func toTurns(history []memory.Interaction) []provider.Turn {
	turns := make([]provider.Turn, 0, len(history))
	for _, it := range history {
		turns = append(turns, provider.Turn{Role: it.Role, Content: it.Content})
	}
	return turns
}
