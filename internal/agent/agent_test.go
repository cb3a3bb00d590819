package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kamuma03/Intel-agent/internal/memory"
	"github.com/kamuma03/Intel-agent/internal/provider"
	"github.com/kamuma03/Intel-agent/internal/recall"
)

func TestRespondEmptyHistoryLogsBothTurns(t *testing.T) {
	store := memory.NewInMemoryStore()
	a := New(store, provider.NewMockProvider(), Options{})
	ctx := context.Background()

	reply, err := a.Respond(ctx, "A", "hello")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(reply, "hello") {
		t.Fatalf("reply = %q, want it to contain the message", reply)
	}

	history, err := store.RecentHistory(ctx, "A", 10)
	if err != nil {
		t.Fatalf("RecentHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	if history[0].Role != memory.RoleUser || history[0].Content != "hello" {
		t.Fatalf("first entry = %+v, want user hello", history[0])
	}
	if history[1].Role != memory.RoleAssistant || history[1].Content != reply {
		t.Fatalf("second entry = %+v, want assistant reply", history[1])
	}
}

func TestRespondFailedGenerateLogsNoAssistantEntry(t *testing.T) {
	store := memory.NewInMemoryStore()
	a := New(store, &failingProvider{}, Options{})
	ctx := context.Background()

	if _, err := a.Respond(ctx, "A", "hello"); err == nil {
		t.Fatalf("Respond() expected error from failing provider")
	}

	history, err := store.RecentHistory(ctx, "A", 10)
	if err != nil {
		t.Fatalf("RecentHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want only the inbound entry", len(history))
	}
	if history[0].Role != memory.RoleUser {
		t.Fatalf("entry role = %q, want user", history[0].Role)
	}
}

func TestRespondHistoryIncludesInboundMessage(t *testing.T) {
	store := memory.NewInMemoryStore()
	cp := &capturingProvider{reply: "ok"}
	a := New(store, cp, Options{})

	if _, err := a.Respond(context.Background(), "A", "first"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(cp.history) != 1 {
		t.Fatalf("history passed to provider = %d turns, want 1", len(cp.history))
	}
	if cp.history[0].Role != provider.RoleUser || cp.history[0].Content != "first" {
		t.Fatalf("history[0] = %+v, want the just-logged inbound turn", cp.history[0])
	}
}

func TestRespondHonorsHistoryLimit(t *testing.T) {
	store := memory.NewInMemoryStore()
	cp := &capturingProvider{reply: "ok"}
	a := New(store, cp, Options{HistoryLimit: 3})
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		if _, err := a.Respond(ctx, "A", msg); err != nil {
			t.Fatalf("Respond(%q) error = %v", msg, err)
		}
	}

	// Before the last generate the transcript holds 5 entries; the limit
	// keeps only the newest 3, oldest first.
	if len(cp.history) != 3 {
		t.Fatalf("history = %d turns, want 3", len(cp.history))
	}
	if cp.history[0].Content != "two" || cp.history[2].Content != "three" {
		t.Fatalf("window = [%q %q %q], want [two, reply, three]",
			cp.history[0].Content, cp.history[1].Content, cp.history[2].Content)
	}
}

func TestRespondIncludesFactsBlock(t *testing.T) {
	store := memory.NewInMemoryStore()
	cp := &capturingProvider{reply: "ok"}
	a := New(store, cp, Options{})
	ctx := context.Background()

	if err := a.SaveMemory(ctx, "A", "hobby", "chess"); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	if _, err := a.Respond(ctx, "A", "what do I like?"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(cp.prompt, "- hobby: chess") {
		t.Fatalf("prompt = %q, want facts block with hobby", cp.prompt)
	}
	if !strings.Contains(cp.prompt, "User message: what do I like?") {
		t.Fatalf("prompt = %q, want trailing user message", cp.prompt)
	}
}

func TestRespondDoesNotLeakFactsAcrossUsers(t *testing.T) {
	store := memory.NewInMemoryStore()
	cp := &capturingProvider{reply: "ok"}
	a := New(store, cp, Options{})
	ctx := context.Background()

	if err := a.SaveMemory(ctx, "A", "hobby", "chess"); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	if _, err := a.Respond(ctx, "B", "hello"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if strings.Contains(cp.prompt, "chess") {
		t.Fatalf("user B's prompt leaked user A's fact: %q", cp.prompt)
	}
	if !strings.Contains(cp.prompt, "(none recorded)") {
		t.Fatalf("prompt = %q, want empty facts marker", cp.prompt)
	}
}

func TestSaveMemoryRoundTripAndOverwrite(t *testing.T) {
	store := memory.NewInMemoryStore()
	a := New(store, provider.NewMockProvider(), Options{})
	ctx := context.Background()

	if err := a.SaveMemory(ctx, "A", "hobby", "chess"); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	facts, err := a.Memories(ctx, "A")
	if err != nil {
		t.Fatalf("Memories() error = %v", err)
	}
	if len(facts) != 1 || facts["hobby"] != "chess" {
		t.Fatalf("facts = %v, want {hobby: chess}", facts)
	}

	if err := a.SaveMemory(ctx, "A", "hobby", "go"); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	facts, err = a.Memories(ctx, "A")
	if err != nil {
		t.Fatalf("Memories() error = %v", err)
	}
	if len(facts) != 1 || facts["hobby"] != "go" {
		t.Fatalf("facts = %v, want single updated {hobby: go}", facts)
	}
}

func TestMemoryPointLookup(t *testing.T) {
	store := memory.NewInMemoryStore()
	a := New(store, provider.NewMockProvider(), Options{})
	ctx := context.Background()

	if _, err := a.Memory(ctx, "A", "hobby"); !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound before save", err)
	}
	if err := a.SaveMemory(ctx, "A", "hobby", "chess"); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	value, err := a.Memory(ctx, "A", "hobby")
	if err != nil {
		t.Fatalf("Memory() error = %v", err)
	}
	if value != "chess" {
		t.Fatalf("value = %q, want chess", value)
	}
}

func TestSaveMemoryNeverTouchesInteractionLog(t *testing.T) {
	store := memory.NewInMemoryStore()
	a := New(store, provider.NewMockProvider(), Options{})
	ctx := context.Background()

	if err := a.SaveMemory(ctx, "A", "hobby", "chess"); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	history, err := store.RecentHistory(ctx, "A", 10)
	if err != nil {
		t.Fatalf("RecentHistory() error = %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("len(history) = %d, want 0 after fact save", len(history))
	}
}

func TestRespondTimesOutHungProvider(t *testing.T) {
	store := memory.NewInMemoryStore()
	a := New(store, &hangingProvider{}, Options{GenerateTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	_, err := a.Respond(ctx, "A", "hello")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}

	history, err := store.RecentHistory(ctx, "A", 10)
	if err != nil {
		t.Fatalf("RecentHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want only the inbound entry", len(history))
	}
}

func TestRespondWithRecallIncludesSavedNotes(t *testing.T) {
	store := memory.NewInMemoryStore()
	cp := &capturingProvider{reply: "ok"}
	ix := recall.NewIndex(recall.NewHashEmbedder())
	a := New(store, cp, Options{Recall: ix, RecallTopK: 1})
	ctx := context.Background()

	if err := a.SaveMemory(ctx, "A", "hobby", "chess"); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	if _, err := a.Respond(ctx, "A", "hobby: chess"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(cp.prompt, "Possibly relevant notes:") {
		t.Fatalf("prompt = %q, want recall notes section", cp.prompt)
	}
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Generate(context.Context, string, []provider.Turn) (string, error) {
	return "", errors.New("vendor unavailable")
}

type hangingProvider struct{}

func (hangingProvider) Name() string { return "hanging" }

func (hangingProvider) Generate(ctx context.Context, _ string, _ []provider.Turn) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type capturingProvider struct {
	prompt  string
	history []provider.Turn
	reply   string
}

func (p *capturingProvider) Name() string { return "capturing" }

func (p *capturingProvider) Generate(_ context.Context, prompt string, history []provider.Turn) (string, error) {
	p.prompt = prompt
	p.history = append([]provider.Turn(nil), history...)
	return p.reply, nil
}
