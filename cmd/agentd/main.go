package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamuma03/Intel-agent/internal/agent"
	"github.com/kamuma03/Intel-agent/internal/config"
	"github.com/kamuma03/Intel-agent/internal/httpapi"
	"github.com/kamuma03/Intel-agent/internal/memory"
	"github.com/kamuma03/Intel-agent/internal/observability"
	"github.com/kamuma03/Intel-agent/internal/provider"
	"github.com/kamuma03/Intel-agent/internal/recall"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := memory.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer store.Close()

	llm := provider.New(provider.Config{
		Name:            cfg.LLMProvider,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
		GoogleAPIKey:    cfg.GoogleAPIKey,
		GeminiModel:     cfg.GeminiModel,
		GeminiBaseURL:   cfg.GeminiBaseURL,
	})
	log.Printf("llm provider: %s", llm.Name())

	var index *recall.Index
	if cfg.RecallEnabled {
		index = recall.NewIndex(recall.NewHashEmbedder())
	}

	core := agent.New(store, llm, agent.Options{
		HistoryLimit:    cfg.HistoryLimit,
		GenerateTimeout: cfg.GenerateTimeout,
		RecallTopK:      cfg.RecallTopK,
		Recall:          index,
		Metrics:         metrics,
	})

	api := httpapi.New(cfg, core, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	core.StartTurnJanitor(runCtx, time.Minute, 30*time.Minute)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
