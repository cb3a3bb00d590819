package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kamuma03/Intel-agent/internal/agent"
	"github.com/kamuma03/Intel-agent/internal/config"
	"github.com/kamuma03/Intel-agent/internal/memory"
	"github.com/kamuma03/Intel-agent/internal/provider"
	"github.com/kamuma03/Intel-agent/internal/recall"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

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

	var index *recall.Index
	if cfg.RecallEnabled {
		index = recall.NewIndex(recall.NewHashEmbedder())
	}

	core := agent.New(store, llm, agent.Options{
		HistoryLimit:    cfg.HistoryLimit,
		GenerateTimeout: cfg.GenerateTimeout,
		RecallTopK:      cfg.RecallTopK,
		Recall:          index,
	})

	userID := cfg.DefaultUserID
	fmt.Printf("Agent ready (provider: %s, user: %s).\n", llm.Name(), userID)
	fmt.Println("Type a message, 'save <key> <value>' to store a fact, or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == "exit" || line == "quit":
			fmt.Println("Bye.")
			return
		case strings.HasPrefix(line, "save "):
			parts := strings.SplitN(line, " ", 3)
			if len(parts) < 3 {
				fmt.Println("Usage: save <key> <value>")
				continue
			}
			if err := core.SaveMemory(ctx, userID, parts[1], parts[2]); err != nil {
				fmt.Printf("Could not save: %v\n", err)
				continue
			}
			fmt.Printf("Saved %s.\n", parts[1])
		default:
			if len(line) > cfg.MaxInputChars {
				fmt.Printf("Message too long (limit %d characters).\n", cfg.MaxInputChars)
				continue
			}
			reply, err := core.Respond(ctx, userID, line)
			if err != nil {
				fmt.Printf("Agent error: %v\n", err)
				continue
			}
			fmt.Println(reply)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin read error: %v", err)
	}
}
