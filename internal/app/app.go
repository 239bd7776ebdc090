// Package app assembles the turn core from configuration. Both entrypoints
// (the HTTP API and the Matrix bot) share this wiring.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/litsalon/backend/internal/config"
	"github.com/litsalon/backend/internal/model/persona"
	"github.com/litsalon/backend/internal/service/correction"
	"github.com/litsalon/backend/internal/service/knowledge"
	"github.com/litsalon/backend/internal/service/llm"
	"github.com/litsalon/backend/internal/service/orchestrator"
	"github.com/litsalon/backend/internal/service/session"
)

// BuildCore constructs the orchestrator and its collaborators. The returned
// close func releases any durable store and must run at shutdown.
func BuildCore(ctx context.Context, cfg *config.Config) (*orchestrator.Orchestrator, func() error, error) {
	personas, err := loadPersonas(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	sessions := session.NewStore(personas, cfg.Chat.TranscriptCap)

	corrections, closeStore, err := buildCorrectionStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	completer := buildCompleter(ctx, cfg.LLM)
	facts := buildKnowledge(cfg.Knowledge)

	core := orchestrator.New(personas, sessions, corrections, facts, completer, orchestrator.Config{
		ContextWindow:  cfg.Chat.ContextWindow,
		RetryAttempts:  cfg.LLM.RetryAttempts,
		RetryDelay:     cfg.LLM.RetryDelay,
		AttemptTimeout: cfg.LLM.AttemptTimeout,
	})
	return core, closeStore, nil
}

func loadPersonas(cfg config.StoreConfig) (persona.Store, error) {
	if cfg.PersonasFile != "" {
		items, err := persona.LoadFile(cfg.PersonasFile)
		if err != nil {
			return nil, fmt.Errorf("load personas from %s: %w", cfg.PersonasFile, err)
		}
		log.Printf("[app] %d personas loaded from %s", len(items), cfg.PersonasFile)
		return persona.NewMemoryStore(items), nil
	}
	return persona.NewMemoryStore(persona.Seed()), nil
}

func buildCorrectionStore(cfg config.StoreConfig) (correction.Store, func() error, error) {
	if cfg.CorrectionsDB == "" {
		log.Printf("[app] corrections kept in memory; set CORRECTIONS_DB for durability")
		return correction.NewMemoryStore(), func() error { return nil }, nil
	}

	store, err := correction.OpenSQLite(cfg.CorrectionsDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open corrections db: %w", err)
	}
	log.Printf("[app] corrections stored in %s", cfg.CorrectionsDB)
	return store, store.Close, nil
}

// buildCompleter returns nil when no provider is configured; the core then
// answers regular turns with a configuration failure.
func buildCompleter(ctx context.Context, cfg config.LLMConfig) llm.Completer {
	if !cfg.Enabled() {
		log.Printf("[app] no completion credentials configured, chat turns will fail")
		return nil
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		log.Printf("[app] completion provider: anthropic model=%s", cfg.Model)
		return llm.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.Model, cfg.MaxTokens, cfg.Temperature)
	default:
		chatModel, err := cfg.NewArkModel(ctx)
		if err != nil {
			log.Printf("[app] ark model init failed, chat turns will fail: %v", err)
			return nil
		}
		completer, err := llm.NewArkCompleter(ctx, chatModel)
		if err != nil {
			log.Printf("[app] ark chain init failed, chat turns will fail: %v", err)
			return nil
		}
		log.Printf("[app] completion provider: ark model=%s", cfg.Model)
		return completer
	}
}

func buildKnowledge(cfg config.KnowledgeConfig) *knowledge.Service {
	if !cfg.WikipediaEnabled {
		return knowledge.NewService(nil)
	}

	wiki, err := knowledge.NewWikipedia(cfg.WikipediaBaseURL)
	if err != nil {
		log.Printf("[app] wikipedia cache init failed, continuing without enrichment: %v", err)
		return knowledge.NewService(nil)
	}
	log.Printf("[app] wikipedia enrichment enabled")
	return knowledge.NewService(wiki)
}
