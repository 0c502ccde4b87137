package main

import (
	"fmt"

	"chakancha/internal/agent"
	"chakancha/internal/embedding"
	"chakancha/internal/rag"
	"chakancha/internal/store"
	"chakancha/internal/tracking"
)

// openStore opens the configured SQLite database.
func openStore() (*store.Store, error) {
	s, err := store.New(cfg.Store.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Store.DatabasePath, err)
	}
	return s, nil
}

// buildEmbeddingEngine creates the configured embedding engine.
func buildEmbeddingEngine() (embedding.Engine, error) {
	return embedding.NewEngine(embedding.Config{
		Provider:       cfg.Embedding.Provider,
		APIKey:         cfg.Embedding.APIKey,
		Model:          cfg.Embedding.Model,
		TaskType:       cfg.Embedding.TaskType,
		OllamaEndpoint: cfg.Embedding.OllamaEndpoint,
		OllamaModel:    cfg.Embedding.OllamaModel,
	})
}

// buildTracker creates the DHL tracking client from config.
func buildTracker() *tracking.Client {
	return tracking.NewClient(cfg.Tracking.APIKey, cfg.Tracking.BaseURL, cfg.GetTrackingTimeout())
}

// buildAgent wires the full chat workflow: LLM, retriever and tracker.
func buildAgent(s *store.Store) (*agent.Engine, error) {
	llm, err := agent.NewGeminiLLM(cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return nil, err
	}

	engine, err := buildEmbeddingEngine()
	if err != nil {
		return nil, err
	}

	retriever := rag.NewRetriever(s, engine)
	return agent.NewEngine(llm, retriever, buildTracker()), nil
}
