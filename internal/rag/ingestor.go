// Package rag builds and queries the FAQ knowledge base: ingestion embeds
// FAQ entries into the vector store, retrieval recalls the best matches for
// a user question.
package rag

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"chakancha/internal/embedding"
	"chakancha/internal/faq"
	"chakancha/internal/logging"
	"chakancha/internal/store"
)

// Default batch size for embedding calls during ingestion.
const defaultBatchSize = 16

// Ingestor loads FAQ files, embeds their entries and writes them to the
// vector store.
type Ingestor struct {
	store     *store.Store
	engine    embedding.Engine
	namespace string
	batchSize int
}

// IngestOptions tune an ingestion run.
type IngestOptions struct {
	Namespace string
	BatchSize int
	// ClearFirst wipes the namespace before ingesting so removed FAQs do
	// not linger.
	ClearFirst bool
	// SkipValidation ingests the file even when validation reports errors.
	SkipValidation bool
}

// IngestResult summarizes an ingestion run.
type IngestResult struct {
	TotalFAQs  int
	Ingested   int
	Failed     int
	Cleared    int64
	Validation *faq.Result
}

// NewIngestor builds an Ingestor writing to the given store.
func NewIngestor(s *store.Store, engine embedding.Engine) *Ingestor {
	return &Ingestor{
		store:     s,
		engine:    engine,
		namespace: "default",
		batchSize: defaultBatchSize,
	}
}

// IngestFile validates, embeds and stores every FAQ in a JSON file.
func (in *Ingestor) IngestFile(ctx context.Context, path string, opts IngestOptions) (*IngestResult, error) {
	timer := logging.StartTimer(logging.CategoryRAG, "rag.IngestFile")
	defer timer.Stop()

	namespace := opts.Namespace
	if namespace == "" {
		namespace = in.namespace
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = in.batchSize
	}

	validation := faq.NewValidator().ValidateFile(path)
	result := &IngestResult{Validation: &validation}
	if !validation.Valid && !opts.SkipValidation {
		return result, fmt.Errorf("faq file %s has %d validation errors", path, len(validation.Errors))
	}

	file, err := faq.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	result.TotalFAQs = len(file.FAQs)

	if opts.ClearFirst {
		cleared, err := in.store.ClearNamespace(namespace)
		if err != nil {
			return result, err
		}
		result.Cleared = cleared
	}

	logging.RAG("Ingesting %d FAQs from %s into namespace %q", len(file.FAQs), path, namespace)

	// Embed in batches, a few batches in flight at a time. Upserts are
	// serialized behind the store's own lock.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for start := 0; start < len(file.FAQs); start += batchSize {
		end := start + batchSize
		if end > len(file.FAQs) {
			end = len(file.FAQs)
		}
		batch := file.FAQs[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, entry := range batch {
				texts[i] = entry.EmbeddingText()
			}

			vectors, err := in.engine.EmbedBatch(gctx, texts)
			if err != nil {
				mu.Lock()
				result.Failed += len(batch)
				mu.Unlock()
				return fmt.Errorf("embed batch: %w", err)
			}

			for i, entry := range batch {
				if err := in.store.UpsertFAQ(namespace, entry, vectors[i]); err != nil {
					logging.RAGError("Failed to store faq %s: %v", entry.ID, err)
					mu.Lock()
					result.Failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				result.Ingested++
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	logging.RAG("Ingestion complete: %d/%d FAQs stored", result.Ingested, result.TotalFAQs)
	return result, nil
}
