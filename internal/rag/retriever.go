package rag

import (
	"context"
	"strings"

	"chakancha/internal/embedding"
	"chakancha/internal/faq"
	"chakancha/internal/logging"
	"chakancha/internal/store"
)

// Retrieval defaults matching the chat agent's needs.
const (
	DefaultTopK     = 3
	DefaultMinScore = 0.7
)

// queryEmbedder is implemented by engines that embed queries differently
// from documents.
type queryEmbedder interface {
	ForQueries() embedding.Engine
}

// Retriever recalls FAQ entries relevant to a user question.
type Retriever struct {
	store       *store.Store
	docEngine   embedding.Engine
	queryEngine embedding.Engine
	namespace   string
}

// RetrieveOptions narrow a retrieval.
type RetrieveOptions struct {
	Category string
	TopK     int
	MinScore float64
	// MinScoreSet distinguishes an explicit zero from the default.
	MinScoreSet bool
}

// NewRetriever builds a Retriever. Engines that distinguish query embeddings
// from document embeddings are used in query mode automatically.
func NewRetriever(s *store.Store, engine embedding.Engine) *Retriever {
	r := &Retriever{
		store:       s,
		docEngine:   engine,
		queryEngine: engine,
		namespace:   "default",
	}
	if qe, ok := engine.(queryEmbedder); ok {
		r.queryEngine = qe.ForQueries()
	}
	return r
}

// Retrieve embeds the query and returns the best-matching FAQs, scored by
// cosine similarity. Results below the minimum score are dropped.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts RetrieveOptions) ([]store.SearchResult, error) {
	timer := logging.StartTimer(logging.CategoryRAG, "rag.Retrieve")
	defer timer.Stop()

	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	minScore := opts.MinScore
	if !opts.MinScoreSet && minScore == 0 {
		minScore = DefaultMinScore
	}

	vector, err := r.queryEngine.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := r.store.SearchFAQs(vector, store.SearchOptions{
		Namespace: r.namespace,
		Category:  opts.Category,
		TopK:      opts.TopK,
		MinScore:  minScore,
	})
	if err != nil {
		return nil, err
	}

	logging.RAGDebug("Retrieved %d FAQs for query (top_k=%d, min_score=%.2f)",
		len(results), opts.TopK, minScore)
	return results, nil
}

// Related fetches the FAQs cross-referenced by an entry.
func (r *Retriever) Related(entry *faq.FAQ) []faq.FAQ {
	var out []faq.FAQ
	for _, id := range entry.RelatedFAQs {
		related, err := r.store.GetFAQ(r.namespace, id)
		if err != nil {
			logging.RAGDebug("Related faq %s not found: %v", id, err)
			continue
		}
		out = append(out, *related)
	}
	return out
}

// KeywordSearch is a fallback lookup matching query words against FAQ
// keywords and questions. Used when no embedding engine is available.
func (r *Retriever) KeywordSearch(category, query string, limit int) ([]faq.FAQ, error) {
	if limit <= 0 {
		limit = DefaultTopK
	}

	entries, err := r.store.FAQsByCategory(r.namespace, category)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(query))
	var out []faq.FAQ
	for _, entry := range entries {
		haystack := strings.ToLower(entry.Question + " " + strings.Join(entry.Keywords, " "))
		for _, w := range words {
			if strings.Contains(haystack, w) {
				out = append(out, entry)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
