package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"chakancha/internal/embedding"
	"chakancha/internal/faq"
	"chakancha/internal/logging"
)

// SearchResult is one FAQ recalled for a query, with its similarity score.
type SearchResult struct {
	FAQ   faq.FAQ
	Score float64
}

// SearchOptions narrow a vector search.
type SearchOptions struct {
	Namespace string
	Category  string // empty means all categories
	TopK      int
	MinScore  float64
}

// UpsertFAQ stores or replaces a FAQ entry together with its embedding.
func (s *Store) UpsertFAQ(namespace string, entry faq.FAQ, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if namespace == "" {
		namespace = "default"
	}

	keywords, err := json.Marshal(entry.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	related, err := json.Marshal(entry.RelatedFAQs)
	if err != nil {
		return fmt.Errorf("marshal related faqs: %w", err)
	}

	var embJSON sql.NullString
	if len(vector) > 0 {
		raw, err := json.Marshal(vector)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		embJSON = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO faq_vectors (faq_id, namespace, category, question, answer, keywords, related_faqs, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(faq_id, namespace) DO UPDATE SET
			category = excluded.category,
			question = excluded.question,
			answer = excluded.answer,
			keywords = excluded.keywords,
			related_faqs = excluded.related_faqs,
			embedding = excluded.embedding,
			updated_at = CURRENT_TIMESTAMP`,
		entry.ID, namespace, entry.Category, entry.Question, entry.Answer,
		string(keywords), string(related), embJSON)
	if err != nil {
		return fmt.Errorf("upsert faq %s: %w", entry.ID, err)
	}
	return nil
}

// GetFAQ fetches a single FAQ by ID.
func (s *Store) GetFAQ(namespace, id string) (*faq.FAQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if namespace == "" {
		namespace = "default"
	}

	row := s.db.QueryRow(`
		SELECT faq_id, category, question, answer, keywords, related_faqs
		FROM faq_vectors WHERE namespace = ? AND faq_id = ?`, namespace, id)

	entry, err := scanFAQ(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("faq not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FAQsByCategory lists all FAQs in a category, ordered by ID.
func (s *Store) FAQsByCategory(namespace, category string) ([]faq.FAQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if namespace == "" {
		namespace = "default"
	}

	rows, err := s.db.Query(`
		SELECT faq_id, category, question, answer, keywords, related_faqs
		FROM faq_vectors WHERE namespace = ? AND category = ? ORDER BY faq_id`,
		namespace, category)
	if err != nil {
		return nil, fmt.Errorf("query category %s: %w", category, err)
	}
	defer rows.Close()

	var out []faq.FAQ
	for rows.Next() {
		entry, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

// SearchFAQs recalls FAQs by cosine similarity against the query vector.
// Results below opts.MinScore are dropped; at most opts.TopK are returned.
func (s *Store) SearchFAQs(queryVector []float32, opts SearchOptions) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	timer := logging.StartTimer(logging.CategoryStore, "store.SearchFAQs")
	defer timer.Stop()

	if opts.Namespace == "" {
		opts.Namespace = "default"
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}

	query := `
		SELECT faq_id, category, question, answer, keywords, related_faqs, embedding
		FROM faq_vectors WHERE namespace = ? AND embedding IS NOT NULL`
	args := []interface{}{opts.Namespace}
	if opts.Category != "" {
		query += " AND category = ?"
		args = append(args, opts.Category)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var entry faq.FAQ
		var keywords, related, embJSON string
		if err := rows.Scan(&entry.ID, &entry.Category, &entry.Question, &entry.Answer,
			&keywords, &related, &embJSON); err != nil {
			return nil, fmt.Errorf("scan vector row: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &entry.Keywords); err != nil {
			entry.Keywords = nil
		}
		if err := json.Unmarshal([]byte(related), &entry.RelatedFAQs); err != nil {
			entry.RelatedFAQs = nil
		}

		var vector []float32
		if err := json.Unmarshal([]byte(embJSON), &vector); err != nil {
			logging.StoreDebug("Skipping faq %s: bad embedding: %v", entry.ID, err)
			continue
		}

		score, err := embedding.CosineSimilarity(queryVector, vector)
		if err != nil {
			logging.StoreDebug("Skipping faq %s: %v", entry.ID, err)
			continue
		}
		if score < opts.MinScore {
			continue
		}
		results = append(results, SearchResult{FAQ: entry, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	return results, nil
}

// ClearNamespace removes all FAQ vectors in a namespace. Used before a full
// re-ingest so stale entries do not linger.
func (s *Store) ClearNamespace(namespace string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if namespace == "" {
		namespace = "default"
	}

	res, err := s.db.Exec(`DELETE FROM faq_vectors WHERE namespace = ?`, namespace)
	if err != nil {
		return 0, fmt.Errorf("clear namespace %s: %w", namespace, err)
	}
	n, _ := res.RowsAffected()
	logging.Store("Cleared namespace %q: %d entries removed", namespace, n)
	return n, nil
}

// VectorStats reports per-category FAQ counts for a namespace.
func (s *Store) VectorStats(namespace string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if namespace == "" {
		namespace = "default"
	}

	rows, err := s.db.Query(`
		SELECT category, COUNT(*) FROM faq_vectors
		WHERE namespace = ? GROUP BY category`, namespace)
	if err != nil {
		return nil, fmt.Errorf("vector stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats[category] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFAQ(row rowScanner) (*faq.FAQ, error) {
	var entry faq.FAQ
	var keywords, related string
	if err := row.Scan(&entry.ID, &entry.Category, &entry.Question, &entry.Answer,
		&keywords, &related); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywords), &entry.Keywords); err != nil {
		entry.Keywords = nil
	}
	if err := json.Unmarshal([]byte(related), &entry.RelatedFAQs); err != nil {
		entry.RelatedFAQs = nil
	}
	return &entry, nil
}
