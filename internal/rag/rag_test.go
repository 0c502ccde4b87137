package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chakancha/internal/embedding"
	"chakancha/internal/faq"
	"chakancha/internal/store"
)

// fakeEngine produces deterministic vectors: each text maps to a fixed
// direction keyed by its first word, so retrieval tests can steer scores.
type fakeEngine struct {
	queryMode bool
	embedErr  error
}

func (f *fakeEngine) Embed(_ context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	switch {
	case strings.HasPrefix(text, "shipping"):
		return []float32{1, 0, 0}, nil
	case strings.HasPrefix(text, "payment"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func (f *fakeEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEngine) Dimensions() int { return 3 }
func (f *fakeEngine) Name() string    { return "fake" }

func (f *fakeEngine) ForQueries() embedding.Engine {
	return &fakeEngine{queryMode: true, embedErr: f.embedErr}
}

func writeFAQFile(t *testing.T, entries []faq.FAQ) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faqs.json")
	file := faq.File{
		Metadata: &faq.Metadata{Version: "1.0", TotalFAQs: len(entries)},
		FAQs:     entries,
	}
	raw, err := json.MarshalIndent(file, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func testEntries() []faq.FAQ {
	return []faq.FAQ{
		{
			ID:       "faq_shipping_001",
			Category: "shipping",
			Question: "shipping How long does delivery take?",
			Answer:   "Three to five business days.",
			Keywords: []string{"delivery", "time"},
		},
		{
			ID:          "faq_payment_001",
			Category:    "payment",
			Question:    "payment Which methods do you accept?",
			Answer:      "Cards and M-Pesa.",
			Keywords:    []string{"mpesa", "card"},
			RelatedFAQs: []string{"faq_shipping_001"},
		},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIngestFile(t *testing.T) {
	s := newTestStore(t)
	path := writeFAQFile(t, testEntries())

	in := NewIngestor(s, &fakeEngine{})
	result, err := in.IngestFile(context.Background(), path, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalFAQs)
	assert.Equal(t, 2, result.Ingested)
	assert.Equal(t, 0, result.Failed)
	require.NotNil(t, result.Validation)
	assert.True(t, result.Validation.Valid)

	got, err := s.GetFAQ("", "faq_shipping_001")
	require.NoError(t, err)
	assert.Equal(t, "shipping", got.Category)
}

func TestIngestFileClearFirst(t *testing.T) {
	s := newTestStore(t)
	in := NewIngestor(s, &fakeEngine{})

	stale := faq.FAQ{ID: "faq_stale", Category: "shipping", Question: "old?", Answer: "old."}
	require.NoError(t, s.UpsertFAQ("", stale, []float32{1, 0, 0}))

	path := writeFAQFile(t, testEntries())
	result, err := in.IngestFile(context.Background(), path, IngestOptions{ClearFirst: true})
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Cleared)
	_, err = s.GetFAQ("", "faq_stale")
	assert.Error(t, err, "stale entry should be gone after re-ingest")
}

func TestIngestFileValidationFailure(t *testing.T) {
	s := newTestStore(t)
	in := NewIngestor(s, &fakeEngine{})

	// Duplicate IDs are a validation error.
	entries := testEntries()
	entries[1].ID = entries[0].ID
	path := writeFAQFile(t, entries)

	result, err := in.IngestFile(context.Background(), path, IngestOptions{})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Validation.Valid)
	assert.Equal(t, 0, result.Ingested)

	// SkipValidation forces the ingest through.
	_, err = in.IngestFile(context.Background(), path, IngestOptions{SkipValidation: true})
	require.NoError(t, err)
}

func TestIngestFileEmbedError(t *testing.T) {
	s := newTestStore(t)
	in := NewIngestor(s, &fakeEngine{embedErr: fmt.Errorf("quota exceeded")})
	path := writeFAQFile(t, testEntries())

	_, err := in.IngestFile(context.Background(), path, IngestOptions{})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestRetrieve(t *testing.T) {
	s := newTestStore(t)
	engine := &fakeEngine{}
	in := NewIngestor(s, engine)
	path := writeFAQFile(t, testEntries())
	_, err := in.IngestFile(context.Background(), path, IngestOptions{})
	require.NoError(t, err)

	r := NewRetriever(s, engine)
	results, err := r.Retrieve(context.Background(), "shipping when will my tea arrive", RetrieveOptions{})
	require.NoError(t, err)

	require.Len(t, results, 1, "only the shipping FAQ clears the default min score")
	assert.Equal(t, "faq_shipping_001", results[0].FAQ.ID)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
}

func TestRetrieveNoMatches(t *testing.T) {
	s := newTestStore(t)
	engine := &fakeEngine{}
	in := NewIngestor(s, engine)
	path := writeFAQFile(t, testEntries())
	_, err := in.IngestFile(context.Background(), path, IngestOptions{})
	require.NoError(t, err)

	r := NewRetriever(s, engine)
	results, err := r.Retrieve(context.Background(), "something unrelated entirely", RetrieveOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRelated(t *testing.T) {
	s := newTestStore(t)
	engine := &fakeEngine{}
	in := NewIngestor(s, engine)
	path := writeFAQFile(t, testEntries())
	_, err := in.IngestFile(context.Background(), path, IngestOptions{})
	require.NoError(t, err)

	r := NewRetriever(s, engine)
	payment, err := s.GetFAQ("", "faq_payment_001")
	require.NoError(t, err)

	related := r.Related(payment)
	require.Len(t, related, 1)
	assert.Equal(t, "faq_shipping_001", related[0].ID)
}

func TestKeywordSearch(t *testing.T) {
	s := newTestStore(t)
	engine := &fakeEngine{}
	in := NewIngestor(s, engine)
	path := writeFAQFile(t, testEntries())
	_, err := in.IngestFile(context.Background(), path, IngestOptions{})
	require.NoError(t, err)

	r := NewRetriever(s, engine)
	hits, err := r.KeywordSearch("payment", "pay with mpesa", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "faq_payment_001", hits[0].ID)
}
