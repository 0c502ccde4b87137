package store

import (
	"testing"

	"chakancha/internal/faq"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleFAQ(id string) faq.FAQ {
	return faq.FAQ{
		ID:       id,
		Category: "shipping",
		Question: "How long does delivery take?",
		Answer:   "Standard delivery takes 3-5 business days within the EU.",
		Keywords: []string{"delivery", "shipping", "time"},
	}
}

func TestUpsertAndGetFAQ(t *testing.T) {
	s := newTestStore(t)

	entry := sampleFAQ("faq_shipping_001")
	if err := s.UpsertFAQ("", entry, []float32{0.1, 0.2, 0.3}); err != nil {
		t.Fatalf("UpsertFAQ: %v", err)
	}

	got, err := s.GetFAQ("", "faq_shipping_001")
	if err != nil {
		t.Fatalf("GetFAQ: %v", err)
	}
	if got.Question != entry.Question {
		t.Errorf("question = %q, want %q", got.Question, entry.Question)
	}
	if len(got.Keywords) != 3 {
		t.Errorf("keywords = %v, want 3 entries", got.Keywords)
	}

	// Upsert with the same ID should replace, not duplicate.
	entry.Answer = "Updated answer."
	if err := s.UpsertFAQ("", entry, []float32{0.1, 0.2, 0.3}); err != nil {
		t.Fatalf("UpsertFAQ update: %v", err)
	}
	got, err = s.GetFAQ("", "faq_shipping_001")
	if err != nil {
		t.Fatalf("GetFAQ after update: %v", err)
	}
	if got.Answer != "Updated answer." {
		t.Errorf("answer = %q, want updated", got.Answer)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["faq_vectors"] != 1 {
		t.Errorf("faq_vectors count = %d, want 1", stats["faq_vectors"])
	}
}

func TestGetFAQNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetFAQ("", "faq_missing"); err == nil {
		t.Fatal("expected error for missing faq")
	}
}

func TestSearchFAQsRanking(t *testing.T) {
	s := newTestStore(t)

	entries := []struct {
		id     string
		vector []float32
	}{
		{"faq_close", []float32{1, 0, 0}},
		{"faq_mid", []float32{0.7, 0.7, 0}},
		{"faq_far", []float32{0, 0, 1}},
	}
	for _, e := range entries {
		entry := sampleFAQ(e.id)
		if err := s.UpsertFAQ("", entry, e.vector); err != nil {
			t.Fatalf("UpsertFAQ %s: %v", e.id, err)
		}
	}

	results, err := s.SearchFAQs([]float32{1, 0, 0}, SearchOptions{TopK: 2, MinScore: 0.5})
	if err != nil {
		t.Fatalf("SearchFAQs: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].FAQ.ID != "faq_close" {
		t.Errorf("top result = %s, want faq_close", results[0].FAQ.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted by score: %f < %f", results[0].Score, results[1].Score)
	}
	for _, r := range results {
		if r.FAQ.ID == "faq_far" {
			t.Error("faq_far should have been dropped by min score")
		}
	}
}

func TestSearchFAQsCategoryFilter(t *testing.T) {
	s := newTestStore(t)

	a := sampleFAQ("faq_a")
	b := sampleFAQ("faq_b")
	b.Category = "payment"
	if err := s.UpsertFAQ("", a, []float32{1, 0}); err != nil {
		t.Fatalf("UpsertFAQ: %v", err)
	}
	if err := s.UpsertFAQ("", b, []float32{1, 0}); err != nil {
		t.Fatalf("UpsertFAQ: %v", err)
	}

	results, err := s.SearchFAQs([]float32{1, 0}, SearchOptions{Category: "payment", TopK: 5})
	if err != nil {
		t.Fatalf("SearchFAQs: %v", err)
	}
	if len(results) != 1 || results[0].FAQ.ID != "faq_b" {
		t.Errorf("category filter failed: %+v", results)
	}
}

func TestClearNamespace(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertFAQ("fresh", sampleFAQ("faq_1"), []float32{1}); err != nil {
		t.Fatalf("UpsertFAQ: %v", err)
	}
	if err := s.UpsertFAQ("other", sampleFAQ("faq_2"), []float32{1}); err != nil {
		t.Fatalf("UpsertFAQ: %v", err)
	}

	n, err := s.ClearNamespace("fresh")
	if err != nil {
		t.Fatalf("ClearNamespace: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d, want 1", n)
	}
	if _, err := s.GetFAQ("other", "faq_2"); err != nil {
		t.Errorf("other namespace should be untouched: %v", err)
	}
}

func TestConversationLifecycle(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.GetOrCreateConversation("")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}
	if conv.SessionID == "" {
		t.Fatal("expected generated session id")
	}
	if conv.MessageCount != 0 {
		t.Errorf("new conversation message_count = %d, want 0", conv.MessageCount)
	}

	// Same session ID returns the same conversation.
	again, err := s.GetOrCreateConversation(conv.SessionID)
	if err != nil {
		t.Fatalf("GetOrCreateConversation existing: %v", err)
	}
	if again.SessionID != conv.SessionID {
		t.Errorf("session id changed: %s vs %s", again.SessionID, conv.SessionID)
	}

	if _, err := s.AddMessage(conv.SessionID, RoleUser, "Hello", nil); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if _, err := s.AddMessage(conv.SessionID, RoleAssistant, "Hi there", map[string]string{"intent": "greeting"}); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	conv, err = s.GetOrCreateConversation(conv.SessionID)
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}
	if conv.MessageCount != 2 {
		t.Errorf("message_count = %d, want 2", conv.MessageCount)
	}

	msgs, err := s.RecentMessages(conv.SessionID, 10)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Errorf("messages out of order: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].Metadata["intent"] != "greeting" {
		t.Errorf("metadata lost: %v", msgs[1].Metadata)
	}
}

func TestRecentMessagesLimit(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.GetOrCreateConversation("session-limit")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}
	for i := 0; i < 15; i++ {
		if _, err := s.AddMessage(conv.SessionID, RoleUser, "msg", nil); err != nil {
			t.Fatalf("AddMessage %d: %v", i, err)
		}
	}

	msgs, err := s.RecentMessages(conv.SessionID, 10)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 10 {
		t.Errorf("got %d messages, want 10", len(msgs))
	}
}

func TestFeedback(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.GetOrCreateConversation("session-fb")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	if _, err := s.AddFeedback(conv.SessionID, "", 1, "helpful"); err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if _, err := s.AddFeedback(conv.SessionID, "", -1, ""); err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if _, err := s.AddFeedback(conv.SessionID, "", 5, ""); err == nil {
		t.Fatal("expected error for out-of-range rating")
	}

	pos, neg, err := s.FeedbackCounts(conv.SessionID)
	if err != nil {
		t.Fatalf("FeedbackCounts: %v", err)
	}
	if pos != 1 || neg != 1 {
		t.Errorf("counts = %d/%d, want 1/1", pos, neg)
	}
}

func TestVectorStats(t *testing.T) {
	s := newTestStore(t)

	a := sampleFAQ("faq_1")
	b := sampleFAQ("faq_2")
	c := sampleFAQ("faq_3")
	c.Category = "payment"
	for _, e := range []faq.FAQ{a, b, c} {
		if err := s.UpsertFAQ("", e, []float32{1}); err != nil {
			t.Fatalf("UpsertFAQ: %v", err)
		}
	}

	stats, err := s.VectorStats("")
	if err != nil {
		t.Fatalf("VectorStats: %v", err)
	}
	if stats["shipping"] != 2 || stats["payment"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}
