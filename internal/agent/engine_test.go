package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chakancha/internal/faq"
	"chakancha/internal/rag"
	"chakancha/internal/store"
	"chakancha/internal/tracking"
)

// fakeLLM returns scripted completions. The first call is always intent
// analysis, subsequent calls are response generation.
type fakeLLM struct {
	intentJSON string
	reply      string
	intentErr  error
	replyErr   error
	calls      int
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, _ float32, _ int32) (string, error) {
	f.calls++
	if strings.Contains(prompt, "determine their intent") {
		return f.intentJSON, f.intentErr
	}
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

type fakeRetriever struct {
	results []store.SearchResult
	err     error
	queries []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, _ rag.RetrieveOptions) ([]store.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeTracker struct {
	shipment *tracking.Shipment
	err      error
	numbers  []string
}

func (f *fakeTracker) Track(_ context.Context, trackingNumber string) (*tracking.Shipment, error) {
	f.numbers = append(f.numbers, trackingNumber)
	return f.shipment, f.err
}

func TestProcessFAQIntent(t *testing.T) {
	llm := &fakeLLM{
		intentJSON: `{"intent": "faq", "confidence": 0.95, "tracking_number": null, "faq_query": "What teas do you sell?"}`,
		reply:      "We sell premium Kenyan black tea. Is there anything else you'd like to know about our teas?",
	}
	retriever := &fakeRetriever{
		results: []store.SearchResult{
			{FAQ: faq.FAQ{ID: "faq_1", Category: "products", Question: "What teas?", Answer: "Black tea."}, Score: 0.92},
		},
	}
	tracker := &fakeTracker{}

	e := NewEngine(llm, retriever, tracker)
	resp := e.Process(context.Background(), "What teas do you sell?", "session-1", nil)

	assert.Equal(t, IntentFAQ, resp.Intent)
	assert.Contains(t, resp.Reply, "Kenyan black tea")
	assert.Equal(t, []string{"faq_retriever"}, resp.ToolsUsed)
	assert.Empty(t, resp.Error)
	require.Len(t, retriever.queries, 1)
	assert.Equal(t, "What teas do you sell?", retriever.queries[0], "faq_query from intent analysis is used")
	assert.Empty(t, tracker.numbers, "tracker must not be called for faq intent")
}

func TestProcessTrackingIntent(t *testing.T) {
	llm := &fakeLLM{
		intentJSON: `{"intent": "dhl_tracking", "confidence": 0.98, "tracking_number": "TEST123", "faq_query": null}`,
		reply:      "Your shipment is in transit. Let me know if you need anything else!",
	}
	tracker := &fakeTracker{
		shipment: &tracking.Shipment{TrackingNumber: "TEST123", Status: "transit", StatusDescription: "Shipment in transit"},
	}

	e := NewEngine(llm, &fakeRetriever{}, tracker)
	resp := e.Process(context.Background(), "Track my shipment TEST123", "session-2", nil)

	assert.Equal(t, IntentDHLTracking, resp.Intent)
	assert.Equal(t, []string{"dhl_tracker"}, resp.ToolsUsed)
	require.Len(t, tracker.numbers, 1)
	assert.Equal(t, "TEST123", tracker.numbers[0])
}

func TestProcessGreetingSkipsModel(t *testing.T) {
	llm := &fakeLLM{
		intentJSON: `{"intent": "greeting", "confidence": 1.0, "tracking_number": null, "faq_query": null}`,
	}
	e := NewEngine(llm, &fakeRetriever{}, &fakeTracker{})
	resp := e.Process(context.Background(), "Hi there!", "session-3", nil)

	assert.Equal(t, IntentGreeting, resp.Intent)
	assert.Contains(t, resp.Reply, "Welcome to Chakancha Global")
	assert.Equal(t, 1, llm.calls, "greeting uses the template, no second model call")
	assert.Empty(t, resp.ToolsUsed)
}

func TestProcessIntentJSONInFences(t *testing.T) {
	llm := &fakeLLM{
		intentJSON: "```json\n{\"intent\": \"general_chat\", \"confidence\": 0.6, \"tracking_number\": null, \"faq_query\": null}\n```",
		reply:      "Happy to chat! Our teas are lovely.",
	}
	e := NewEngine(llm, &fakeRetriever{}, &fakeTracker{})
	resp := e.Process(context.Background(), "nice weather today", "session-4", nil)

	assert.Equal(t, IntentGeneralChat, resp.Intent)
	assert.Empty(t, resp.Error)
}

func TestProcessIntentFailureFallsBack(t *testing.T) {
	llm := &fakeLLM{intentErr: fmt.Errorf("model unavailable")}
	e := NewEngine(llm, &fakeRetriever{}, &fakeTracker{})
	resp := e.Process(context.Background(), "What teas do you sell?", "session-5", nil)

	assert.Equal(t, IntentUnknown, resp.Intent)
	assert.NotEmpty(t, resp.Error)
	assert.Contains(t, resp.Reply, "trouble processing your request")
}

func TestProcessTrackingNotFoundFallback(t *testing.T) {
	llm := &fakeLLM{
		intentJSON: `{"intent": "dhl_tracking", "confidence": 0.9, "tracking_number": "MISSING1234", "faq_query": null}`,
	}
	tracker := &fakeTracker{
		err: &tracking.TrackingError{TrackingNumber: "MISSING1234", Reason: "tracking number not found"},
	}
	e := NewEngine(llm, &fakeRetriever{}, tracker)
	resp := e.Process(context.Background(), "Where is MISSING1234?", "session-6", nil)

	assert.Contains(t, resp.Reply, "couldn't find tracking information")
	assert.NotEmpty(t, resp.Error)
}

func TestProcessMissingTrackingNumber(t *testing.T) {
	llm := &fakeLLM{
		intentJSON: `{"intent": "dhl_tracking", "confidence": 0.8, "tracking_number": null, "faq_query": null}`,
	}
	tracker := &fakeTracker{}
	e := NewEngine(llm, &fakeRetriever{}, tracker)
	resp := e.Process(context.Background(), "track my package", "session-7", nil)

	assert.Empty(t, tracker.numbers, "no lookup without a number")
	assert.Contains(t, resp.Reply, "couldn't find tracking information")
}

func TestProcessRetrievalErrorFallback(t *testing.T) {
	llm := &fakeLLM{
		intentJSON: `{"intent": "faq", "confidence": 0.9, "tracking_number": null, "faq_query": "prices"}`,
	}
	retriever := &fakeRetriever{err: fmt.Errorf("store unavailable")}
	e := NewEngine(llm, retriever, &fakeTracker{})
	resp := e.Process(context.Background(), "how much is your tea", "session-8", nil)

	assert.Contains(t, resp.Reply, "knowledge base")
	assert.NotEmpty(t, resp.Error)
}

func TestStateHistoryCaps(t *testing.T) {
	var history []HistoryMessage
	for i := 0; i < 14; i++ {
		history = append(history, HistoryMessage{Role: "user", Content: fmt.Sprintf("msg %d", i)})
	}

	state := NewState("hello", "s", history)
	assert.Len(t, state.History, 10, "history capped at 10")
	assert.Equal(t, "msg 4", state.History[0].Content)

	ctx := state.ContextString()
	assert.Contains(t, ctx, "msg 13")
	assert.NotContains(t, ctx, "msg 8", "context uses only the last 5 messages")
	assert.Contains(t, ctx, "User:")
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		`{"a": 1}`:                       `{"a": 1}`,
		"```json\n{\"a\": 1}\n```":       `{"a": 1}`,
		"```\n{\"a\": 1}\n```":           `{"a": 1}`,
		"  {\"a\": 1}  ":                 `{"a": 1}`,
		"prefix ```json\n{\"a\": 1}\n```": `{"a": 1}`,
	}
	for input, want := range cases {
		assert.Equal(t, want, stripCodeFences(input), "input %q", input)
	}
}

func TestFormatToolResults(t *testing.T) {
	state := &State{
		FAQResults: []store.SearchResult{
			{FAQ: faq.FAQ{Question: "Q?", Answer: "A.", Category: "products"}, Score: 0.85},
		},
	}
	out := formatToolResults(state)
	assert.Contains(t, out, "FAQ KNOWLEDGE BASE RESULTS")
	assert.Contains(t, out, "Relevance: 85%")
	assert.Contains(t, out, "Question: Q?")

	empty := formatToolResults(&State{})
	assert.Contains(t, empty, "No tool results available")
}
