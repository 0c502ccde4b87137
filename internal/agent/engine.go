package agent

import (
	"context"
	"time"

	"chakancha/internal/logging"
	"chakancha/internal/rag"
	"chakancha/internal/store"
	"chakancha/internal/tracking"
)

// Tracker is the shipment lookup the workflow depends on.
type Tracker interface {
	Track(ctx context.Context, trackingNumber string) (*tracking.Shipment, error)
}

// FAQRetriever recalls FAQ entries for a query.
type FAQRetriever interface {
	Retrieve(ctx context.Context, query string, opts rag.RetrieveOptions) ([]store.SearchResult, error)
}

// Engine orchestrates the chat workflow.
type Engine struct {
	llm       LLM
	retriever FAQRetriever
	tracker   Tracker
}

// Response is the result of processing one message.
type Response struct {
	Reply          string   `json:"reply"`
	SessionID      string   `json:"session_id"`
	ResponseTimeMS int64    `json:"response_time_ms"`
	Intent         Intent   `json:"intent"`
	ToolsUsed      []string `json:"tools_used"`
	Error          string   `json:"error,omitempty"`
}

// NewEngine wires the workflow's dependencies.
func NewEngine(llm LLM, retriever FAQRetriever, tracker Tracker) *Engine {
	return &Engine{llm: llm, retriever: retriever, tracker: tracker}
}

// Process runs a message through the full workflow: intent analysis, the
// intent's tool, then response generation.
func (e *Engine) Process(ctx context.Context, userMessage, sessionID string, history []HistoryMessage) *Response {
	start := time.Now()
	logging.Chat("Processing message for session %s", sessionID)

	state := NewState(userMessage, sessionID, history)

	e.analyzeIntent(ctx, state)
	if state.Err == nil {
		switch state.Intent {
		case IntentFAQ:
			e.retrieveFAQs(ctx, state)
		case IntentDHLTracking:
			e.trackShipment(ctx, state)
		}
	}
	e.generateResponse(ctx, state)
	if state.FinalResponse == "" {
		state.FinalResponse = errorResponse
	}

	resp := &Response{
		Reply:          state.FinalResponse,
		SessionID:      sessionID,
		ResponseTimeMS: time.Since(start).Milliseconds(),
		Intent:         state.Intent,
		ToolsUsed:      state.ToolsUsed,
	}
	if state.Err != nil {
		resp.Error = state.Err.Error()
	}

	logging.Chat("Workflow completed in %dms (intent=%s, tools=%v)",
		resp.ResponseTimeMS, resp.Intent, resp.ToolsUsed)
	return resp
}
