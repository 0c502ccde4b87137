package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"chakancha/internal/logging"
	"chakancha/internal/rag"
	"chakancha/internal/tracking"
)

// intentResult is the JSON shape the intent model is asked to emit.
type intentResult struct {
	Intent         string  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	TrackingNumber string  `json:"tracking_number"`
	FAQQuery       string  `json:"faq_query"`
}

// analyzeIntent asks the LLM to classify the message and extract entities.
func (e *Engine) analyzeIntent(ctx context.Context, state *State) {
	logging.ChatDebug("Analyzing intent for: %.50s", state.UserMessage)

	convCtx := state.ContextString()
	if convCtx == "" {
		convCtx = "No previous context"
	}
	prompt := fmt.Sprintf(intentPrompt, state.UserMessage, convCtx)

	raw, err := e.llm.Complete(ctx, prompt, 0.3, 500)
	if err != nil {
		state.Err = fmt.Errorf("intent analysis failed: %w", err)
		state.Intent = IntentUnknown
		return
	}

	var result intentResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		state.Err = fmt.Errorf("intent analysis failed: unparseable response: %w", err)
		state.Intent = IntentUnknown
		return
	}

	state.Intent = normalizeIntent(result.Intent)
	state.Confidence = result.Confidence
	state.TrackingNumber = strings.TrimSpace(result.TrackingNumber)
	state.FAQQuery = strings.TrimSpace(result.FAQQuery)

	logging.Chat("Intent: %s (confidence: %.2f)", state.Intent, state.Confidence)
}

// stripCodeFences tolerates models that wrap JSON in markdown fences despite
// being told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "```json"); start >= 0 {
		s = s[start+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	if strings.Contains(s, "```") {
		return strings.TrimSpace(strings.ReplaceAll(s, "```", ""))
	}
	return s
}

func normalizeIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentFAQ:
		return IntentFAQ
	case IntentDHLTracking:
		return IntentDHLTracking
	case IntentGreeting:
		return IntentGreeting
	case IntentGeneralChat:
		return IntentGeneralChat
	default:
		return IntentUnknown
	}
}

// retrieveFAQs recalls knowledge base entries for a faq intent.
func (e *Engine) retrieveFAQs(ctx context.Context, state *State) {
	query := state.FAQQuery
	if query == "" {
		query = state.UserMessage
	}
	logging.ChatDebug("Retrieving FAQs for: %.50s", query)

	results, err := e.retriever.Retrieve(ctx, query, rag.RetrieveOptions{
		TopK:     rag.DefaultTopK,
		MinScore: rag.DefaultMinScore,
	})
	if err != nil {
		state.Err = fmt.Errorf("faq retrieval failed: %w", err)
		return
	}

	state.FAQResults = results
	state.ToolsUsed = append(state.ToolsUsed, "faq_retriever")
	logging.Chat("Retrieved %d relevant FAQs", len(results))
}

// trackShipment looks up the extracted tracking number.
func (e *Engine) trackShipment(ctx context.Context, state *State) {
	if state.TrackingNumber == "" {
		state.Err = fmt.Errorf("tracking failed: no tracking number found")
		return
	}

	logging.Chat("Tracking shipment: %s", state.TrackingNumber)
	shipment, err := e.tracker.Track(ctx, state.TrackingNumber)
	state.ToolsUsed = append(state.ToolsUsed, "dhl_tracker")
	if err != nil {
		state.TrackingErr = err
		state.Err = fmt.Errorf("tracking failed: %w", err)
		return
	}
	state.TrackingResult = shipment
}

// generateResponse produces the final reply from tool results.
func (e *Engine) generateResponse(ctx context.Context, state *State) {
	// Greetings get the canned welcome, no model call needed.
	if state.Intent == IntentGreeting {
		state.FinalResponse = greetingResponse
		return
	}
	if state.Err != nil {
		e.handleError(state)
		return
	}

	convCtx := state.ContextString()
	if convCtx == "" {
		convCtx = "No previous context"
	}
	prompt := fmt.Sprintf(responsePrompt,
		state.UserMessage, state.Intent, formatToolResults(state), convCtx)

	reply, err := e.llm.Complete(ctx, prompt, 0.7, 1000)
	if err != nil {
		state.Err = fmt.Errorf("response generation failed: %w", err)
		e.handleError(state)
		return
	}
	state.FinalResponse = strings.TrimSpace(reply)
}

// handleError picks an intent-specific fallback reply.
func (e *Engine) handleError(state *State) {
	if state.Err == nil {
		return
	}
	logging.ChatError("Workflow error: %v", state.Err)

	msg := strings.ToLower(state.Err.Error())
	switch {
	case strings.Contains(msg, "tracking"):
		state.FinalResponse = trackingNotFoundResponse
	case strings.Contains(msg, "faq") || strings.Contains(msg, "retrieval"):
		state.FinalResponse = noFAQResultsResponse
	default:
		state.FinalResponse = errorResponse
	}
}

// formatToolResults renders tool output as text for the response prompt.
func formatToolResults(state *State) string {
	var b strings.Builder

	if state.FAQResults != nil {
		b.WriteString("=== FAQ KNOWLEDGE BASE RESULTS ===\n\n")
		if len(state.FAQResults) == 0 {
			b.WriteString("No relevant FAQs found.\n")
		}
		for i, r := range state.FAQResults {
			fmt.Fprintf(&b, "FAQ %d (Relevance: %.0f%%):\n", i+1, r.Score*100)
			fmt.Fprintf(&b, "Question: %s\n", r.FAQ.Question)
			fmt.Fprintf(&b, "Answer: %s\n", r.FAQ.Answer)
			fmt.Fprintf(&b, "Category: %s\n\n", r.FAQ.Category)
		}
	}

	if state.TrackingResult != nil {
		b.WriteString("=== DHL TRACKING RESULTS ===\n\n")
		b.WriteString(tracking.FormatShipment(state.TrackingResult))
		b.WriteString("\n")
	} else if state.TrackingErr != nil {
		b.WriteString("=== DHL TRACKING RESULTS ===\n\n")
		fmt.Fprintf(&b, "Tracking Error: %v\n", state.TrackingErr)
		b.WriteString("Tracking number may be invalid or not found in system.\n")
	}

	if b.Len() == 0 {
		return "No tool results available. Respond based on general knowledge about Chakancha Global."
	}
	return b.String()
}
