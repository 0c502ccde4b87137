// Package agent implements the chat workflow: detect the user's intent,
// run the matching tool (FAQ retrieval or shipment tracking), then generate
// the reply. The flow is a small state machine with an error handler that
// produces intent-specific fallbacks.
package agent

import (
	"fmt"
	"strings"

	"chakancha/internal/store"
	"chakancha/internal/tracking"
)

// Intent classifies what the user wants.
type Intent string

const (
	IntentFAQ         Intent = "faq"
	IntentDHLTracking Intent = "dhl_tracking"
	IntentGreeting    Intent = "greeting"
	IntentGeneralChat Intent = "general_chat"
	IntentUnknown     Intent = "unknown"
)

// History limits. The full history is capped, and only the tail is fed to
// the LLM as context.
const (
	maxHistory     = 10
	contextWindow  = 5
)

// HistoryMessage is one prior turn passed into the workflow.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State carries everything the workflow accumulates while processing one
// message.
type State struct {
	UserMessage string
	SessionID   string
	History     []HistoryMessage

	Intent         Intent
	Confidence     float64
	TrackingNumber string
	FAQQuery       string

	FAQResults     []store.SearchResult
	TrackingResult *tracking.Shipment
	TrackingErr    error

	FinalResponse string
	ToolsUsed     []string
	Err           error
}

// NewState builds the initial state for one incoming message.
func NewState(userMessage, sessionID string, history []HistoryMessage) *State {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	return &State{
		UserMessage: userMessage,
		SessionID:   sessionID,
		History:     history,
	}
}

// ContextString renders the recent conversation for prompt injection.
func (s *State) ContextString() string {
	if len(s.History) == 0 {
		return ""
	}
	tail := s.History
	if len(tail) > contextWindow {
		tail = tail[len(tail)-contextWindow:]
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range tail {
		role := msg.Role
		if role != "" {
			role = strings.ToUpper(role[:1]) + role[1:]
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}
	return b.String()
}
