// Package api exposes the chatbot over HTTP: chat, feedback, health and
// conversation history endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chakancha/internal/agent"
	"chakancha/internal/logging"
	"chakancha/internal/store"
)

// ChatService processes one user message end to end.
type ChatService interface {
	Process(ctx context.Context, userMessage, sessionID string, history []agent.HistoryMessage) *agent.Response
}

// Handler holds the API's dependencies.
type Handler struct {
	chat    ChatService
	store   *store.Store
	version string
}

type chatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Reply          string `json:"reply"`
	SessionID      string `json:"session_id"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// Chat handles POST /api/chat. The request carries the user message and an
// optional session ID; a blank session ID starts a new conversation.
func (h *Handler) Chat(c *gin.Context) {
	start := time.Now()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	conv, err := h.store.GetOrCreateConversation(req.SessionID)
	if err != nil {
		logging.APIError("Failed to load conversation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if _, err := h.store.AddMessage(conv.SessionID, store.RoleUser, req.Message, map[string]string{
		"ip": c.ClientIP(),
	}); err != nil {
		logging.APIError("Failed to save user message: %v", err)
	}

	history := h.loadHistory(conv.SessionID)
	resp := h.chat.Process(c.Request.Context(), req.Message, conv.SessionID, history)

	if _, err := h.store.AddMessage(conv.SessionID, store.RoleAssistant, resp.Reply, map[string]string{
		"intent": string(resp.Intent),
	}); err != nil {
		logging.APIError("Failed to save assistant message: %v", err)
	}

	c.JSON(http.StatusOK, chatResponse{
		Reply:          resp.Reply,
		SessionID:      conv.SessionID,
		ResponseTimeMS: time.Since(start).Milliseconds(),
	})
}

func (h *Handler) loadHistory(sessionID string) []agent.HistoryMessage {
	msgs, err := h.store.RecentMessages(sessionID, 10)
	if err != nil {
		logging.APIError("Failed to load history for %s: %v", sessionID, err)
		return nil
	}
	history := make([]agent.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, agent.HistoryMessage{Role: m.Role, Content: m.Content})
	}
	return history
}

type feedbackRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	MessageID string `json:"message_id"`
	Comment   string `json:"comment"`
}

// Feedback handles POST /api/feedback with a thumbs up (1) or down (-1).
func (h *Handler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid feedback data",
			"details": err.Error(),
		})
		return
	}

	if _, err := h.store.GetConversation(req.SessionID); err != nil {
		logging.API("Feedback for unknown session: %s", req.SessionID)
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if _, err := h.store.AddFeedback(req.SessionID, req.MessageID, req.Rating, req.Comment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logging.API("Feedback %+d received for session %s", req.Rating, req.SessionID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Feedback received. Thank you!",
	})
}

// Health handles GET /api/health. Degrades to 503 when the database is
// unreachable.
func (h *Handler) Health(c *gin.Context) {
	status := "healthy"
	dbStatus := "connected"
	code := http.StatusOK

	stats, err := h.store.Stats()
	if err != nil {
		logging.APIError("Health check database failure: %v", err)
		status = "degraded"
		dbStatus = "disconnected"
		code = http.StatusServiceUnavailable
		stats = map[string]int64{}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  dbStatus,
		"service":   "Chakancha AI Chatbot",
		"version":   h.version,
		"features":  []string{"FAQ Retrieval", "DHL Tracking", "Conversation Memory"},
		"stats": gin.H{
			"conversations": stats["conversations"],
			"messages":      stats["messages"],
		},
	})
}

// Conversation handles GET /api/conversations/:session_id and returns the
// session with its messages.
func (h *Handler) Conversation(c *gin.Context) {
	sessionID := c.Param("session_id")

	msgs, err := h.store.RecentMessages(sessionID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if len(msgs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	positive, negative, _ := h.store.FeedbackCounts(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   msgs,
		"feedback": gin.H{
			"positive": positive,
			"negative": negative,
		},
	})
}
