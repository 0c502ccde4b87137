package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chakancha/internal/store"
)

// Router wraps a configured Gin engine and exposes it as an http.Handler.
type Router struct {
	engine *gin.Engine
}

// RouterOptions configure the middleware chain.
type RouterOptions struct {
	// RatePerMinute caps requests per client IP on the chat and feedback
	// endpoints. Zero disables rate limiting.
	RatePerMinute int
	Version       string
}

// NewRouter constructs a Router with the full middleware chain and all
// routes registered. Middleware order: recovery first so panics anywhere in
// the chain become 500s, then request logging.
func NewRouter(chat ChatService, s *store.Store, logger *zap.Logger, opts RouterOptions) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(Recovery(logger))
	engine.Use(RequestLogger(logger))

	h := &Handler{chat: chat, store: s, version: opts.Version}

	api := engine.Group("/api")
	if opts.RatePerMinute > 0 {
		limited := api.Group("", RateLimit(opts.RatePerMinute))
		limited.POST("/chat", h.Chat)
		limited.POST("/feedback", h.Feedback)
	} else {
		api.POST("/chat", h.Chat)
		api.POST("/feedback", h.Feedback)
	}
	api.GET("/health", h.Health)
	api.GET("/conversations/:session_id", h.Conversation)

	return &Router{engine: engine}
}

// Handler returns the underlying http.Handler for use with net/http servers.
func (r *Router) Handler() http.Handler {
	return r.engine
}
