package routes

import (
	"net/http"

	"github.com/zatekoja/feedbackform/internal/api/handlers"
	"github.com/zatekoja/feedbackform/internal/api/middleware"
	"github.com/zatekoja/feedbackform/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	entryHandler  *handlers.EntryHandler
	streamHandler *handlers.StreamHandler

	allowedOrigins []string
	metrics        *observability.Metrics
	storeMetrics   *observability.StoreMetrics
}

// NewRouter creates a new router. streamHandler, metrics and storeMetrics
// are optional; /metrics is only served when storeMetrics is set.
func NewRouter(
	entryHandler *handlers.EntryHandler,
	streamHandler *handlers.StreamHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
	storeMetrics *observability.StoreMetrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		entryHandler:   entryHandler,
		streamHandler:  streamHandler,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
		storeMetrics:   storeMetrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", handlers.Health)

	// Entry endpoints
	r.mux.HandleFunc("POST /api/submit", r.entryHandler.SubmitEntry)
	r.mux.HandleFunc("GET /api/data", r.entryHandler.ListEntries)
	r.mux.HandleFunc("GET /api/data/{id}", r.entryHandler.GetEntry)
	r.mux.HandleFunc("PUT /api/data/{id}", r.entryHandler.UpdateEntry)
	r.mux.HandleFunc("DELETE /api/data/{id}", r.entryHandler.DeleteEntry)

	// Entry change stream
	if r.streamHandler != nil {
		r.mux.HandleFunc("GET /api/stream/data", r.streamHandler.StreamEntries)
		r.mux.HandleFunc("GET /api/stream/stats", r.streamHandler.Stats)
	}

	if r.storeMetrics != nil {
		r.mux.Handle("GET /metrics", r.storeMetrics.Handler())
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so preflights and error responses carry its headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics, r.storeMetrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
