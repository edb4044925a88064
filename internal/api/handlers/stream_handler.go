package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zatekoja/feedbackform/internal/domain/providers"
	"github.com/zatekoja/feedbackform/internal/infrastructure/observability"
)

// StreamHandler serves entry change events as Server-Sent Events
type StreamHandler struct {
	eventBus  providers.EventBus
	channel   string
	heartbeat time.Duration
	clients   atomic.Int64
}

// NewStreamHandler creates a new SSE handler for entry events on channel
func NewStreamHandler(eventBus providers.EventBus, channel string) *StreamHandler {
	if channel == "" {
		channel = providers.DefaultEntryEventsChannel
	}
	return &StreamHandler{
		eventBus:  eventBus,
		channel:   channel,
		heartbeat: 30 * time.Second,
	}
}

// SetHeartbeat changes the keep-alive interval
func (h *StreamHandler) SetHeartbeat(d time.Duration) {
	h.heartbeat = d
}

// StreamEntries handles GET /api/stream/data
func (h *StreamHandler) StreamEntries(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), h.channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", h.channel).Msg("failed to subscribe to entry events")
		respondWithError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	clients := h.clients.Add(1)
	defer h.clients.Add(-1)
	logger.Debug().Int64("clients", clients).Msg("entry stream client connected")

	h.sendEvent(w, "connected", map[string]interface{}{
		"channel":   h.channel,
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Msg("entry stream client disconnected")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// Stats handles GET /api/stream/stats
func (h *StreamHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int{"connected_clients": h.ClientCount()})
}

// ClientCount returns the number of connected stream clients
func (h *StreamHandler) ClientCount() int {
	return int(h.clients.Load())
}

func (h *StreamHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
