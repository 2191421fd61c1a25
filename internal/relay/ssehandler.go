package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const keepaliveInterval = 30 * time.Second

// SSEHandler streams change signals to viewers. Each signal is sent as an
// event named after the signal with its JSON encoding as data.
type SSEHandler struct {
	hub       *Hub
	logger    aqm.Logger
	keepalive time.Duration
}

func NewSSEHandler(hub *Hub, logger aqm.Logger) *SSEHandler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &SSEHandler{hub: hub, logger: logger, keepalive: keepaliveInterval}
}

func (h *SSEHandler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.ServeHTTP)
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		aqm.RespondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	subscriberID := uuid.New().String()
	log := h.logger.With("subscriber_id", subscriberID)
	log.Info("new SSE connection")

	signals := h.hub.Subscribe(subscriberID)
	defer h.hub.Unsubscribe(subscriberID)

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Info("SSE client disconnected")
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()

		case signal, ok := <-signals:
			if !ok {
				log.Info("signal channel closed")
				return
			}

			data, err := json.Marshal(signal)
			if err != nil {
				log.Error("cannot encode signal", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", signal.Name)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
