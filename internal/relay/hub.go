package relay

import (
	"sync"

	"github.com/appetiteclub/roms/pkg/event"
	"github.com/aquamarinepk/aqm"
)

const subscriberBuffer = 32

// Hub fans signals out to in-process subscribers. A subscriber whose buffer
// is full misses the signal.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan event.Signal
	logger      aqm.Logger
}

func NewHub(logger aqm.Logger) *Hub {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Hub{
		subscribers: make(map[string]chan event.Signal),
		logger:      logger,
	}
}

func (h *Hub) Subscribe(subscriberID string) <-chan event.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[subscriberID]; ok {
		return ch
	}
	ch := make(chan event.Signal, subscriberBuffer)
	h.subscribers[subscriberID] = ch

	h.logger.Debug("new subscriber", "subscriber_id", subscriberID, "total_subscribers", len(h.subscribers))
	return ch
}

func (h *Hub) Unsubscribe(subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[subscriberID]; ok {
		close(ch)
		delete(h.subscribers, subscriberID)
		h.logger.Debug("subscriber removed", "subscriber_id", subscriberID, "total_subscribers", len(h.subscribers))
	}
}

func (h *Hub) Broadcast(signal event.Signal) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for subscriberID, ch := range h.subscribers {
		select {
		case ch <- signal:
		default:
			h.logger.Info("subscriber channel full, dropping signal", "subscriber_id", subscriberID, "signal", signal.Name)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}
