package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/appetiteclub/roms/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

const (
	queueSize      = 256
	publishTimeout = 5 * time.Second
)

// Relay announces changes. Local viewers get the signal synchronously
// through the hub; the broker copy is published in order by a background
// worker so a slow broker never delays a write.
type Relay struct {
	hub       *Hub
	publisher events.Publisher
	topic     string
	logger    aqm.Logger

	queue  chan []byte
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

func New(hub *Hub, publisher events.Publisher, logger aqm.Logger) *Relay {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if hub == nil {
		hub = NewHub(logger)
	}
	return &Relay{
		hub:       hub,
		publisher: publisher,
		topic:     event.ChangesTopic,
		logger:    logger,
		queue:     make(chan []byte, queueSize),
		done:      make(chan struct{}),
	}
}

func (r *Relay) Hub() *Hub {
	return r.hub
}

// Start launches the broker worker. Without a publisher it is a no-op.
func (r *Relay) Start(ctx context.Context) error {
	if r.publisher == nil {
		return nil
	}
	r.wg.Add(1)
	go r.run()
	r.logger.Info("relay started", "topic", r.topic)
	return nil
}

// Stop drains queued signals, then disconnects viewers.
func (r *Relay) Stop(ctx context.Context) error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()

		waited := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(waited)
		}()

		select {
		case <-waited:
		case <-ctx.Done():
			r.logger.Info("relay stop timed out, pending signals dropped")
		}

		r.hub.Close()
	})
	return nil
}

// Notify never fails the caller. Encoding or broker errors are logged.
func (r *Relay) Notify(ctx context.Context, signal event.Signal) {
	if signal.OccurredAt.IsZero() {
		signal.OccurredAt = time.Now().UTC()
	}

	r.hub.Broadcast(signal)

	if r.publisher == nil {
		return
	}

	data, err := json.Marshal(signal)
	if err != nil {
		r.logger.Error("cannot encode signal", "signal", signal.Name, "error", err)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	select {
	case r.queue <- data:
	default:
		r.logger.Info("relay queue full, dropping broker signal", "signal", signal.Name)
	}
}

func (r *Relay) run() {
	defer r.wg.Done()
	for data := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := r.publisher.Publish(ctx, r.topic, data); err != nil {
			r.logger.Error("cannot publish signal", "topic", r.topic, "error", err)
		}
		cancel()
	}
}
