package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/appetiteclub/roms/pkg/event"
	"github.com/aquamarinepk/aqm"
)

type Notifier interface {
	Notify(ctx context.Context, signal event.Signal)
}

// Store serves the current settings to readers without locking and
// serializes writers in process. Writes from other processes arrive through
// HandleSignal or the optional refresh poller.
type Store struct {
	repo         Repo
	notifier     Notifier
	logger       aqm.Logger
	defaultRate  float64
	current      atomic.Pointer[Settings]
	writeMu      sync.Mutex
	refreshEvery time.Duration
	stopPoll     context.CancelFunc
	pollDone     chan struct{}
}

func NewStore(repo Repo, notifier Notifier, defaultRate float64, logger aqm.Logger) *Store {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if ValidateRate(defaultRate) != nil {
		defaultRate = DefaultGSTRate
	}
	s := &Store{
		repo:        repo,
		notifier:    notifier,
		logger:      logger,
		defaultRate: defaultRate,
	}
	s.current.Store(NewSettings(defaultRate))
	return s
}

// SetRefreshInterval makes Start launch a poller that reloads the record
// every d. Zero disables polling. Call it before Start.
func (s *Store) SetRefreshInterval(d time.Duration) {
	s.refreshEvery = d
}

// Start loads the stored record, creating it with the default rate when the
// store is empty.
func (s *Store) Start(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	stored, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("cannot load settings: %w", err)
	}

	if stored == nil {
		stored, err = s.createDefault(ctx)
		if err != nil {
			return err
		}
	}

	s.current.Store(stored)

	if s.refreshEvery > 0 {
		pollCtx, cancel := context.WithCancel(context.Background())
		s.stopPoll = cancel
		s.pollDone = make(chan struct{})
		go s.poll(pollCtx, s.refreshEvery)
	}
	return nil
}

// createDefault inserts the first record. Another instance booting at the
// same time may win the insert; its record is used instead.
func (s *Store) createDefault(ctx context.Context) (*Settings, error) {
	created := NewSettings(s.defaultRate)
	err := s.repo.Save(ctx, created)
	if err == nil {
		s.logger.Info("default settings created", "gst_rate", created.GSTRate)
		return created, nil
	}
	if !errors.Is(err, ErrConcurrentUpdate) {
		return nil, fmt.Errorf("cannot create default settings: %w", err)
	}

	stored, lerr := s.repo.Load(ctx)
	if lerr != nil {
		return nil, fmt.Errorf("cannot load settings: %w", lerr)
	}
	if stored == nil {
		return nil, fmt.Errorf("cannot create default settings: %w", err)
	}
	s.logger.Info("default settings created by another instance", "gst_rate", stored.GSTRate)
	return stored, nil
}

func (s *Store) Stop(ctx context.Context) error {
	if s.stopPoll == nil {
		return nil
	}
	s.stopPoll()
	select {
	case <-s.pollDone:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *Store) poll(ctx context.Context, every time.Duration) {
	defer close(s.pollDone)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("settings refresh failed", "error", err)
			}
		}
	}
}

// HandleSignal is an events.HandlerFunc for the change topic. A
// settings:updated signal reloads the record; other signals are ignored.
func (s *Store) HandleSignal(ctx context.Context, msg []byte) error {
	var signal event.Signal
	if err := json.Unmarshal(msg, &signal); err != nil {
		return fmt.Errorf("cannot decode change signal: %w", err)
	}
	if signal.Name != event.SettingsUpdated {
		return nil
	}
	return s.Refresh(ctx)
}

// Current returns a copy of the live settings.
func (s *Store) Current() Settings {
	return *s.current.Load()
}

func (s *Store) Rate() float64 {
	return s.current.Load().GSTRate
}

// SetRate validates and persists a new rate. It takes effect for every
// computation that starts afterwards.
func (s *Store) SetRate(ctx context.Context, rate float64) (Settings, error) {
	if err := ValidateRate(rate); err != nil {
		return Settings{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.current.Load()
	next := &Settings{
		ID:        GlobalID,
		GSTRate:   rate,
		Version:   prev.Version + 1,
		UpdatedAt: time.Now(),
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, next); err != nil {
			if errors.Is(err, ErrConcurrentUpdate) {
				if rerr := s.refreshLocked(ctx); rerr != nil {
					s.logger.Error("cannot refresh settings after conflict", "error", rerr)
				}
			}
			return Settings{}, fmt.Errorf("cannot save settings: %w", err)
		}
	}

	s.current.Store(next)
	s.logger.Info("gst rate updated", "from", prev.GSTRate, "to", rate, "version", next.Version)

	if s.notifier != nil {
		s.notifier.Notify(ctx, event.NewSignal(event.SettingsUpdated))
	}
	return *next, nil
}

// Refresh reloads the record, picking up writes made by other processes.
func (s *Store) Refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	stored, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("cannot reload settings: %w", err)
	}
	if stored != nil {
		s.current.Store(stored)
	}
	return nil
}
