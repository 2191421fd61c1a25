package billing

import (
	"context"
	"time"

	"github.com/appetiteclub/roms/internal/order"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// OrderSource is the read side of the order service.
type OrderSource interface {
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
	List(ctx context.Context, filter order.ListFilter) ([]*order.Order, error)
}

// RateSource yields the tax rate currently in force.
type RateSource interface {
	Rate() float64
}

type Service struct {
	orders OrderSource
	rates  RateSource
	policy RatePolicy
	logger aqm.Logger
	now    func() time.Time
}

func NewService(orders OrderSource, rates RateSource, policy RatePolicy, logger aqm.Logger) *Service {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Service{
		orders: orders,
		rates:  rates,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Invoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildInvoice(o, s.policy.RateFor(o, s.rates.Rate())), nil
}

func (s *Service) Report(ctx context.Context, filter order.ListFilter) (Report, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(orders, s.policy, s.rates.Rate(), s.now()), nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	orders, err := s.orders.List(ctx, order.ListFilter{})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(orders), nil
}

func (s *Service) Daily(ctx context.Context) (Metrics, error) {
	from, to := DayWindow(s.now())
	return s.window(ctx, from, to)
}

func (s *Service) Weekly(ctx context.Context) (Metrics, error) {
	from, to := WeekWindow(s.now())
	return s.window(ctx, from, to)
}

// Dashboard bundles the summary with the daily and weekly metrics.
type Dashboard struct {
	Summary Summary `json:"summary"`
	Daily   Metrics `json:"daily"`
	Weekly  Metrics `json:"weekly"`
	GSTRate float64 `json:"gst_rate"`
}

// Dashboard loads the three views concurrently and fails if any of them does.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	d := Dashboard{GSTRate: s.rates.Rate()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.Summary(gctx)
		d.Summary = summary
		return err
	})
	g.Go(func() error {
		daily, err := s.Daily(gctx)
		d.Daily = daily
		return err
	})
	g.Go(func() error {
		weekly, err := s.Weekly(gctx)
		d.Weekly = weekly
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (s *Service) window(ctx context.Context, from, to time.Time) (Metrics, error) {
	orders, err := s.orders.List(ctx, order.ListFilter{From: from, To: to})
	if err != nil {
		return Metrics{}, err
	}
	return Aggregate(orders, from, to), nil
}
