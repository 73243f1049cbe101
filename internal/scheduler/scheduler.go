package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ykvlv/etymology-bot/internal/delivery"
	"github.com/ykvlv/etymology-bot/internal/domain"
)

// DefaultPeriod is the resolution at which intervals are checked.
const DefaultPeriod = time.Hour

// Lister returns the profiles that finished onboarding.
type Lister interface {
	ListEligible(ctx context.Context) ([]domain.Profile, error)
}

// Deliverer performs one delivery. *delivery.Service implements it.
type Deliverer interface {
	Deliver(ctx context.Context, req delivery.Request) error
}

// TickRecorder receives per-tick metrics.
type TickRecorder interface {
	RecordTick(due int)
}

// Options tune a Scheduler. Zero values fall back to defaults.
type Options struct {
	Period         time.Duration
	MaxConcurrency int
	Now            func() time.Time
	Metrics        TickRecorder
}

// Scheduler periodically polls the store and delivers to due users.
type Scheduler struct {
	repo     Lister
	svc      Deliverer
	log      *zap.Logger
	period   time.Duration
	parallel int
	now      func() time.Time
	metrics  TickRecorder
}

// Summary reports the outcome of one tick.
type Summary struct {
	Eligible  int
	Due       int
	Delivered int
	Failed    int
}

func New(repo Lister, svc Deliverer, log *zap.Logger, opts Options) *Scheduler {
	s := &Scheduler{
		repo:     repo,
		svc:      svc,
		log:      log,
		period:   opts.Period,
		parallel: opts.MaxConcurrency,
		now:      opts.Now,
		metrics:  opts.Metrics,
	}
	if s.period <= 0 {
		s.period = DefaultPeriod
	}
	if s.parallel <= 0 {
		s.parallel = 1
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.log.Info("scheduler started",
		zap.Duration("period", s.period),
		zap.Int("max_concurrency", s.parallel),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx, s.now().UTC()); err != nil {
				s.log.Error("tick failed", zap.Error(err))
			}
		}
	}
}

// Tick performs one scheduling cycle: list eligible users, pick the due ones
// and deliver to each of them. A failing user never stops the others.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (Summary, error) {
	log := s.log.With(zap.String("tick_id", uuid.NewString()))

	profiles, err := s.repo.ListEligible(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list eligible: %w", err)
	}
	due := domain.Due(profiles, now)
	if s.metrics != nil {
		s.metrics.RecordTick(len(due))
	}

	sum := Summary{Eligible: len(profiles), Due: len(due)}
	if len(due) == 0 {
		log.Debug("nothing due", zap.Int("eligible", len(profiles)))
		return sum, nil
	}

	var delivered, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for _, p := range due {
		g.Go(func() error {
			if s.deliver(gctx, log, p, now) {
				delivered.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	sum.Delivered = int(delivered.Load())
	sum.Failed = int(failed.Load())
	log.Info("tick done",
		zap.Int("eligible", sum.Eligible),
		zap.Int("due", sum.Due),
		zap.Int("delivered", sum.Delivered),
		zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

// deliver isolates one user's delivery, including panics.
func (s *Scheduler) deliver(ctx context.Context, log *zap.Logger, p domain.Profile, now time.Time) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("delivery panicked", zap.Int64("chat_id", p.ChatID), zap.Any("panic", r))
			ok = false
		}
	}()

	err := s.svc.Deliver(ctx, delivery.Request{
		Profile: p,
		Trigger: delivery.TriggerScheduled,
		Now:     now,
	})
	if err != nil {
		log.Error("scheduled delivery failed", zap.Int64("chat_id", p.ChatID), zap.Error(err))
		return false
	}
	return true
}
