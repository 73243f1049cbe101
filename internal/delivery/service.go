// Package delivery turns a profile into a delivered etymology: it selects a
// variant, generates the text, sends it and records the delivery time.
package delivery

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/etymology-bot/internal/domain"
	"github.com/ykvlv/etymology-bot/internal/metrics"
)

// Trigger tells why a delivery happens.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerOnDemand  Trigger = "on_demand"
)

// ContentGenerator produces the text for one delivery.
type ContentGenerator interface {
	Generate(ctx context.Context, lang domain.Language, interests []string, v domain.Variant) (string, error)
}

// Messenger is the part of the chat transport a delivery needs.
type Messenger interface {
	NotifyTyping(chatID int64) error
	SendContent(chatID int64, text string, lang domain.Language) error
	EditContent(chatID int64, messageID int, text string, lang domain.Language) error
}

// StateWriter persists delivery state.
type StateWriter interface {
	Merge(ctx context.Context, chatID int64, patch domain.Patch) error
}

// Recorder receives delivery metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordDelivery(trigger, result string)
	ObserveGeneration(d time.Duration)
	RecordStoreFailure()
}

// Request describes one delivery.
type Request struct {
	Profile domain.Profile
	Trigger Trigger
	// EditMessageID replaces an existing message instead of sending a new one.
	EditMessageID int
	// Now is stamped as lastSentAt; zero means the service clock.
	Now time.Time
}

// Options tune a Service. Zero values fall back to defaults.
type Options struct {
	Selector        VariantSelector
	Now             func() time.Time
	GenerateTimeout time.Duration
	// StampOnDemand makes on-demand deliveries reset the scheduled cadence.
	StampOnDemand bool
	Metrics       Recorder
}

// Service runs the content path shared by scheduled and on-demand deliveries.
type Service struct {
	gen      ContentGenerator
	msg      Messenger
	repo     StateWriter
	log      *zap.Logger
	selector VariantSelector
	now      func() time.Time
	timeout  time.Duration
	stampOD  bool
	metrics  Recorder
	locks    chatLocks
}

func NewService(gen ContentGenerator, msg Messenger, repo StateWriter, log *zap.Logger, opts Options) *Service {
	s := &Service{
		gen:      gen,
		msg:      msg,
		repo:     repo,
		log:      log,
		selector: opts.Selector,
		now:      opts.Now,
		timeout:  opts.GenerateTimeout,
		stampOD:  opts.StampOnDemand,
		metrics:  opts.Metrics,
		locks:    chatLocks{m: make(map[int64]*sync.Mutex)},
	}
	if s.selector == nil {
		s.selector = NewWeightedSelector(DefaultEnhancedRatio)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timeout <= 0 {
		s.timeout = 90 * time.Second
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s
}

// Deliver generates and sends content for req.Profile. lastSentAt is written
// only after both the generation and the send succeeded. The returned error is
// a *domain.GenerationError or *domain.DeliveryError; store failures are
// logged and do not fail the delivery.
func (s *Service) Deliver(ctx context.Context, req Request) error {
	p := req.Profile
	unlock := s.locks.lock(p.ChatID)
	defer unlock()

	log := s.log.With(zap.Int64("chat_id", p.ChatID), zap.String("trigger", string(req.Trigger)))

	if err := s.msg.NotifyTyping(p.ChatID); err != nil {
		log.Debug("typing indicator failed", zap.Error(err))
	}

	variant := s.selector.Select()
	log = log.With(zap.String("variant", string(variant)))

	text, err := s.generate(ctx, p, variant)
	if err != nil {
		s.metrics.RecordDelivery(string(req.Trigger), metrics.ResultGenerateFailed)
		log.Warn("generation failed", zap.Error(err))
		return err
	}

	if req.EditMessageID != 0 {
		err = s.msg.EditContent(p.ChatID, req.EditMessageID, text, p.Language)
	} else {
		err = s.msg.SendContent(p.ChatID, text, p.Language)
	}
	if err != nil {
		var dErr *domain.DeliveryError
		if !errors.As(err, &dErr) {
			err = &domain.DeliveryError{ChatID: p.ChatID, Op: "send content", Err: err}
		}
		s.metrics.RecordDelivery(string(req.Trigger), metrics.ResultSendFailed)
		log.Warn("send failed", zap.Error(err))
		return err
	}
	s.metrics.RecordDelivery(string(req.Trigger), metrics.ResultSent)

	if req.Trigger == TriggerOnDemand && !s.stampOD {
		return nil
	}
	at := req.Now
	if at.IsZero() {
		at = s.now()
	}
	if err := s.repo.Merge(ctx, p.ChatID, domain.SentPatch(at)); err != nil {
		s.metrics.RecordStoreFailure()
		log.Error("record delivery failed", zap.Error(err))
	}
	return nil
}

func (s *Service) generate(ctx context.Context, p domain.Profile, v domain.Variant) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.gen.Generate(ctx, p.Language, p.Interests, v)
	s.metrics.ObserveGeneration(time.Since(start))
	if err != nil {
		var gErr *domain.GenerationError
		if !errors.As(err, &gErr) {
			err = &domain.GenerationError{Variant: v, Err: err}
		}
		return "", err
	}
	return text, nil
}

// chatLocks serializes deliveries per chat so a scheduled and an on-demand
// delivery for the same user never overlap.
type chatLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func (c *chatLocks) lock(chatID int64) func() {
	c.mu.Lock()
	l, ok := c.m[chatID]
	if !ok {
		l = &sync.Mutex{}
		c.m[chatID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

type nopRecorder struct{}

func (nopRecorder) RecordDelivery(string, string)   {}
func (nopRecorder) ObserveGeneration(time.Duration) {}
func (nopRecorder) RecordStoreFailure()             {}
