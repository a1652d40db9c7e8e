package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexus/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// DefaultRunTimeout bounds one scheduled run.
const DefaultRunTimeout = 30 * time.Minute

type Scheduler struct {
	service    *Service
	spec       string
	pages      int
	runTimeout time.Duration
	onComplete func(*Report)
	cron       *cron.Cron
}

type SchedulerOption func(*Scheduler)

// WithOnComplete registers a callback invoked after every finished run,
// including partial ones.
func WithOnComplete(fn func(*Report)) SchedulerOption {
	return func(s *Scheduler) { s.onComplete = fn }
}

func WithRunTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

// NewScheduler validates spec, a standard five field cron expression or a
// descriptor such as "@every 6h".
func NewScheduler(service *Service, spec string, pages int, opts ...SchedulerOption) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid ingest schedule %q: %w", spec, err)
	}
	s := &Scheduler{
		service:    service,
		spec:       spec,
		pages:      pages,
		runTimeout: DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule ingestion: %w", err)
	}
	s.cron = c
	c.Start()
	logger.Info().Str("schedule", s.spec).Int("pages", s.pages).Msg("ingest scheduler started")
	return nil
}

// Stop waits for a run in progress to return.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	logger.Info().Msg("ingest scheduler stopped")
}

func (s *Scheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.runTimeout)
	defer cancel()

	report, err := s.service.Run(ctx, s.pages)
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		logger.Warn().Msg("scheduled ingestion skipped, a run is already in progress")
		return
	case err != nil:
		logger.Error().Err(err).Msg("scheduled ingestion interrupted")
	}
	if report != nil && s.onComplete != nil {
		s.onComplete(report)
	}
}
