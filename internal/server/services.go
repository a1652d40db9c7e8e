package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nexus/internal/pkg/logger"

	"github.com/thejerf/suture/v4"
)

// HTTPServer is satisfied by *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService runs an HTTP server under a supervisor and shuts it down
// gracefully when its context ends.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *HTTPService) String() string {
	return "http-server"
}

// Scheduler is a start/stop background job such as the ingest scheduler.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop()
}

type SchedulerService struct {
	name      string
	scheduler Scheduler
}

func NewSchedulerService(name string, scheduler Scheduler) *SchedulerService {
	return &SchedulerService{name: name, scheduler: scheduler}
}

func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("%s: start: %w", s.name, err)
	}
	<-ctx.Done()
	s.scheduler.Stop()
	return ctx.Err()
}

func (s *SchedulerService) String() string {
	return s.name
}

// NewSupervisor builds a supervisor that reports lifecycle events through
// the process logger.
func NewSupervisor(name string, shutdownTimeout time.Duration) *suture.Supervisor {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return suture.New(name, suture.Spec{
		EventHook:        logEvent,
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          shutdownTimeout,
	})
}

func logEvent(e suture.Event) {
	switch e.Type() {
	case suture.EventTypeServicePanic, suture.EventTypeStopTimeout:
		logger.Error().Fields(e.Map()).Msg(e.String())
	case suture.EventTypeBackoff, suture.EventTypeServiceTerminate:
		logger.Warn().Fields(e.Map()).Msg(e.String())
	default:
		logger.Info().Fields(e.Map()).Msg(e.String())
	}
}
