package notification

import (
	"context"
	"errors"
	"time"

	"nexus/internal/metrics"
	"nexus/internal/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

var ErrQueueFull = errors.New("notification queue is full")

const (
	defaultQueueSize  = 256
	defaultMaxRetries = 3
	sendTimeout       = 30 * time.Second
)

// Dispatcher delivers queued messages in the background so request
// handlers never wait on the mail server. It runs as a supervised service.
type Dispatcher struct {
	mailer          Mailer
	queue           chan Message
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

type DispatcherOption func(*Dispatcher)

func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Message, n)
		}
	}
}

func WithRetry(maxRetries uint64, initial, max time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.maxRetries = maxRetries
		d.initialInterval = initial
		d.maxInterval = max
	}
}

func NewDispatcher(mailer Mailer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		mailer:          mailer,
		queue:           make(chan Message, defaultQueueSize),
		maxRetries:      defaultMaxRetries,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue schedules msg for delivery without blocking.
func (d *Dispatcher) Enqueue(msg Message) error {
	select {
	case d.queue <- msg:
		return nil
	default:
		metrics.EmailDeliveriesTotal.WithLabelValues("dropped").Inc()
		logger.Warn().Strs("to", msg.To).Str("subject", msg.Subject).Msg("notification queue full, dropping email")
		return ErrQueueFull
	}
}

// SendWelcome queues the registration welcome email.
func (d *Dispatcher) SendWelcome(_ context.Context, username, email string) error {
	if email == "" {
		return nil
	}
	return d.Enqueue(WelcomeEmail(username, email))
}

// Serve drains the queue until ctx is cancelled.
func (d *Dispatcher) Serve(ctx context.Context) error {
	logger.Info().Msg("notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Int("pending", len(d.queue)).Msg("notification dispatcher stopped")
			return ctx.Err()
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		}
	}
}

func (d *Dispatcher) String() string {
	return "notification-dispatcher"
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.initialInterval
	b.MaxInterval = d.maxInterval
	b.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		err := d.mailer.Send(sendCtx, msg)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Strs("to", msg.To).Msg("email delivery failed")
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, d.maxRetries), ctx))
	if err != nil {
		metrics.EmailDeliveriesTotal.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Int("attempts", attempt).Strs("to", msg.To).Str("subject", msg.Subject).Msg("email not delivered")
		return
	}
	metrics.EmailDeliveriesTotal.WithLabelValues("sent").Inc()
	logger.Debug().Strs("to", msg.To).Str("subject", msg.Subject).Msg("email delivered")
}
