package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []Message
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) snapshot() (int, []Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, append([]Message(nil), m.sent...)
}

func startDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestWelcomeEmail(t *testing.T) {
	msg := WelcomeEmail("neo", "neo@example.com")
	assert.Equal(t, []string{"neo@example.com"}, msg.To)
	assert.Equal(t, "Welcome to Nexus!", msg.Subject)
	assert.True(t, strings.HasPrefix(msg.Body, "Hi neo,\n\n"))
	assert.Contains(t, msg.Body, "Thank you for registering at Nexus.")
}

func TestBuildMessage(t *testing.T) {
	raw := buildMessage("noreply@nexus.local", Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello",
		Body:    "line one\nline two",
	})

	assert.Contains(t, raw, "From: noreply@nexus.local\r\n")
	assert.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nline one\r\nline two"))
}

func TestNewMailer(t *testing.T) {
	assert.IsType(t, &DevConsoleMailer{}, NewMailer(SMTPConfig{}))
	assert.IsType(t, &SMTPMailer{}, NewMailer(SMTPConfig{Host: "smtp.example.com", Port: 587}))
}

func TestSMTPMailer_NoRecipients(t *testing.T) {
	err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1}).Send(context.Background(), Message{Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients")
}

func TestDispatcher_DeliversQueuedMail(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, WithRetry(3, time.Millisecond, 5*time.Millisecond))
	startDispatcher(t, d)

	require.NoError(t, d.SendWelcome(context.Background(), "trinity", "trinity@example.com"))

	assert.Eventually(t, func() bool {
		_, sent := mailer.snapshot()
		return len(sent) == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, sent := mailer.snapshot()
	assert.Equal(t, "Welcome to Nexus!", sent[0].Subject)
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	mailer := &recordingMailer{failures: 2}
	d := NewDispatcher(mailer, WithRetry(3, time.Millisecond, 5*time.Millisecond))
	startDispatcher(t, d)

	require.NoError(t, d.Enqueue(Message{To: []string{"x@example.com"}, Subject: "retry"}))

	assert.Eventually(t, func() bool {
		calls, sent := mailer.snapshot()
		return calls == 3 && len(sent) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	mailer := &recordingMailer{failures: 100}
	d := NewDispatcher(mailer, WithRetry(2, time.Millisecond, 2*time.Millisecond))
	startDispatcher(t, d)

	require.NoError(t, d.Enqueue(Message{To: []string{"x@example.com"}, Subject: "lost"}))

	assert.Eventually(t, func() bool {
		calls, _ := mailer.snapshot()
		return calls == 3
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	calls, sent := mailer.snapshot()
	assert.Equal(t, 3, calls)
	assert.Empty(t, sent)
}

func TestDispatcher_EnqueueDoesNotBlockWhenFull(t *testing.T) {
	d := NewDispatcher(&recordingMailer{}, WithQueueSize(1))

	require.NoError(t, d.Enqueue(Message{To: []string{"a@example.com"}}))
	err := d.Enqueue(Message{To: []string{"b@example.com"}})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestDispatcher_SkipsEmptyAddress(t *testing.T) {
	d := NewDispatcher(&recordingMailer{}, WithQueueSize(1))
	require.NoError(t, d.SendWelcome(context.Background(), "nobody", ""))
	assert.Equal(t, 0, len(d.queue))
}

func TestDispatcher_ServeStopsOnCancel(t *testing.T) {
	d := NewDispatcher(&recordingMailer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Serve(ctx), context.Canceled)
}
