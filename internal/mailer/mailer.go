package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail through an SMTP relay with STARTTLS.
type SMTPSender struct {
	dialer *mail.Dialer
	from   string
}

// NewSMTPSender builds a sender for host:port authenticating as user.
func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	d := mail.NewDialer(host, port, user, pass)
	d.Timeout = 20 * time.Second
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	return &SMTPSender{dialer: d, from: from}
}

// Send delivers msg. ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogSender only logs messages. Used when no SMTP credentials are configured.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email not sent, smtp disabled",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// Async wraps a Sender so delivery happens in the background.
// Failures are logged and never reach the caller.
type Async struct {
	next    Sender
	log     *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewAsync creates an asynchronous sender.
func NewAsync(next Sender, log *zap.Logger) *Async {
	return &Async{next: next, log: log, timeout: 30 * time.Second}
}

// Send queues msg for background delivery. After Close it delivers inline.
func (a *Async) Send(ctx context.Context, msg Message) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.deliver(ctx, msg)
		return nil
	}
	a.pending.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		a.deliver(ctx, msg)
	}()
	return nil
}

func (a *Async) deliver(ctx context.Context, msg Message) {
	if err := a.next.Send(ctx, msg); err != nil {
		a.log.Error("async email failed",
			zap.Error(err),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return
	}
	a.log.Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
}

// Close waits for in-flight deliveries until ctx is done.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for pending emails: %w", ctx.Err())
	}
}
