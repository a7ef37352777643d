package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// EmailLookup resolves an identity's alert address. user.Repository
// satisfies it.
type EmailLookup interface {
	Email(ctx context.Context, identity string) (string, error)
}

// Logger is the subset of logging.Logger used here.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// ChannelResult records what happened on one channel.
type ChannelResult struct {
	Attempted bool
	Err       error
}

// Outcome is the result of one Dispatch.
type Outcome struct {
	Email ChannelResult
	Push  ChannelResult
}

// Dispatcher fans an intrusion alert out to email and push.
type Dispatcher struct {
	emails EmailLookup
	mailer Mailer
	pusher Pusher
	logger Logger
	now    func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil mailer or pusher disables that
// channel.
func NewDispatcher(emails EmailLookup, mailer Mailer, pusher Pusher, logger Logger) *Dispatcher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Dispatcher{
		emails: emails,
		mailer: mailer,
		pusher: pusher,
		logger: logger,
		now:    time.Now,
	}
}

// Dispatch sends the alert on both channels concurrently and waits for
// both. Failures are logged per channel and returned in the Outcome for
// inspection; callers on the message path ignore them.
func (d *Dispatcher) Dispatch(ctx context.Context, identity string) Outcome {
	var out Outcome

	msg, err := Render(identity, d.now())
	if err != nil {
		// Templates are static; this cannot happen outside a broken build.
		out.Email.Err = err
		out.Push.Err = err
		return out
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.Email = d.sendEmail(ctx, identity, msg)
	}()
	go func() {
		defer wg.Done()
		out.Push = d.sendPush(ctx, identity, msg)
	}()
	wg.Wait()

	return out
}

func (d *Dispatcher) sendEmail(ctx context.Context, identity string, msg Message) ChannelResult {
	if d.mailer == nil {
		return ChannelResult{Err: ErrChannelDisabled}
	}

	to, err := d.emails.Email(ctx, identity)
	if err == nil && to == "" {
		err = ErrNoEmail
	}
	if err != nil {
		if !errors.Is(err, ErrNoEmail) {
			err = fmt.Errorf("looking up email: %w", err)
		}
		d.logger.Info("intrusion email skipped", "identity", identity, "reason", err)
		return ChannelResult{Err: err}
	}

	if err := d.mailer.Send(ctx, to, msg); err != nil {
		d.logger.Warn("intrusion email failed", "identity", identity, "error", err)
		return ChannelResult{Attempted: true, Err: err}
	}
	d.logger.Info("intrusion email sent", "identity", identity)
	return ChannelResult{Attempted: true}
}

func (d *Dispatcher) sendPush(ctx context.Context, identity string, msg Message) ChannelResult {
	if d.pusher == nil {
		return ChannelResult{Err: ErrChannelDisabled}
	}

	if err := d.pusher.Push(ctx, identity, msg); err != nil {
		d.logger.Warn("intrusion push failed", "identity", identity, "error", err)
		return ChannelResult{Attempted: true, Err: err}
	}
	d.logger.Info("intrusion push sent", "identity", identity)
	return ChannelResult{Attempted: true}
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}
