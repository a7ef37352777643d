package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/lockguard-core/internal/alert"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/mqtt"
)

// Event kinds delivered to observers.
const (
	EventMotion    = "pir"
	EventAccess    = "access"
	EventIntrusion = "intrusion"
)

// intrusionPayload is the only notify payload that raises an alert.
const intrusionPayload = "1"

// Event describes one handled inbound message.
type Event struct {
	Identity string    `json:"identity"`
	Kind     string    `json:"kind"`
	Value    *int      `json:"value,omitempty"`
	Granted  *bool     `json:"granted,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// HandleMessage is the mqtt.MessageHandler for every lock topic.
//
// The topic is parsed synchronously; the handler itself runs on a worker
// goroutine once a slot is free, so at most Workers handlers touch the
// credential store and sinks at once. The MQTT client delivers each message
// on its own goroutine (order does not matter), so callers waiting for a
// slot are parked goroutines; the broker link itself is never blocked.
//
// Returns:
//   - error: mqtt.ErrMalformedTopic, ErrUnknownChannel or ErrClosed when the
//     message was dropped; nil once it is handed to a worker
func (r *Relay) HandleMessage(topic string, payload []byte) error {
	dt, err := mqtt.ParseDeviceTopic(topic)
	if err != nil {
		r.metrics.message("", "malformed")
		return err
	}

	var handle func(ctx context.Context, identity string, payload []byte)
	switch dt.Channel {
	case mqtt.ChannelPIR:
		handle = r.handleMotion
	case mqtt.ChannelPassword:
		handle = r.handleAccess
	case mqtt.ChannelNotify:
		handle = r.handleNotify
	default:
		r.metrics.message(dt.Channel, "unknown_channel")
		return fmt.Errorf("%w: %q on %s", ErrUnknownChannel, dt.Channel, topic)
	}

	if err := r.sem.Acquire(r.ctx, 1); err != nil {
		r.metrics.message(dt.Channel, "dropped")
		return ErrClosed
	}

	r.closeMu.RLock()
	if r.closed {
		r.closeMu.RUnlock()
		r.sem.Release(1)
		r.metrics.message(dt.Channel, "dropped")
		return ErrClosed
	}
	r.wg.Add(1)
	r.closeMu.RUnlock()

	go func() {
		defer r.wg.Done()
		defer r.sem.Release(1)

		start := time.Now()
		handle(r.ctx, dt.Identity, payload)
		r.metrics.observeHandler(dt.Channel, time.Since(start).Seconds())
	}()
	return nil
}

// handleMotion records a PIR reading.
func (r *Relay) handleMotion(ctx context.Context, identity string, payload []byte) {
	value, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		r.metrics.message(mqtt.ChannelPIR, "invalid")
		r.logger.Warn("dropping motion reading",
			"identity", identity,
			"error", fmt.Errorf("%w: %q", ErrInvalidMotion, payload))
		return
	}
	at := r.now()

	r.bestEffort("record_motion", func() error {
		return r.recordMotion(ctx, identity, value, at)
	})
	r.observe(Event{Identity: identity, Kind: EventMotion, Value: &value, At: at})
	r.metrics.message(mqtt.ChannelPIR, "handled")
}

// handleAccess verifies a code submission and answers the lock.
// Commands go out before the attempt is recorded.
func (r *Relay) handleAccess(ctx context.Context, identity string, payload []byte) {
	at := r.now()
	res := r.verifier.Verify(ctx, identity, string(payload))
	if res.Err != nil {
		r.logger.Error("access verification failed closed",
			"identity", identity, "reason", res.Reason, "error", res.Err)
	}
	r.metrics.accessAttempt(string(res.Reason))

	r.bestEffort("actuate", func() error {
		return r.actuator.OnVerified(identity, res.Granted)
	})
	r.bestEffort("record_access", func() error {
		return r.recordAccess(ctx, identity, res.Granted, at)
	})

	granted := res.Granted
	r.observe(Event{Identity: identity, Kind: EventAccess, Granted: &granted, Reason: string(res.Reason), At: at})
	r.metrics.message(mqtt.ChannelPassword, "handled")

	r.logger.Info("access attempt",
		"identity", identity, "granted", res.Granted, "reason", res.Reason)
}

// handleNotify raises an intrusion alert for a bare "1".
func (r *Relay) handleNotify(ctx context.Context, identity string, payload []byte) {
	if strings.TrimSpace(string(payload)) != intrusionPayload {
		r.metrics.message(mqtt.ChannelNotify, "ignored")
		r.logger.Debug("notify without intrusion", "identity", identity, "payload", string(payload))
		return
	}
	at := r.now()

	r.logger.Warn("intrusion reported", "identity", identity)
	if r.alerter != nil {
		out := r.alerter.Dispatch(ctx, identity)
		r.metrics.alert("email", channelResult(out.Email))
		r.metrics.alert("push", channelResult(out.Push))
	}
	r.bestEffort("record_intrusion", func() error {
		return r.recordIntrusion(ctx, identity, at)
	})
	r.observe(Event{Identity: identity, Kind: EventIntrusion, At: at})
	r.metrics.message(mqtt.ChannelNotify, "handled")
}

// bestEffort runs fn and logs a failure without propagating it.
func (r *Relay) bestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		r.metrics.bestEffortFailure(name)
		r.logger.Warn("best-effort operation failed", "operation", name, "error", err)
	}
}

func (r *Relay) recordMotion(ctx context.Context, identity string, value int, at time.Time) error {
	if r.recorder == nil {
		return nil
	}
	return r.recorder.RecordMotion(ctx, identity, value, at)
}

func (r *Relay) recordAccess(ctx context.Context, identity string, success bool, at time.Time) error {
	if r.recorder == nil {
		return nil
	}
	return r.recorder.RecordAccessAttempt(ctx, identity, success, at)
}

func (r *Relay) recordIntrusion(ctx context.Context, identity string, at time.Time) error {
	if r.recorder == nil {
		return nil
	}
	return r.recorder.RecordIntrusion(ctx, identity, at)
}

func (r *Relay) observe(ev Event) {
	if r.observer != nil {
		r.observer.Observe(ev)
	}
}

func channelResult(c alert.ChannelResult) string {
	switch {
	case errors.Is(c.Err, alert.ErrChannelDisabled):
		return "disabled"
	case errors.Is(c.Err, alert.ErrNoEmail):
		return "skipped"
	case c.Err != nil:
		return "failed"
	case c.Attempted:
		return "sent"
	default:
		return "skipped"
	}
}
