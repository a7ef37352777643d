package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nerrad567/lockguard-core/internal/access"
	"github.com/nerrad567/lockguard-core/internal/alert"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/mqtt"
)

// Relay defaults.
const (
	defaultWorkers           = 16
	defaultReconcileInterval = time.Minute
)

// State is the relay's view of the broker session.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDegraded     State = "degraded"
)

// Transport is the MQTT surface the relay needs. *mqtt.Client satisfies it.
type Transport interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	QoS() byte
	IsConnected() bool
}

// IdentitySource lists registered identities. user.Repository satisfies it.
type IdentitySource interface {
	Identities(ctx context.Context) ([]string, error)
}

// Verifier checks a submitted access code.
type Verifier interface {
	Verify(ctx context.Context, identity, code string) access.Result
}

// Actuator publishes lock commands.
type Actuator interface {
	OnVerified(identity string, granted bool) error
}

// Alerter raises intrusion alerts.
type Alerter interface {
	Dispatch(ctx context.Context, identity string) alert.Outcome
}

// Observer receives every handled event, for live dashboards.
type Observer interface {
	Observe(ev Event)
}

// Logger is the subset of logging.Logger used by the relay.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Relay. Transport, Identities, Verifier and Actuator
// are required; the rest may be nil.
type Options struct {
	Transport  Transport
	Identities IdentitySource
	Verifier   Verifier
	Actuator   Actuator
	Alerter    Alerter
	Recorder   Recorder
	Observer   Observer
	Logger     Logger
	Metrics    *Metrics

	// Workers bounds concurrent message handlers. Default: 16.
	Workers int

	// ReconcileInterval is the sweep period. Default: one minute.
	ReconcileInterval time.Duration
}

// Relay owns the device sessions.
//
// Thread Safety: all methods are safe for concurrent use.
type Relay struct {
	transport  Transport
	identities IdentitySource
	verifier   Verifier
	actuator   Actuator
	alerter    Alerter
	recorder   Recorder
	observer   Observer
	logger     Logger
	metrics    *Metrics

	router            *Router
	sem               *semaphore.Weighted
	reconcileInterval time.Duration
	now               func() time.Time

	state   State
	stateMu sync.RWMutex

	// sweepMu serializes sweeps and Track.
	sweepMu sync.Mutex

	// ctx bounds handler work and is cancelled once Close has drained.
	ctx    context.Context
	cancel context.CancelFunc

	started  bool
	closed   bool
	closeMu  sync.RWMutex
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a Relay in the disconnected state.
func New(opts Options) (*Relay, error) {
	switch {
	case opts.Transport == nil:
		return nil, fmt.Errorf("%w: transport", ErrMissingDependency)
	case opts.Identities == nil:
		return nil, fmt.Errorf("%w: identity source", ErrMissingDependency)
	case opts.Verifier == nil:
		return nil, fmt.Errorf("%w: verifier", ErrMissingDependency)
	case opts.Actuator == nil:
		return nil, fmt.Errorf("%w: actuator", ErrMissingDependency)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	interval := opts.ReconcileInterval
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &Relay{
		transport:         opts.Transport,
		identities:        opts.Identities,
		verifier:          opts.Verifier,
		actuator:          opts.Actuator,
		alerter:           opts.Alerter,
		recorder:          opts.Recorder,
		observer:          opts.Observer,
		logger:            logger,
		metrics:           opts.Metrics,
		router:            NewRouter(),
		sem:               semaphore.NewWeighted(int64(workers)),
		reconcileInterval: interval,
		now:               time.Now,
		ctx:               ctx,
		cancel:            cancel,
		done:              make(chan struct{}),
	}
	r.setState(StateDisconnected)
	return r, nil
}

// Start runs the first sweep and begins periodic reconciliation.
//
// Parameters:
//   - ctx: Bounds the first sweep only
//
// Returns:
//   - error: wraps ErrCredentialStoreUnavailable when identities cannot be
//     listed; the relay stays disconnected
func (r *Relay) Start(ctx context.Context) error {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return ErrClosed
	}
	r.started = true
	r.closeMu.Unlock()

	r.setState(StateConnecting)

	if err := r.sweep(ctx); err != nil {
		r.setState(StateDisconnected)
		return fmt.Errorf("%w: %w", ErrCredentialStoreUnavailable, err)
	}

	// A disconnect during the sweep wins; reconciliation recovers it.
	r.transitionState(StateConnecting, StateConnected)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.reconcileLoop()
	}()

	r.logger.Info("relay started",
		"subscriptions", r.router.Len(),
		"reconcile_interval", r.reconcileInterval)
	return nil
}

// Close stops reconciliation, drops new messages and waits for in-flight
// handlers to finish. Safe to call more than once.
func (r *Relay) Close() error {
	r.stopOnce.Do(func() {
		r.closeMu.Lock()
		r.closed = true
		r.closeMu.Unlock()

		close(r.done)
		r.wg.Wait()
		r.cancel()

		r.setState(StateDisconnected)
		r.logger.Info("relay stopped")
	})
	return nil
}

// HandleConnected is the transport's connected callback. It re-runs the
// sweep because a clean session starts with no subscriptions.
func (r *Relay) HandleConnected() {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if !r.started || r.closed {
		return
	}

	r.setState(StateConnected)
	r.logger.Info("broker connection established, resubscribing")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.sweep(r.ctx); err != nil {
			r.logger.Error("resubscribe sweep failed", "error", err)
		}
	}()
}

// HandleDisconnected is the transport's connection-lost callback.
func (r *Relay) HandleDisconnected(err error) {
	r.closeMu.RLock()
	closed := r.closed
	r.closeMu.RUnlock()
	if closed {
		return
	}

	r.setState(StateDegraded)
	r.router.Reset()
	r.metrics.setSubscriptions(0)
	r.logger.Warn("broker connection lost, relay degraded", "error", err)
}

// Track subscribes a newly observed identity without waiting for the next
// sweep. Invalid identities are rejected with mqtt.ErrInvalidIdentity.
func (r *Relay) Track(identity string) error {
	r.sweepMu.Lock()
	defer r.sweepMu.Unlock()

	if _, err := r.router.TopicsFor(identity); err != nil {
		return err
	}
	r.subscribeIdentity(identity)
	r.metrics.setSubscriptions(r.router.Len())
	return nil
}

// State returns the current connection state.
func (r *Relay) State() State {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

// Subscriptions returns the number of subscribed topics.
func (r *Relay) Subscriptions() int {
	return r.router.Len()
}

func (r *Relay) setState(s State) {
	r.stateMu.Lock()
	prev := r.state
	r.state = s
	r.stateMu.Unlock()

	r.metrics.setState(s)
	if prev != s && prev != "" {
		r.logger.Debug("relay state changed", "from", prev, "to", s)
	}
}

// transitionState moves from one state to another only if the relay is
// still in from. It reports whether the transition happened.
func (r *Relay) transitionState(from, to State) bool {
	r.stateMu.Lock()
	if r.state != from {
		r.stateMu.Unlock()
		return false
	}
	r.state = to
	r.stateMu.Unlock()

	r.metrics.setState(to)
	r.logger.Debug("relay state changed", "from", from, "to", to)
	return true
}

// reconcileLoop sweeps on every tick while the broker link is up.
//
// Connect and connection-lost callbacks run on separate goroutines and can
// arrive out of order, leaving the relay degraded on a live link. The loop
// trusts the transport's link state over the last callback and promotes the
// relay back to connected when they disagree.
func (r *Relay) reconcileLoop() {
	ticker := time.NewTicker(r.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

func (r *Relay) reconcile() {
	if !r.transport.IsConnected() {
		return
	}
	if state := r.State(); state != StateConnected {
		r.logger.Info("broker link is up, recovering relay", "state", state)
		r.setState(StateConnected)
	}
	if err := r.sweep(r.ctx); err != nil {
		r.logger.Error("reconciliation sweep failed", "error", err)
	}
}

// sweep subscribes every unmarked topic of every registered identity.
// It fails only when the identities cannot be listed.
func (r *Relay) sweep(ctx context.Context) error {
	r.sweepMu.Lock()
	defer r.sweepMu.Unlock()

	ids, err := r.identities.Identities(ctx)
	if err != nil {
		return fmt.Errorf("listing identities: %w", err)
	}

	added := 0
	for _, id := range ids {
		added += r.subscribeIdentity(id)
	}

	n := r.router.Len()
	r.metrics.setSubscriptions(n)
	if added > 0 {
		r.logger.Info("subscribed lock topics", "added", added, "total", n, "identities", len(ids))
	}
	return nil
}

// subscribeIdentity subscribes identity's unmarked topics and returns how
// many were added. Failed topics stay unmarked for the next sweep.
// Callers hold sweepMu.
func (r *Relay) subscribeIdentity(identity string) int {
	topics, err := r.router.TopicsFor(identity)
	if err != nil {
		r.logger.Warn("skipping identity", "identity", identity, "error", err)
		return 0
	}

	gen := r.router.Generation()
	added := 0
	for _, topic := range topics {
		if r.router.AlreadySubscribed(topic) {
			continue
		}
		if err := r.transport.Subscribe(topic, r.transport.QoS(), r.HandleMessage); err != nil {
			r.logger.Warn("subscribe failed, will retry", "topic", topic, "error", err)
			continue
		}
		if r.router.markIn(gen, topic) {
			added++
		}
	}
	return added
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
