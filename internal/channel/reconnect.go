package channel

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/rally/internal/core"
)

// BackoffFunc returns the delay before the given attempt (1-based).
type BackoffFunc func(base time.Duration, attempt int) time.Duration

// FixedBackoff waits base before every attempt.
func FixedBackoff(base time.Duration, _ int) time.Duration {
	return base
}

// LinearBackoff waits base*attempt.
func LinearBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(attempt)
}

// ExponentialBackoff doubles the delay with each attempt.
func ExponentialBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		attempt = 16
	}
	return base << (attempt - 1)
}

// BackoffByName resolves a config name to a backoff function.
func BackoffByName(name string) (BackoffFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fixed":
		return FixedBackoff, nil
	case "linear":
		return LinearBackoff, nil
	case "exponential":
		return ExponentialBackoff, nil
	default:
		return nil, fmt.Errorf("channel: unknown backoff %q", name)
	}
}

// RetryPolicy bounds reconnection.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     BackoffFunc
}

// DefaultRetryPolicy is a single attempt after two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1, BaseDelay: 2 * time.Second, Backoff: FixedBackoff}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return p.BaseDelay
	}
	return p.Backoff(p.BaseDelay, attempt)
}

// Phase is the reconnector's position in
// Idle -> Waiting -> Attempting -> Connected | Exhausted.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseAttempting
	PhaseConnected
	PhaseExhausted
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaiting:
		return "waiting"
	case PhaseAttempting:
		return "attempting"
	case PhaseConnected:
		return "connected"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Decision is the reconnector's answer to a lost connection.
type Decision int

const (
	// Scheduled means a new attempt timer was armed.
	Scheduled Decision = iota
	// AlreadyPending means an attempt is already waiting; nothing new was armed.
	AlreadyPending
	// Exhausted means the attempt budget is spent.
	Exhausted
	// Stopped means the reconnector was torn down.
	Stopped
)

// Reconnector schedules reconnect attempts on a clock. At most one attempt
// timer is pending at any time. The attempt budget counts scheduled attempts
// and is restored by a successful connection.
type Reconnector struct {
	mu       sync.Mutex
	policy   RetryPolicy
	clock    core.Clock
	attempt  func()
	phase    Phase
	attempts int
	timer    core.Timer
	stopped  bool
}

// NewReconnector creates a reconnector that calls attempt when a timer fires.
func NewReconnector(policy RetryPolicy, clock core.Clock, attempt func()) *Reconnector {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Reconnector{policy: policy, clock: clock, attempt: attempt}
}

// Lost reports a connection loss that should be retried.
func (r *Reconnector) Lost() Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return Stopped
	}
	if r.phase == PhaseWaiting {
		return AlreadyPending
	}
	if r.attempts >= r.policy.MaxAttempts {
		r.phase = PhaseExhausted
		return Exhausted
	}

	r.attempts++
	r.phase = PhaseWaiting
	r.timer = r.clock.AfterFunc(r.policy.delay(r.attempts), r.fire)
	return Scheduled
}

func (r *Reconnector) fire() {
	r.mu.Lock()
	if r.stopped || r.phase != PhaseWaiting {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseAttempting
	r.timer = nil
	attempt := r.attempt
	r.mu.Unlock()

	if attempt != nil {
		attempt()
	}
}

// Connected marks a successful open and restores the budget.
func (r *Reconnector) Connected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.phase = PhaseConnected
	r.attempts = 0
}

// Stop cancels any pending timer. Safe to call more than once.
func (r *Reconnector) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Phase returns the current phase.
func (r *Reconnector) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Attempts returns how many attempts have been scheduled since the last
// successful connection.
func (r *Reconnector) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// Pending reports whether an attempt timer is armed.
func (r *Reconnector) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}
