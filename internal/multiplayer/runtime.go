// Package multiplayer runs one match on the client: it binds the realtime
// channel, the match state machine, the authority policy and a mode
// controller together in a single frame loop.
package multiplayer

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/rally/internal/authority"
	"github.com/vovakirdan/rally/internal/channel"
	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/match"
	"github.com/vovakirdan/rally/internal/protocol"
)

// Transport is the realtime connection a runtime drives. *channel.Channel
// implements it.
type Transport interface {
	Start()
	Events() <-chan channel.Event
	Send(msg protocol.Message) error
	Close() error
}

var _ Transport = (*channel.Channel)(nil)

// Gate tells a controller which side effects are allowed this frame.
type Gate struct {
	Live     bool // channel connected, or local play
	Playing  bool // match in progress
	Degraded bool // opponent disconnected and not yet settled
}

// Controller is the mode-specific part of a match.
type Controller interface {
	// Step advances one frame and returns the messages to send.
	Step(dt time.Duration, in core.MultiInputFrame, gate Gate) []protocol.Message

	// Apply mirrors an inbound message into the controller's view.
	Apply(env protocol.Envelope)

	// Snapshot returns the current frame for rendering.
	Snapshot() GameSnapshot
}

// Options configures a Runtime.
type Options struct {
	Mode       string
	Machine    *match.Machine
	Policy     authority.Policy
	Controller Controller
	Transport  Transport // nil for local play
	Saver      MatchResultSaver
	Clock      core.Clock
	Logger     *log.Logger
	FPS        int
	Hold       time.Duration
}

// Runtime owns one match. All state is touched only by the Run goroutine.
type Runtime struct {
	mode      string
	machine   *match.Machine
	policy    authority.Policy
	ctrl      Controller
	transport Transport
	saver     MatchResultSaver
	clock     core.Clock
	logger    *log.Logger
	fps       int

	held   *heldInput
	inputs chan core.MultiInputFrame
	out    *Outbox

	conn      channel.State
	notice    string
	last      time.Time
	startedAt time.Time
	tick      uint64
	ended     bool

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a runtime. Call Run to start it.
func New(opts Options) *Runtime {
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	conn := channel.StateConnecting
	if opts.Transport == nil {
		conn = channel.StateConnected
	}
	return &Runtime{
		mode:      opts.Mode,
		machine:   opts.Machine,
		policy:    opts.Policy,
		ctrl:      opts.Controller,
		transport: opts.Transport,
		saver:     opts.Saver,
		clock:     opts.Clock,
		logger:    opts.Logger,
		fps:       opts.FPS,
		held:      newHeldInput(opts.Hold),
		inputs:    make(chan core.MultiInputFrame, 64),
		out:       NewOutbox(64),
		conn:      conn,
		done:      make(chan struct{}),
	}
}

// Events returns the stream of frames and results for the presentation layer.
func (r *Runtime) Events() <-chan Event {
	return r.out.Events()
}

// Done is closed once Run has returned and everything is released.
func (r *Runtime) Done() <-chan struct{} {
	return r.out.Done()
}

// SendInput hands a key or pointer event to the frame loop.
// Non-blocking, uses a buffered channel.
func (r *Runtime) SendInput(in core.MultiInputFrame) {
	select {
	case r.inputs <- in:
	default:
		// Channel full, drop input (rare under normal conditions)
	}
}

// Run drives the match until ctx is cancelled or Stop is called. Teardown
// closes the transport exactly once.
func (r *Runtime) Run(ctx context.Context) error {
	defer r.teardown()

	var events <-chan channel.Event
	if r.transport != nil {
		events = r.transport.Events()
		r.transport.Start()
	} else {
		r.machine.Start()
	}

	ticker := time.NewTicker(time.Second / time.Duration(r.fps))
	defer ticker.Stop()

	r.last = r.clock.Now()
	for {
		select {
		case <-ticker.C:
			r.frame(r.clock.Now())

		case ev := <-events:
			r.handle(ev, r.clock.Now())

		case in := <-r.inputs:
			r.held.merge(in, r.clock.Now())

		case <-ctx.Done():
			return nil

		case <-r.done:
			return nil
		}
	}
}

// Stop ends Run. Safe to call multiple times.
func (r *Runtime) Stop() {
	r.doneOnce.Do(func() {
		close(r.done)
	})
}

func (r *Runtime) teardown() {
	if r.transport != nil {
		if err := r.transport.Close(); err != nil {
			r.logger.Debug("transport close", "err", err)
		}
	}
	r.logger.Debug("match runtime stopped", "mode", r.mode, "ticks", r.tick)
	r.out.Close()
}

// handle applies one channel event.
func (r *Runtime) handle(ev channel.Event, now time.Time) {
	switch ev := ev.(type) {
	case channel.StateChanged:
		r.conn = ev.State
		r.notice = ev.Message
		r.logger.Info("connection", "state", ev.State)

	case channel.Notice:
		r.notice = ev.Message

	case channel.Received:
		r.receive(ev.Envelope, now)
	}
}

func (r *Runtime) receive(env protocol.Envelope, now time.Time) {
	id := r.machine.Identity()
	if env.GameID != "" && id.GameID != "" && env.GameID != id.GameID {
		r.logger.Debug("ignoring message for another game", "type", env.Type, "game", env.GameID)
		return
	}

	wasTerminal := r.machine.Terminal()
	changed := r.machine.Apply(env, now)
	if !wasTerminal {
		r.ctrl.Apply(env)
	}
	if wasTerminal && changed {
		if res, ok := r.machine.Result(); ok {
			r.out.Send(MatchEndedEvent{Reason: r.endReason(), Result: res})
		}
	}
	r.checkEnded(now)
}

// frame runs one tick of the match.
func (r *Runtime) frame(now time.Time) {
	dt := now.Sub(r.last)
	r.last = now
	r.tick++

	r.machine.Advance(now)
	if r.startedAt.IsZero() && r.machine.State() == match.StateInProgress {
		r.startedAt = now
	}

	gate := Gate{
		Live:     r.conn == channel.StateConnected,
		Playing:  r.machine.State() == match.StateInProgress,
		Degraded: r.machine.Degraded(),
	}
	r.send(r.ctrl.Step(dt, r.held.frame(now), gate)...)
	for _, u := range r.machine.Drain() {
		r.send(r.policy.Announce(u, r.machine.NameOf)...)
	}

	r.checkEnded(now)
	r.out.Send(FrameEvent{Tick: r.tick, Status: r.status(), Snapshot: r.ctrl.Snapshot()})
}

func (r *Runtime) send(msgs ...protocol.Message) {
	if r.transport == nil {
		return
	}
	for _, m := range msgs {
		err := r.transport.Send(m)
		switch {
		case err == nil:
		case errors.Is(err, channel.ErrNotConnected):
			r.logger.Debug("not connected, dropping", "type", m.MessageType())
		default:
			r.logger.Warn("send failed", "type", m.MessageType(), "err", err)
		}
	}
}

// checkEnded emits the end of the match and stores it, once.
func (r *Runtime) checkEnded(now time.Time) {
	if r.ended || !r.machine.Terminal() {
		return
	}
	r.ended = true

	res, _ := r.machine.Result()
	reason := r.endReason()
	r.logger.Info("match over", "winner", res.Winner, "reason", reason)
	r.out.Send(MatchEndedEvent{Reason: reason, Result: res})

	if r.saver == nil {
		return
	}
	var played time.Duration
	if !r.startedAt.IsZero() {
		played = now.Sub(r.startedAt)
	}
	if err := r.saver.SaveMatchResult(resultData(r.status(), res, reason, played)); err != nil {
		r.logger.Warn("cannot save match result", "err", err)
	}
}

func (r *Runtime) endReason() MatchEndReason {
	if r.machine.State() == match.StateCompletedForfeit {
		return MatchEndReasonForfeit
	}
	return MatchEndReasonCompleted
}

func (r *Runtime) status() Status {
	s := Status{
		Mode:           r.mode,
		Role:           r.policy.Role(),
		Identity:       r.machine.Identity(),
		Local:          r.transport == nil,
		Connection:     r.conn,
		Scoreboard:     r.policy.Mode() == authority.ModePong,
		Match:          r.machine.State(),
		Points:         r.machine.Points(),
		Sets:           r.machine.Sets(),
		Degraded:       r.machine.Degraded(),
		ForfeitPending: r.machine.ForfeitPending(),
		Message:        r.machine.Message(),
	}
	if res, ok := r.machine.Result(); ok {
		s.Result = &res
	}
	if r.notice != "" && !r.machine.Terminal() {
		s.Message = r.notice
	}
	return s
}
