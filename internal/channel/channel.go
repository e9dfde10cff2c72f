// Package channel owns the realtime WebSocket for one match session. It sends
// the init handshake on every open, decodes inbound frames into protocol
// messages, filters outbound messages by role, and reconnects within a
// bounded retry budget.
package channel

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/rally/internal/core"
	"github.com/vovakirdan/rally/internal/protocol"
)

var (
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("channel: closed")
	// ErrNotPermitted is returned when the role may not send a message type.
	ErrNotPermitted = errors.New("channel: message type not permitted for role")
	// ErrNotConnected is returned when no socket is open.
	ErrNotConnected = errors.New("channel: not connected")
)

// User-facing texts.
const (
	MsgReconnecting  = "Connection lost. Reconnecting..."
	MsgReturnToLobby = "Connection lost. Please return to the lobby."
	MsgTransport     = "Connection error."
)

const (
	writeTimeout = 5 * time.Second
	eventBuffer  = 256
)

// Filter decides which outbound message types may be sent.
type Filter interface {
	Permits(t protocol.Type) bool
}

// Options configures a Channel.
type Options struct {
	URL    string
	Init   protocol.Init
	Filter Filter
	Retry  RetryPolicy
	Dialer Dialer
	Clock  core.Clock
	Logger *log.Logger

	// Terminal reports whether the match has ended; no reconnect is
	// attempted after that.
	Terminal func() bool
}

// Channel is one match's realtime connection.
type Channel struct {
	opts      Options
	logger    *log.Logger
	reconnect *Reconnector

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	conn   Conn
	connID string
	state  State
	closed bool

	writeMu sync.Mutex

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a channel. Call Start to open the socket.
func New(opts Options) *Channel {
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer{}
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		opts:   opts,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		state:  StateConnecting,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	c.reconnect = NewReconnector(opts.Retry, opts.Clock, func() { go c.dial() })
	return c
}

// Events delivers state changes, inbound messages and notices.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Done is closed by Close.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ConnID identifies the current socket in logs. Empty before the first open.
func (c *Channel) ConnID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connID
}

// Reconnector exposes the retry state machine for inspection.
func (c *Channel) Reconnector() *Reconnector {
	return c.reconnect
}

// Start opens the socket in the background.
func (c *Channel) Start() {
	c.emit(StateChanged{State: StateConnecting})
	go c.dial()
}

func (c *Channel) dial() {
	connID := uuid.NewString()
	logger := c.logger.With("conn", connID)
	logger.Debug("dialing", "url", c.opts.URL)

	conn, err := c.opts.Dialer.Dial(c.ctx, c.opts.URL)
	if err != nil {
		if c.isClosed() {
			return
		}
		logger.Warn("dial failed", "err", err)
		c.emit(Notice{Message: MsgTransport})
		c.lost(nil, err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close() //nolint:errcheck
		return
	}
	c.conn = conn
	c.connID = connID
	c.state = StateConnected
	c.mu.Unlock()

	c.reconnect.Connected()
	logger.Info("connected")

	if err := c.write(conn, c.opts.Init); err != nil {
		logger.Warn("init handshake failed", "err", err)
	}
	c.emit(StateChanged{State: StateConnected})

	go c.readLoop(conn, logger)
}

func (c *Channel) readLoop(conn Conn, logger *log.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.lost(conn, err)
			return
		}

		env, err := protocol.Decode(data)
		if err != nil {
			logger.Warn("dropping message", "type", env.Type, "err", err)
			continue
		}
		c.emit(Received{Envelope: env})
	}
}

// lost handles the end of conn. A nil conn means a failed dial.
func (c *Channel) lost(conn Conn, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if conn != nil {
		if c.conn != conn {
			c.mu.Unlock()
			return
		}
		c.conn = nil
	}
	c.mu.Unlock()

	logger := c.logger.With("err", err)

	if conn != nil && !isClean(err) {
		c.emit(Notice{Message: MsgTransport})
	}

	if isClean(err) || (c.opts.Terminal != nil && c.opts.Terminal()) {
		logger.Info("connection closed")
		c.setState(StateDisconnected, "")
		return
	}

	switch c.reconnect.Lost() {
	case Scheduled:
		logger.Info("reconnect scheduled", "attempt", c.reconnect.Attempts())
		c.setState(StateReconnecting, MsgReconnecting)
	case AlreadyPending:
		logger.Debug("reconnect already pending")
	case Exhausted:
		logger.Warn("reconnect budget exhausted")
		c.setState(StateDisconnected, MsgReturnToLobby)
	case Stopped:
	}
}

func (c *Channel) setState(s State, msg string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	c.emit(StateChanged{State: s, Message: msg})
}

// Send writes one message if the role permits it and a socket is open.
func (c *Channel) Send(msg protocol.Message) error {
	if msg == nil {
		return protocol.ErrMalformed
	}
	if c.opts.Filter != nil && !c.opts.Filter.Permits(msg.MessageType()) {
		return ErrNotPermitted
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	return c.write(conn, msg)
}

func (c *Channel) write(conn Conn, msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears the channel down: cancels any reconnect timer, closes the
// socket and rejects further sends. Safe to call more than once.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.state = StateDisconnected
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()

		c.reconnect.Stop()
		c.cancel()

		if conn != nil {
			c.writeMu.Lock()
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)) //nolint:errcheck
			c.writeMu.Unlock()
			err = conn.Close()
		}
		close(c.done)
		c.logger.Debug("channel closed")
	})
	return err
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Channel) emit(ev Event) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.events <- ev:
	case <-c.done:
	}
}
