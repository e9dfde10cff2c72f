// Package physics simulates the Pong ball against the paddles, the table and
// the net. Only the authority peer steps the simulation; a spectator engine
// just mirrors positions it is given.
package physics

import (
	"math"
	"math/rand"
	"time"

	"github.com/vovakirdan/rally/internal/config"
	"github.com/vovakirdan/rally/internal/core"
)

// maxStep caps a single tick so a stalled frame cannot tunnel the ball
// through the table.
const maxStep = 100 * time.Millisecond

// ScoreSink receives points won during a tick. The match state machine
// implements it; the engine never holds scores.
type ScoreSink interface {
	AwardPoint(side core.Side)
}

// StepResult describes what happened during one tick.
type StepResult struct {
	Advanced bool      // false for spectators and zero-length ticks
	Hit      core.Side // seat whose paddle struck the ball
	Bounce   core.Side // half the ball bounced on
	NetHit   bool
	Scorer   core.Side // side awarded a point, even when scoring is suppressed
	Reset    bool      // ball was respawned
}

// Engine owns every GameObject of one Pong table.
type Engine struct {
	cfg  config.PhysicsConfig
	role core.Role
	rng  *rand.Rand

	ball    *GameObject
	seats   []core.Side // paddle order, player half first
	paddles map[core.Side]*GameObject
	table   *GameObject
	net     *GameObject

	rally     Rally
	simTime   time.Duration
	cooldowns map[pairKey]time.Duration
	suppress  bool
}

// New builds a table with both paddles and a ball served toward the local
// player.
func New(cfg config.PhysicsConfig, role core.Role, seed int64) *Engine {
	return build(cfg, role, seed, []core.Side{core.SidePlayer, core.SideOpponent})
}

// NewDoubles builds a local table with two paddles on each half. Partners
// split the width of their half between them.
func NewDoubles(cfg config.PhysicsConfig, seed int64) *Engine {
	return build(cfg, core.RoleAuthority, seed, []core.Side{
		core.SidePlayer, core.SidePlayerPartner,
		core.SideOpponent, core.SideOpponentPartner,
	})
}

func build(cfg config.PhysicsConfig, role core.Role, seed int64, seats []core.Side) *Engine {
	e := &Engine{
		cfg:       cfg,
		role:      role,
		rng:       rand.New(rand.NewSource(seed)),
		seats:     seats,
		paddles:   make(map[core.Side]*GameObject, len(seats)),
		cooldowns: make(map[pairKey]time.Duration),
	}

	t := cfg.Table
	e.table = newObject(KindTable,
		core.V3(0, t.Height-t.Thickness/2, 0),
		core.V3(t.HalfWidth, t.Thickness/2, t.HalfLength), 0)
	e.net = newObject(KindNet,
		core.V3(0, t.Height+cfg.Net.Height/2, 0),
		core.V3(t.HalfWidth, cfg.Net.Height/2, cfg.Net.Thickness/2), 0)

	p := cfg.Paddle
	for _, seat := range seats {
		lo, hi := e.lane(seat)
		paddle := newObject(KindPaddle,
			core.V3((lo+hi)/2, (p.MinY+p.MaxY)/2, seat.Sign()*p.Distance),
			core.V3(p.Width/2, p.Height/2, p.Depth/2), 0)
		paddle.Side = seat
		e.paddles[seat] = paddle
	}

	e.resetBall(core.SideOpponent)
	return e
}

// Role returns the role the engine was built for.
func (e *Engine) Role() core.Role {
	return e.role
}

// SuppressScoring stops points from reaching the sink. Used while the peer
// is degraded so the two sides cannot diverge on the score.
func (e *Engine) SuppressScoring(on bool) {
	e.suppress = on
}

// Rally returns the current rally state.
func (e *Engine) Rally() Rally {
	return e.rally
}

// Ball returns a copy of the ball body.
func (e *Engine) Ball() GameObject {
	return *e.ball
}

// Seats returns the seats that hold a paddle, player half first.
func (e *Engine) Seats() []core.Side {
	return append([]core.Side(nil), e.seats...)
}

// Paddle returns a copy of side's paddle.
func (e *Engine) Paddle(side core.Side) GameObject {
	if p, ok := e.paddles[side]; ok {
		return *p
	}
	return GameObject{}
}

// Step advances the simulation by dt. Spectator engines never advance.
func (e *Engine) Step(dt time.Duration, sink ScoreSink) StepResult {
	var res StepResult
	if e.role != core.RoleAuthority || dt <= 0 {
		return res
	}
	if dt > maxStep {
		dt = maxStep
	}
	res.Advanced = true
	e.simTime += dt
	secs := dt.Seconds()

	e.integrate(secs)
	if !e.ball.Position.IsFinite() || !e.ball.Velocity.IsFinite() {
		e.resetBall(e.serveFrom())
		res.Reset = true
		return res
	}

	if scorer := e.collide(&res); scorer != core.SideNone {
		e.score(scorer, sink, &res)
		return res
	}

	if crossed, out := e.outOfBounds(); out {
		e.score(OutOfBoundsScorer(e.rally, crossed), sink, &res)
	}
	return res
}

func (e *Engine) integrate(secs float64) {
	for _, p := range e.paddles {
		p.Position = p.Position.Add(p.Velocity.Scale(secs))
		e.clampPaddle(p)
	}

	b := e.ball
	b.Velocity.Y += e.cfg.Gravity * secs
	b.Velocity = b.Velocity.Scale(e.cfg.Drag)
	b.Position = b.Position.Add(b.Velocity.Scale(secs))

	if b.Position.Y < e.cfg.MinHeight {
		b.Velocity.Y = -b.Velocity.Y * e.cfg.Restitution
		b.Position.Y = e.cfg.MinHeight
	}
}

// collide applies at most one collision response, in priority order. It
// returns the scorer when a double bounce ends the point.
func (e *Engine) collide(res *StepResult) core.Side {
	ballBox := e.ball.Bounds()

	for _, seat := range e.seats {
		paddle := e.paddles[seat]
		if e.rally.LastHitBy == seat.Team() || !ballBox.Intersects(paddle.Bounds()) {
			continue
		}
		if !e.ready(paddle) {
			continue
		}
		e.hitPaddle(paddle)
		res.Hit = seat
		return core.SideNone
	}

	if ballBox.Intersects(e.table.Bounds()) && e.ready(e.table) {
		b := e.ball
		b.Velocity.Y = math.Abs(b.Velocity.Y)
		half := core.SideOfZ(b.Position.Z)
		res.Bounce = half
		if e.rally.bounce(half) >= 2 {
			return half.Other()
		}
		return core.SideNone
	}

	if ballBox.Intersects(e.net.Bounds()) && e.ready(e.net) {
		b := e.ball
		b.Velocity.Z *= -e.cfg.Net.Damping
		b.Velocity.X += (e.rng.Float64() - 0.5) * e.cfg.Net.Jitter
		b.Velocity.Y *= 0.5
		res.NetHit = true
	}
	return core.SideNone
}

// ready consumes the cooldown for the ball/other pair if it has elapsed.
func (e *Engine) ready(other *GameObject) bool {
	key := keyOf(e.ball, other)
	if last, ok := e.cooldowns[key]; ok && e.simTime-last < e.cfg.CollisionCooldown {
		return false
	}
	e.cooldowns[key] = e.simTime
	return true
}

// hitPaddle returns the ball toward the other half. Degenerate paddle or
// ball dimensions make the force a no-op; the hit still counts.
func (e *Engine) hitPaddle(paddle *GameObject) {
	b := e.ball
	e.rally.clearBounces()
	e.rally.LastHitBy = paddle.Side.Team()

	force, ok := e.hitForce(paddle)
	if !ok {
		return
	}
	b.Velocity = core.Vec3{}
	b.ApplyImpulse(force)
}

func (e *Engine) hitForce(paddle *GameObject) (core.Vec3, bool) {
	h := e.cfg.Hit
	width := paddle.Half.X * 2
	height := paddle.Half.Y * 2
	if width <= 0 || height <= 0 || e.ball.Mass <= 0 {
		return core.Vec3{}, false
	}

	box := paddle.Bounds()
	ratio := core.ClampF((e.ball.Position.X-box.Min.X)/width, 0, 1)
	strike := math.Max(e.ball.Position.Y-box.Min.Y, 0)
	lift := math.Log(strike/height + 1)

	force := core.V3(
		(ratio-0.5)*h.ForceX,
		lift*h.LogY+h.BaseY,
		-paddle.Side.Sign()*(lift*h.LogZ+h.BaseZ),
	)
	if !force.IsFinite() {
		return core.Vec3{}, false
	}
	return force, true
}

// outOfBounds reports which end the ball left through, if any.
func (e *Engine) outOfBounds() (core.Side, bool) {
	t := e.cfg.Table
	limitZ := t.HalfLength + t.OutMargin
	limitX := t.HalfWidth + t.OutMargin
	box := e.ball.Bounds()

	switch {
	case box.Max.Z > limitZ:
		return core.SidePlayer, true
	case box.Min.Z < -limitZ:
		return core.SideOpponent, true
	case box.Max.X > limitX || box.Min.X < -limitX:
		return core.SideOfZ(e.ball.Position.Z), true
	}
	return core.SideNone, false
}

func (e *Engine) score(scorer core.Side, sink ScoreSink, res *StepResult) {
	res.Scorer = scorer
	if !e.suppress && sink != nil {
		sink.AwardPoint(scorer)
	}
	e.resetBall(scorer)
	res.Reset = true
}

// serveFrom picks the serving side for a reset that follows no point.
func (e *Engine) serveFrom() core.Side {
	if e.rally.LastHitBy != core.SideNone {
		return e.rally.LastHitBy
	}
	return core.SideOpponent
}

// resetBall replaces the ball with a new body on scorer's half, moving
// toward the other half.
func (e *Engine) resetBall(scorer core.Side) {
	s := e.cfg.Serve
	r := e.cfg.Ball
	ball := newObject(KindBall,
		core.V3(0, s.Height, scorer.Sign()*s.OffsetZ),
		core.V3(r.Radius, r.Radius, r.Radius), r.Mass)
	ball.ApplyImpulse(core.V3(0, s.ImpulseY, -scorer.Sign()*s.ImpulseZ))

	e.ball = ball
	e.rally = Rally{LastHitBy: scorer}
	e.cooldowns = make(map[pairKey]time.Duration)
}

// lane is the X range a seat's paddle may cover. Seen from their own end,
// the first seat of a doubles half plays right and the partner left.
func (e *Engine) lane(seat core.Side) (lo, hi float64) {
	r := e.cfg.Paddle.MaxReachX
	if len(e.seats) <= 2 {
		return -r, r
	}
	switch seat {
	case core.SidePlayerPartner, core.SideOpponent:
		return -r, 0
	default:
		return 0, r
	}
}

func (e *Engine) clampPaddle(p *GameObject) {
	c := e.cfg.Paddle
	lo, hi := e.lane(p.Side)
	p.Position.X = core.ClampF(p.Position.X, lo, hi)
	p.Position.Y = core.ClampF(p.Position.Y, c.MinY, c.MaxY)
	p.Position.Z = p.Side.Sign() * c.Distance
}

// MovePaddle sets side's paddle velocity from a direction in [-1, 1] on each
// axis. The paddle moves on the next Step.
func (e *Engine) MovePaddle(side core.Side, dx, dy float64) {
	p, ok := e.paddles[side]
	if !ok {
		return
	}
	speed := e.cfg.Paddle.Speed
	p.Velocity = core.V3(core.ClampF(dx, -1, 1)*speed, core.ClampF(dy, -1, 1)*speed, 0)
}

// SetPaddleFromPointer positions side's paddle from a normalized pointer in
// [-1, 1]. The opponent sees the table from the other end, so their X is
// mirrored.
func (e *Engine) SetPaddleFromPointer(side core.Side, px, py float64) {
	p, ok := e.paddles[side]
	if !ok {
		return
	}
	c := e.cfg.Paddle
	px = core.ClampF(px, -1, 1)
	py = core.ClampF(py, -1, 1)
	if side.Team() == core.SideOpponent {
		px = -px
	}
	p.Position.X = px * c.MaxReachX
	p.Position.Y = c.MinY + (py+1)/2*(c.MaxY-c.MinY)
	e.clampPaddle(p)
}

// SetPaddle mirrors a paddle position received from the network.
func (e *Engine) SetPaddle(side core.Side, pos core.Vec3) {
	p, ok := e.paddles[side]
	if !ok || !pos.IsFinite() {
		return
	}
	p.Position = pos
	p.Velocity = core.Vec3{}
}

// SetBall mirrors a ball position received from the authority.
func (e *Engine) SetBall(pos core.Vec3) {
	if !pos.IsFinite() {
		return
	}
	e.ball.Position = pos
}

// Place moves the ball and sets its velocity directly. Used for replays and
// tests of specific situations.
func (e *Engine) Place(pos, vel core.Vec3, rally Rally) {
	e.ball.Position = pos
	e.ball.Velocity = vel
	e.rally = rally
}
