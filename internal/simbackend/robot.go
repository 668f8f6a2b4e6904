// Package simbackend is a deterministic, in-process simulation of a legged
// robot. It implements session.Backend.
package simbackend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/value"
)

// Supported actions.
const (
	ActionStand        = "stand"
	ActionSit          = "sit"
	ActionWalk         = "walk"
	ActionTurnLeft     = "turn_left"
	ActionTurnRight    = "turn_right"
	ActionLiftLeg      = "lift_leg"
	ActionLiftRightLeg = "lift_right_leg"
	ActionWave         = "wave"
	ActionStop         = "stop"
)

// Postures.
const (
	PostureStanding = "standing"
	PostureSitting  = "sitting"
)

var (
	ErrNotConnected    = errors.New("robot is not connected")
	ErrUnknownAction   = errors.New("unknown action")
	ErrBatteryDepleted = errors.New("battery depleted")
)

// State is the simulated physical state.
type State struct {
	Model    string
	Posture  string
	X, Y     float64
	Heading  float64 // degrees, counter-clockwise from the x axis
	Velocity float64
	Obstacle float64 // distance ahead in meters
	Battery  float64 // percent
	Lifted   []bool
	Odometer float64
}

// Robot is a simulated robot.
type Robot struct {
	model     Model
	state     State
	connected bool

	obstacle  float64
	timeScale float64
	frames    []value.Record
	reads     int
	outcomes  map[string]value.Value
	failures  map[string]error
}

// Option configures a Robot.
type Option func(*Robot)

// WithObstacle places an obstacle the given distance ahead of the start pose.
func WithObstacle(meters float64) Option {
	return func(r *Robot) { r.obstacle = meters }
}

// WithTimeScale multiplies the nominal action durations. Zero makes actions
// instant.
func WithTimeScale(scale float64) Option {
	return func(r *Robot) { r.timeScale = max(scale, 0) }
}

// WithFrames replaces the computed sensor snapshots with frames, played back in
// order. The last frame repeats once the frames run out.
func WithFrames(frames ...value.Record) Option {
	return func(r *Robot) { r.frames = frames }
}

// WithOutcome makes action return result instead of being simulated.
func WithOutcome(action string, result value.Value) Option {
	return func(r *Robot) { r.outcomes[action] = result }
}

// WithFailure makes action fail with err.
func WithFailure(action string, err error) Option {
	return func(r *Robot) { r.failures[action] = err }
}

// New creates a disconnected robot.
func New(opts ...Option) *Robot {
	r := &Robot{
		obstacle: 2,
		outcomes: make(map[string]value.Value),
		failures: make(map[string]error),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ session.Backend = (*Robot)(nil)

// Connect resets the robot to the start pose of the described model.
func (r *Robot) Connect(ctx context.Context, desc session.Descriptor) error {
	m, err := LookupModel(desc.Model)
	if err != nil {
		return err
	}
	r.model = m
	r.state = State{
		Model:    m.Name,
		Posture:  PostureStanding,
		Obstacle: r.obstacle,
		Battery:  100,
		Lifted:   make([]bool, m.Legs),
	}
	r.reads = 0
	r.connected = true
	ctxlog.FromContext(ctx).Debug("Simulated robot connected.", "model", m.Name)
	return nil
}

// State returns a copy of the simulated state.
func (r *Robot) State() State {
	s := r.state
	s.Lifted = append([]bool(nil), r.state.Lifted...)
	return s
}

// Execute simulates action. Actions that cannot be carried out in the current
// state report false; unknown actions and a flat battery are errors.
func (r *Robot) Execute(ctx context.Context, action string, args value.Record) (value.Value, error) {
	if !r.connected {
		return value.Null(), ErrNotConnected
	}
	if err, ok := r.failures[action]; ok {
		return value.Null(), err
	}
	if v, ok := r.outcomes[action]; ok {
		return v, nil
	}
	if _, ok := durations[action]; !ok {
		return value.Null(), fmt.Errorf("%w '%s'", ErrUnknownAction, action)
	}
	if r.state.Battery <= 0 {
		return value.Null(), ErrBatteryDepleted
	}
	if err := r.wait(ctx, action); err != nil {
		return value.Null(), err
	}
	r.state.Battery = math.Max(0, r.state.Battery-r.model.Drain)
	return value.Bool(r.apply(action, args)), nil
}

func (r *Robot) wait(ctx context.Context, action string) error {
	d := time.Duration(float64(durations[action]) * r.timeScale)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Robot) apply(action string, args value.Record) bool {
	s := &r.state
	switch action {
	case ActionStand:
		s.Posture = PostureStanding
		s.Velocity = 0
	case ActionSit:
		s.Posture = PostureSitting
		s.Velocity = 0
		clear(s.Lifted)
	case ActionWalk:
		if s.Posture != PostureStanding || anyLifted(s.Lifted) {
			return false
		}
		steps := 1.0
		if v := args.Get("steps"); !v.IsNull() {
			steps = v.AsNumber()
		}
		dist := steps * r.model.Stride
		if v := args.Get("distance"); !v.IsNull() {
			dist = v.AsNumber()
		}
		if dist > s.Obstacle {
			s.Velocity = 0
			return false
		}
		rad := s.Heading * math.Pi / 180
		s.X += dist * math.Cos(rad)
		s.Y += dist * math.Sin(rad)
		s.Obstacle -= dist
		s.Odometer += dist
		s.Velocity = dist / durations[ActionWalk].Seconds()
	case ActionTurnLeft, ActionTurnRight:
		if s.Posture != PostureStanding {
			return false
		}
		angle := r.model.TurnDegrees
		if v := args.Get("angle"); !v.IsNull() {
			angle = v.AsNumber()
		}
		if action == ActionTurnRight {
			angle = -angle
		}
		s.Heading = math.Mod(s.Heading+angle+360, 360)
		// Turning away from an obstacle clears the path ahead.
		s.Obstacle = r.obstacle
		s.Velocity = 0
	case ActionLiftLeg, ActionLiftRightLeg:
		if s.Posture != PostureStanding {
			return false
		}
		leg := legIndex(args.Get("leg"))
		if action == ActionLiftRightLeg {
			leg = 0
		}
		if leg < 0 || leg >= len(s.Lifted) {
			return false
		}
		s.Lifted[leg] = true
	case ActionWave:
		if !r.model.CanWave || s.Posture != PostureStanding {
			return false
		}
	case ActionStop:
		s.Velocity = 0
		clear(s.Lifted)
	}
	return true
}

// legIndex maps "right"/"left" or a number onto a leg index. Right is 0.
func legIndex(v value.Value) int {
	switch v.AsText() {
	case "", "right":
		return 0
	case "left":
		return 1
	}
	return int(v.AsNumber())
}

func anyLifted(legs []bool) bool {
	for _, l := range legs {
		if l {
			return true
		}
	}
	return false
}

// Sense returns the sensor snapshot of the current state, or the next scripted
// frame.
func (r *Robot) Sense(context.Context) (value.Record, error) {
	if !r.connected {
		return nil, ErrNotConnected
	}
	if len(r.frames) > 0 {
		frame := r.frames[min(r.reads, len(r.frames)-1)]
		r.reads++
		return frame.Clone(), nil
	}
	s := r.state
	blocked := s.Obstacle < r.model.Stride
	return value.Record{
		"imu": value.RecordOf(value.Record{
			"value": value.Number(s.Heading),
			"yaw":   value.Number(s.Heading),
			"pitch": value.Number(0),
			"roll":  value.Number(0),
		}),
		"camera": value.RecordOf(value.Record{
			"value":   value.Bool(blocked),
			"objects": value.Int(boolInt(s.Obstacle < 2*r.model.Stride)),
		}),
		"ultrasonic": value.Number(round(s.Obstacle)),
		"infrared":   value.Bool(blocked),
		"odometry": value.RecordOf(value.Record{
			"value":    value.Number(round(s.Odometer)),
			"x":        value.Number(round(s.X)),
			"y":        value.Number(round(s.Y)),
			"heading":  value.Number(s.Heading),
			"velocity": value.Number(round(s.Velocity)),
		}),
		"battery": value.Number(round(s.Battery)),
		"posture": value.Text(s.Posture),
		"model":   value.Text(s.Model),
	}, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// round keeps snapshots stable against floating point noise.
func round(f float64) float64 { return math.Round(f*1e6) / 1e6 }

// Halt stops motion and lowers every lifted leg.
func (r *Robot) Halt(context.Context) error {
	if !r.connected {
		return nil
	}
	r.state.Velocity = 0
	clear(r.state.Lifted)
	return nil
}

// Close disconnects the robot.
func (r *Robot) Close() error {
	r.connected = false
	return nil
}
