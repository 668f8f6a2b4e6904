package simbackend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connected(t *testing.T, model string, opts ...Option) *Robot {
	t.Helper()
	r := New(opts...)
	require.NoError(t, r.Connect(context.Background(), session.Descriptor{Model: model}))
	return r
}

func do(t *testing.T, r *Robot, action string, args value.Record) bool {
	t.Helper()
	res, err := r.Execute(context.Background(), action, args)
	require.NoError(t, err, action)
	return res.AsBool()
}

func TestLookupModel(t *testing.T) {
	m, err := LookupModel("")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, m.Name)

	m, err = LookupModel("H1")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Legs)

	_, err = LookupModel("spot")
	assert.ErrorContains(t, err, "known: generic, go2, h1")
	assert.Equal(t, []string{"generic", "go2", "h1"}, Models())
}

func TestExecute_RequiresConnection(t *testing.T) {
	r := New()
	_, err := r.Execute(context.Background(), ActionStand, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = r.Sense(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, r.Connect(context.Background(), session.Descriptor{}))
	require.NoError(t, r.Close())
	_, err = r.Execute(context.Background(), ActionStand, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestWalk(t *testing.T) {
	r := connected(t, "go2")

	assert.True(t, do(t, r, ActionWalk, value.Record{"steps": value.Number(2)}))
	s := r.State()
	assert.InDelta(t, 0.5, s.X, 1e-9)
	assert.InDelta(t, 1.5, s.Obstacle, 1e-9)

	snap, err := r.Sense(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.5, snap.Get("ultrasonic").AsNumber())
	assert.Equal(t, 0.5, snap.Get("odometry").AsRecord().Get("x").AsNumber())
	assert.Equal(t, 0.5, snap.Get("odometry").AsNumber())
	assert.False(t, snap.Get("infrared").AsBool())

	assert.False(t, do(t, r, ActionWalk, value.Record{"distance": value.Number(3)}), "obstacle ahead")
	assert.InDelta(t, 0.5, r.State().X, 1e-9)
}

func TestWalk_NeedsStandingOnAllLegs(t *testing.T) {
	r := connected(t, "go2")

	assert.True(t, do(t, r, ActionSit, nil))
	assert.False(t, do(t, r, ActionWalk, nil))
	assert.True(t, do(t, r, ActionStand, nil))

	assert.True(t, do(t, r, ActionLiftRightLeg, nil))
	assert.Equal(t, []bool{true, false, false, false}, r.State().Lifted)
	assert.False(t, do(t, r, ActionWalk, nil))

	assert.True(t, do(t, r, ActionStop, nil))
	assert.True(t, do(t, r, ActionWalk, nil))
}

func TestTurn(t *testing.T) {
	r := connected(t, "go2", WithObstacle(0.1))
	snap, err := r.Sense(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Get("infrared").AsBool())
	assert.True(t, snap.Get("camera").AsBool())

	assert.True(t, do(t, r, ActionTurnLeft, nil))
	assert.Equal(t, 30.0, r.State().Heading)
	assert.True(t, do(t, r, ActionTurnRight, value.Record{"angle": value.Number(90)}))
	assert.Equal(t, 300.0, r.State().Heading)

	assert.True(t, do(t, r, ActionWalk, value.Record{"distance": value.Number(0.05)}))
	s := r.State()
	assert.InDelta(t, 0.025, s.X, 1e-9)
	assert.InDelta(t, -0.0433013, s.Y, 1e-6)
}

func TestLiftLeg(t *testing.T) {
	r := connected(t, "h1")
	assert.True(t, do(t, r, ActionLiftLeg, value.Record{"leg": value.Text("left")}))
	assert.Equal(t, []bool{false, true}, r.State().Lifted)
	assert.False(t, do(t, r, ActionLiftLeg, value.Record{"leg": value.Number(3)}))

	require.NoError(t, r.Halt(context.Background()))
	assert.Equal(t, []bool{false, false}, r.State().Lifted)
}

func TestWave(t *testing.T) {
	assert.False(t, do(t, connected(t, "go2"), ActionWave, nil))
	assert.True(t, do(t, connected(t, "h1"), ActionWave, nil))
}

func TestExecute_UnknownAction(t *testing.T) {
	_, err := connected(t, "generic").Execute(context.Background(), "backflip", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.ErrorContains(t, err, "backflip")
}

func TestScriptedOutcomes(t *testing.T) {
	jam := errors.New("jammed")
	r := connected(t, "go2",
		WithOutcome(ActionWalk, value.Text("ok")),
		WithFailure(ActionSit, jam),
		WithFrames(value.Record{"ultrasonic": value.Number(9)}, value.Record{"ultrasonic": value.Number(1)}),
	)

	res, err := r.Execute(context.Background(), ActionWalk, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.AsText())
	_, err = r.Execute(context.Background(), ActionSit, nil)
	assert.ErrorIs(t, err, jam)

	var readings []float64
	for range 3 {
		snap, err := r.Sense(context.Background())
		require.NoError(t, err)
		readings = append(readings, snap.Get("ultrasonic").AsNumber())
	}
	assert.Equal(t, []float64{9, 1, 1}, readings)
}

func TestTimeScale(t *testing.T) {
	r := connected(t, "go2", WithTimeScale(1))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Execute(ctx, ActionStand, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 100.0, r.State().Battery, "an interrupted action costs nothing")
}

func TestBatteryDepletes(t *testing.T) {
	r := connected(t, "go2")
	for range 200 {
		do(t, r, ActionStand, nil)
	}
	assert.Equal(t, 0.0, r.State().Battery)
	_, err := r.Execute(context.Background(), ActionStand, nil)
	assert.ErrorIs(t, err, ErrBatteryDepleted)
}
