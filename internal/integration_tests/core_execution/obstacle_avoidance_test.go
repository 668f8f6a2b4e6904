package integration_tests

import (
	"testing"

	"github.com/specialistvlad/robogrid/internal/engine"
	"github.com/specialistvlad/robogrid/internal/integration_tests"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const walkUntilBlocked = `
node "loop" {
  type = "while_loop"
}
node "step" {
  type   = "action_execution"
  params = { action = "walk" }
}
node "look" {
  type   = "sensor_input"
  params = { sensor_type = "ultrasonic", threshold = 0.5 }
}
node "turn" {
  type   = "action_execution"
  params = { action = "turn_left" }
}
connect {
  from = "loop.body"
  to   = "step.in"
}
connect {
  from = "step.out"
  to   = "look.in"
}
connect {
  from = "look.triggered"
  to   = "loop.condition"
}
connect {
  from = "loop.done"
  to   = "turn.in"
}
`

// Test for: a sensor read right after an action sees the effect of that action
func TestCoreExecution_WalksUntilObstacle(t *testing.T) {
	// --- Arrange ---
	h := integration_tests.NewHarness(t, "go2", session.Config{})
	g := h.Graph(t, walkUntilBlocked)

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{})

	// --- Assert ---
	require.Equal(t, engine.StateCompleted, outcome.State, "run error: %v", outcome.Err)

	ids := integration_tests.NodeIDs(outcome.Results)
	var want []string
	for range 6 {
		want = append(want, "step", "look")
	}
	want = append(want, "loop", "turn")
	assert.Equal(t, want, ids)

	last := outcome.Results[len(outcome.Results)-3]
	assert.Equal(t, "look", last.NodeID)
	assert.InDelta(t, 0.5, last.Outputs["value"].AsNumber(), 1e-9)
	assert.False(t, last.Outputs["triggered"].AsBool())

	state := h.Robot.State()
	assert.InDelta(t, 1.5, state.Odometer, 1e-9)
	assert.InDelta(t, 30, state.Heading, 1e-9)
	assert.InDelta(t, 2, state.Obstacle, 1e-9)
}

// Test for: a blocked walk reports a failed status instead of an error
func TestCoreExecution_BlockedWalkReportsFailure(t *testing.T) {
	// --- Arrange ---
	h := integration_tests.NewHarness(t, "go2", session.Config{})
	g := h.Graph(t, `
node "step" {
  type   = "action_execution"
  params = { action = "walk", args = { distance = 5 } }
}
`)

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{})

	// --- Assert ---
	require.Equal(t, engine.StateCompleted, outcome.State)
	require.Len(t, outcome.Results, 1)
	out := outcome.Results[0].Outputs["out"].AsRecord()
	assert.Equal(t, "failed", out.Get("status").AsText())
	assert.Equal(t, "walk", out.Get("action").AsText())
	assert.Zero(t, h.Robot.State().Odometer)
}
