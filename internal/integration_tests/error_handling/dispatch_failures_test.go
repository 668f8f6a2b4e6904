package integration_tests

import (
	"errors"
	"testing"
	"time"

	"github.com/specialistvlad/robogrid/internal/engine"
	"github.com/specialistvlad/robogrid/internal/integration_tests"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/simbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const standThenWalk = `
node "rise" {
  type   = "action_execution"
  params = { action = "stand" }
}
node "step" {
  type   = "action_execution"
  params = { action = "walk" }
}
connect {
  from = "rise.out"
  to   = "step.in"
}
`

// Test for: an action slower than the dispatch timeout fails the run
func TestErrorHandling_DispatchTimeout(t *testing.T) {
	// --- Arrange ---
	h := integration_tests.NewHarness(t, "go2", session.Config{}, simbackend.WithTimeScale(1))
	g := h.Graph(t, standThenWalk)

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{DispatchTimeout: 50 * time.Millisecond})

	// --- Assert ---
	require.Equal(t, engine.StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, session.ErrDispatchTimeout)

	var nodeErr *engine.NodeError
	require.ErrorAs(t, outcome.Err, &nodeErr)
	assert.Equal(t, "rise", nodeErr.NodeID)
	assert.Equal(t, []string{"rise"}, integration_tests.NodeIDs(outcome.Results))
	assert.Contains(t, outcome.Results[0].Error, "timed out")
}

// Test for: a backend failure stops the run at the failing node
func TestErrorHandling_BackendFailure(t *testing.T) {
	// --- Arrange ---
	motor := errors.New("motor overheated")
	h := integration_tests.NewHarness(t, "go2", session.Config{}, simbackend.WithFailure("walk", motor))
	g := h.Graph(t, standThenWalk)

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{})

	// --- Assert ---
	require.Equal(t, engine.StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, motor)
	require.Len(t, outcome.Results, 2)
	assert.Equal(t, "success", string(outcome.Results[0].Status))
	assert.Equal(t, "error", string(outcome.Results[1].Status))
	assert.Contains(t, outcome.Results[1].Error, "action 'walk' failed")
	assert.Contains(t, h.Logs.String(), "Node execution failed.")
}

// Test for: unknown actions are rejected by the robot, not at load time
func TestErrorHandling_UnknownAction(t *testing.T) {
	// --- Arrange ---
	h := integration_tests.NewHarness(t, "go2", session.Config{})
	g := h.Graph(t, `
node "fly" {
  type   = "action_execution"
  params = { action = "fly" }
}
`)

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{})

	// --- Assert ---
	require.Equal(t, engine.StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, simbackend.ErrUnknownAction)
}

// Test for: a stopped session refuses further dispatches
func TestErrorHandling_StoppedSession(t *testing.T) {
	// --- Arrange ---
	h := integration_tests.NewHarness(t, "go2", session.Config{})
	g := h.Graph(t, standThenWalk)
	require.NoError(t, h.Session.Stop(h.Ctx))

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{})

	// --- Assert ---
	require.Equal(t, engine.StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, session.ErrNotRunning)
}
