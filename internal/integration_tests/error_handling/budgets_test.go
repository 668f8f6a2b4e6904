package integration_tests

import (
	"testing"
	"time"

	"github.com/specialistvlad/robogrid/internal/engine"
	"github.com/specialistvlad/robogrid/internal/integration_tests"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/simbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pace never stops on its own. The action record carries no value field, so
// ok compares 0 < 1 on every pass.
const pace = `
node "loop" {
  type = "while_loop"
}
node "rise" {
  type   = "action_execution"
  params = { action = "stand" }
}
node "ok" {
  type   = "comparison"
  params = { operator = "<", compare_value = 1 }
}
node "rest" {
  type   = "action_execution"
  params = { action = "sit" }
}
connect {
  from = "loop.body"
  to   = "rise.in"
}
connect {
  from = "rise.out"
  to   = "ok.left"
}
connect {
  from = "ok.result"
  to   = "loop.condition"
}
connect {
  from = "loop.done"
  to   = "rest.in"
}
`

// Test for: a loop asking for more passes than allowed fails the run
func TestErrorHandling_LoopBudget(t *testing.T) {
	// --- Arrange ---
	h := integration_tests.NewHarness(t, "go2", session.Config{})
	g := h.Graph(t, pace)

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{MaxIterations: 4})

	// --- Assert ---
	require.Equal(t, engine.StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, engine.ErrLoopBudgetExceeded)

	var rises int
	for _, res := range outcome.Results {
		if res.NodeID == "rise" {
			rises++
		}
	}
	assert.Equal(t, 4, rises)
	assert.NotContains(t, integration_tests.NodeIDs(outcome.Results), "rest")
}

// Test for: the node run budget bounds a run even when loops stay in budget
func TestErrorHandling_NodeRunBudget(t *testing.T) {
	// --- Arrange ---
	h := integration_tests.NewHarness(t, "go2", session.Config{})
	g := h.Graph(t, pace)

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{MaxNodeRuns: 10})

	// --- Assert ---
	require.Equal(t, engine.StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, engine.ErrNodeRunBudgetExceeded)
}

// Test for: aborting a run stops it at the next node boundary
func TestErrorHandling_Abort(t *testing.T) {
	// --- Arrange ---
	h := integration_tests.NewHarness(t, "go2", session.Config{}, simbackend.WithTimeScale(0.05))
	g := h.Graph(t, pace)
	run, err := engine.New(h.Session, engine.Config{}).Start(h.Ctx, g)
	require.NoError(t, err)

	// --- Act ---
	var seen int
	for range run.Results() {
		seen++
		if seen == 2 {
			run.Abort()
		}
	}
	outcome := run.Wait()

	// --- Assert ---
	require.Equal(t, engine.StateAborted, outcome.State)
	assert.ErrorIs(t, outcome.Err, engine.ErrAborted)
	assert.Less(t, len(outcome.Results), 6)
	assert.NotContains(t, integration_tests.NodeIDs(outcome.Results), "rest")

	select {
	case <-run.Done():
	case <-time.After(time.Second):
		t.Fatal("run did not finish after abort")
	}
}
