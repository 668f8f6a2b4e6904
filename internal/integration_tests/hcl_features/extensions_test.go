package integration_tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/robogrid/internal/engine"
	"github.com/specialistvlad/robogrid/internal/graphfile"
	"github.com/specialistvlad/robogrid/internal/integration_tests"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gaitManifest = `
node_type "lift_left_leg" {
  kind   = "action"
  action = "lift_leg"
  params = { leg = "left" }
}

node_type "battery_level" {
  kind   = "sensor"
  sensor = "battery"
  params = { threshold = 50 }
}
`

const gaitGraph = `
variable "leg" {
  default = "left"
}

variable "reserve" {
  default = 50
}

node "power" {
  type   = "battery_level"
  params = { threshold = var.reserve }
}
node "check" {
  type = "if"
}
node "lift" {
  type   = "lift_left_leg"
  params = { leg = lower(var.leg) }
}
node "rest" {
  type   = "action_execution"
  params = { action = "sit" }
}
connect {
  from = "power.triggered"
  to   = "check.condition"
}
connect {
  from = "check.then"
  to   = "lift.in"
}
connect {
  from = "check.else"
  to   = "rest.in"
}
`

// Test for: manifest node types run next to built-ins and take graph variables
func TestHclFeatures_ExtensionNodeTypes(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gait.hcl"), []byte(gaitManifest), 0o644))

	h := integration_tests.NewHarness(t, "go2", session.Config{})
	report := h.LoadExtensions(t, dir)
	require.Equal(t, 2, report.Extensions)
	g := h.Graph(t, gaitGraph)

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{})

	// --- Assert ---
	require.Equal(t, engine.StateCompleted, outcome.State, "run error: %v", outcome.Err)
	assert.Equal(t, []string{"power", "check", "lift"}, integration_tests.NodeIDs(outcome.Results))
	assert.Equal(t, "success", outcome.Results[2].Outputs["out"].AsRecord().Get("status").AsText())
	assert.Equal(t, []bool{false, true, false, false}, h.Robot.State().Lifted)
}

// Test for: variables set by the caller override declared defaults
func TestHclFeatures_VariableOverrides(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gait.hcl"), []byte(gaitManifest), 0o644))

	h := integration_tests.NewHarness(t, "go2", session.Config{})
	h.LoadExtensions(t, dir)
	g := h.Graph(t, gaitGraph, graphfile.WithVariables(value.Record{"reserve": value.Text("100")}))

	// --- Act ---
	outcome := h.Execute(t, g, engine.Config{})

	// --- Assert ---
	require.Equal(t, engine.StateCompleted, outcome.State, "run error: %v", outcome.Err)
	assert.Equal(t, []string{"power", "check", "rest"}, integration_tests.NodeIDs(outcome.Results))
	assert.False(t, outcome.Results[0].Outputs["triggered"].AsBool())
}
