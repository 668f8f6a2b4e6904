package extension_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/specialistvlad/robogrid/internal/extension"
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/testutil"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/specialistvlad/robogrid/modules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gaitManifest = `
node_type "lift_left_leg" {
  kind         = "action"
  display_name = "Lift Left Leg"
  description  = "Raise the left front leg"
  action       = "lift_leg"
  params       = { leg = "left" }
}

node_type "battery_level" {
  kind   = "sensor"
  sensor = "battery"
  params = { threshold = 20 }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func discover(t *testing.T, dir string) ([]registry.Entry, []error) {
	t.Helper()
	var entries []registry.Entry
	var errs []error
	for e, err := range (extension.Dir{Path: dir}).Discover(context.Background()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, errs
}

func TestDir_Discover(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gait.hcl", gaitManifest)
	writeFile(t, dir, "README.md", "not a manifest")

	entries, errs := discover(t, dir)
	require.Empty(t, errs)
	require.Len(t, entries, 2)
	assert.Equal(t, "lift_left_leg", entries[0].TypeID)
	assert.Equal(t, "battery_level", entries[1].TypeID)
	assert.Equal(t, path, entries[0].Origin)

	n := entries[0].New("lift")
	assert.Equal(t, "lift", n.ID())
	assert.Equal(t, node.KindAction, n.Kind())
	assert.Equal(t, "Lift Left Leg", n.Spec().DisplayName)
	assert.Equal(t, "left", n.Param("leg").AsText())

	s := entries[1].New("bat")
	assert.Equal(t, "battery_level", s.Spec().DisplayName)
	assert.Equal(t, float64(20), s.Param("threshold").AsNumber())
	_, ok := s.Spec().Port(node.Out, "triggered")
	assert.True(t, ok)
}

func TestDir_Name(t *testing.T) {
	assert.Equal(t, "dir:/opt/ext", extension.Dir{Path: "/opt/ext"}.Name())
}

func TestDir_MissingDirectory(t *testing.T) {
	entries, errs := discover(t, filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, entries)
	assert.Empty(t, errs)
}

func TestDir_BrokenManifestIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_broken.hcl", `node_type "x" {`)
	writeFile(t, dir, "b_badkind.hcl", `node_type "y" { kind = "control" }`)
	writeFile(t, dir, "nested/c_good.hcl", gaitManifest)

	entries, errs := discover(t, dir)
	require.Len(t, errs, 2)
	assert.ErrorContains(t, errs[0], "a_broken.hcl")
	assert.ErrorContains(t, errs[1], "unsupported kind 'control'")
	assert.Len(t, entries, 2)
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"action without target", `node_type "a" { kind = "action" }`, "needs an 'action' attribute"},
		{"sensor without target", `node_type "s" { kind = "sensor" }`, "needs a 'sensor' attribute"},
		{"bad id", `node_type "9lives" {
  kind   = "action"
  action = "stand"
}`, "9lives"},
		{"scalar params", `node_type "a" {
  kind   = "action"
  action = "stand"
  params = 3
}`, "params must be an object"},
		{"bad code", `node_type "a" {
  kind   = "action"
  action = "stand"
  code   = "{{param"
}`, "code"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "m.hcl", tc.content)
			_, errs := discover(t, filepath.Dir(path))
			require.Len(t, errs, 1)
			assert.ErrorContains(t, errs[0], tc.want)
		})
	}
}

func TestActionBehavior(t *testing.T) {
	entries, errs := discover(t, filepath.Dir(writeFile(t, t.TempDir(), "gait.hcl", gaitManifest)))
	require.Empty(t, errs)
	n := entries[0].New("lift")

	robot := testutil.NewScriptedRobot()
	out, err := n.Behavior().Execute(context.Background(), nil, testutil.NewRunContext(n.Params(), robot))
	require.NoError(t, err)

	require.Len(t, robot.Dispatched(), 1)
	assert.Equal(t, "lift_leg", robot.Dispatched()[0].Action)
	assert.Equal(t, "left", robot.Dispatched()[0].Args.Get("leg").AsText())
	assert.Equal(t, "success", out["out"].AsRecord().Get("status").AsText())

	code := n.Behavior().Code(n.Params())
	assert.Contains(t, code, `robot.run_action('lift_leg', {'leg': 'left'})`)
	assert.Contains(t, code, `{{out "out"}}`)
}

func TestSensorBehavior(t *testing.T) {
	entries, errs := discover(t, filepath.Dir(writeFile(t, t.TempDir(), "gait.hcl", gaitManifest)))
	require.Empty(t, errs)
	n := entries[1].New("bat")

	robot := testutil.NewScriptedRobot(value.Record{"battery": value.Number(15)})
	out, err := n.Behavior().Execute(context.Background(), nil, testutil.NewRunContext(n.Params(), robot))
	require.NoError(t, err)
	assert.Equal(t, float64(15), out["value"].AsNumber())
	assert.False(t, out["triggered"].AsBool())

	assert.Contains(t, n.Behavior().Code(n.Params()), `robot.get_sensor_data().get('battery')`)
}

func TestCustomCode(t *testing.T) {
	manifest := `
node_type "beep" {
  kind   = "action"
  action = "beep"
  params = { tone = "{high}", repeat = 2 }
  code   = <<-EOT
    for _ in range({{param "repeat"}}):
        robot.run_action('beep', {'tone': {{param "tone"}}, 'pass': {{iter}}})
    {{out "out"}} = {{in "in"}}
  EOT
}
`
	entries, errs := discover(t, filepath.Dir(writeFile(t, t.TempDir(), "beep.hcl", manifest)))
	require.Empty(t, errs)
	n := entries[0].New("b")

	code := n.Behavior().Code(n.Params())
	assert.Equal(t, `for _ in range(2):
    robot.run_action('beep', {'tone': '\x7bhigh\x7d', 'pass': {{iter}}})
{{out "out"}} = {{in "in"}}
`, code)

	require.NoError(t, n.SetParam("repeat", value.Number(5)))
	assert.Contains(t, n.Behavior().Code(n.Params()), "range(5)")
}

func TestRegistryLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gait.hcl", gaitManifest)
	writeFile(t, dir, "dup.hcl", `node_type "sensor_input" {
  kind   = "sensor"
  sensor = "imu"
}`)

	reg := registry.New()
	report, err := reg.Load(context.Background(), modules.Builtins(), extension.Dir{Path: dir})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Extensions)
	assert.Len(t, report.Skipped, 1)

	scope, ok := reg.ScopeOf("lift_left_leg")
	require.True(t, ok)
	assert.Equal(t, registry.ScopeExtension, scope)
	assert.Equal(t, []string{"battery_level", "lift_left_leg"}, slices.Sorted(reg.ListTypes(registry.ScopeExtension)))
}
