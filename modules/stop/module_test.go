package stop_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/robogrid/internal/testutil"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/specialistvlad/robogrid/modules/stop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	robot := testutil.NewScriptedRobot()
	out, err := stop.Behavior{}.Execute(context.Background(), nil, testutil.NewRunContext(nil, robot))
	require.NoError(t, err)

	assert.Equal(t, "stopped", out["out"].AsRecord().Get("status").AsText())
	assert.Equal(t, []string{"stop"}, robot.Actions())
}

func TestCode(t *testing.T) {
	assert.Equal(t, `{{out "out"}} = {'status': 'stopped', 'result': robot.stop()}`, stop.Behavior{}.Code(value.Record{}))
}
