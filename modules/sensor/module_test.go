package sensor_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/robogrid/internal/testutil"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/specialistvlad/robogrid/modules/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Threshold(t *testing.T) {
	robot := testutil.NewScriptedRobot(value.Record{"ultrasonic": value.Number(7)})

	tests := []struct {
		threshold float64
		triggered bool
	}{
		{5, true},
		{7, false},
		{10, false},
	}
	for _, tc := range tests {
		rc := testutil.NewRunContext(value.Record{
			"sensor_type": value.Text("ultrasonic"),
			"threshold":   value.Number(tc.threshold),
		}, robot)
		out, err := sensor.Behavior{}.Execute(context.Background(), nil, rc)
		require.NoError(t, err)
		assert.Equal(t, 7.0, out["value"].AsNumber())
		assert.Equal(t, tc.triggered, out["triggered"].AsBool(), "threshold %v", tc.threshold)
	}
}

func TestExecute_RecordReading(t *testing.T) {
	imu := value.RecordOf(value.Record{"pitch": value.Number(0.1)})
	robot := testutil.NewScriptedRobot(value.Record{"imu": imu})
	out, err := sensor.Behavior{}.Execute(context.Background(), nil, testutil.NewRunContext(sensor.Spec().Params, robot))
	require.NoError(t, err)

	assert.True(t, value.Equal(imu, out["out"]))
	assert.Equal(t, 0.0, out["value"].AsNumber())
	assert.False(t, out["triggered"].AsBool())
}

func TestExecute_MissingChannel(t *testing.T) {
	out, err := sensor.Behavior{}.Execute(context.Background(), nil, testutil.NewRunContext(value.Record{
		"sensor_type": value.Text("camera"),
	}, testutil.NewScriptedRobot()))
	require.NoError(t, err)
	assert.True(t, out["out"].IsNull())
	assert.Equal(t, 0.0, out["value"].AsNumber())
}

func TestExecute_UnknownType(t *testing.T) {
	_, err := sensor.Behavior{}.Execute(context.Background(), nil, testutil.NewRunContext(value.Record{
		"sensor_type": value.Text("lidar"),
	}, testutil.NewScriptedRobot()))
	assert.ErrorContains(t, err, "lidar")
}

func TestCode(t *testing.T) {
	code := sensor.Behavior{}.Code(value.Record{"sensor_type": value.Text("infrared"), "threshold": value.Number(2.5)})
	assert.Contains(t, code, `robot.get_sensor_data().get('infrared')`)
	assert.Contains(t, code, `{{out "triggered"}} = {{out "value"}} > 2.5`)

	assert.Contains(t, sensor.Behavior{}.Code(value.Record{"sensor_type": value.Text("lidar")}), "raise ValueError")
}
