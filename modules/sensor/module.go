package sensor

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/script"
	"github.com/specialistvlad/robogrid/internal/value"
)

// TypeID is the registry key of the sensor node.
const TypeID = "sensor_input"

// Types lists the sensor channels a robot snapshot carries.
var Types = []string{"imu", "camera", "ultrasonic", "infrared", "odometry"}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the sensor_input node type.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(TypeID, New)
}

// Spec describes the sensor_input node type.
func Spec() node.Spec {
	return node.Spec{
		Type:        TypeID,
		Kind:        node.KindSensor,
		DisplayName: "Sensor Input",
		Description: "Read robot sensor data",
		Inputs:      []node.PortSpec{{Name: "in", Kind: value.KindAny}},
		Outputs: []node.PortSpec{
			{Name: "out", Kind: value.KindAny},
			{Name: "value", Kind: value.KindNumber},
			{Name: "triggered", Kind: value.KindBool},
		},
		Params: value.Record{
			"sensor_type": value.Text("imu"),
			"threshold":   value.Number(0),
		},
	}
}

// New creates a sensor_input node.
func New(id string) *node.Node {
	return node.New(id, Spec(), Behavior{})
}

// Behavior reads one channel of the robot's buffered sensor snapshot. It never
// waits for fresh data.
type Behavior struct{}

func (Behavior) Execute(_ context.Context, _ node.Values, rc node.RunContext) (node.Values, error) {
	params := rc.Params()
	sensorType := params.Get("sensor_type").AsText()
	if !slices.Contains(Types, sensorType) {
		return nil, fmt.Errorf("unknown sensor type '%s'", sensorType)
	}
	return Read(rc.Robot().ReadSensors(), sensorType, params.Get("threshold").AsNumber()), nil
}

func (Behavior) Code(params value.Record) string {
	sensorType := params.Get("sensor_type").AsText()
	if !slices.Contains(Types, sensorType) {
		return fmt.Sprintf("raise ValueError(%s)", script.Literal(value.Text("unknown sensor type: "+sensorType)))
	}
	return ReadCode(sensorType, params.Get("threshold").AsNumber())
}

// Read extracts key from a sensor snapshot into the three sensor outputs.
func Read(snapshot value.Record, key string, threshold float64) node.Values {
	reading := snapshot.Get(key)
	n := reading.AsNumber()
	return node.Values{
		"out":       reading,
		"value":     value.Number(n),
		"triggered": value.Bool(n > threshold),
	}
}

// ReadCode is the script counterpart of Read.
func ReadCode(key string, threshold float64) string {
	return fmt.Sprintf(`{{out "out"}} = robot.get_sensor_data().get(%s)
{{out "value"}} = _num({{out "out"}})
{{out "triggered"}} = {{out "value"}} > %s`, script.Literal(value.Text(key)), script.Number(threshold))
}
