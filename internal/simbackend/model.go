package simbackend

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Model holds the physical parameters of a simulated robot.
type Model struct {
	Name string
	// Legs is the number of legs that lift_leg may address.
	Legs int
	// Stride is the distance of one walking step in meters.
	Stride float64
	// TurnDegrees is the default turning angle.
	TurnDegrees float64
	// Drain is the battery percentage spent per action.
	Drain float64
	// CanWave reports whether the model has arms.
	CanWave bool
}

var models = map[string]Model{
	"go2":     {Name: "go2", Legs: 4, Stride: 0.25, TurnDegrees: 30, Drain: 0.5},
	"h1":      {Name: "h1", Legs: 2, Stride: 0.4, TurnDegrees: 45, Drain: 0.8, CanWave: true},
	"generic": {Name: "generic", Legs: 4, Stride: 0.3, TurnDegrees: 90, Drain: 0.2, CanWave: true},
}

// DefaultModel is used when a descriptor names no model.
const DefaultModel = "go2"

// Models lists the known model names in sorted order.
func Models() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupModel returns the named model.
func LookupModel(name string) (Model, error) {
	if name == "" {
		name = DefaultModel
	}
	m, ok := models[strings.ToLower(name)]
	if !ok {
		return Model{}, fmt.Errorf("unknown robot model '%s' (known: %s)", name, strings.Join(Models(), ", "))
	}
	return m, nil
}

// durations are the nominal times actions take before time scaling.
var durations = map[string]time.Duration{
	ActionStand:        800 * time.Millisecond,
	ActionSit:          800 * time.Millisecond,
	ActionWalk:         500 * time.Millisecond,
	ActionTurnLeft:     400 * time.Millisecond,
	ActionTurnRight:    400 * time.Millisecond,
	ActionLiftLeg:      600 * time.Millisecond,
	ActionLiftRightLeg: 600 * time.Millisecond,
	ActionWave:         1200 * time.Millisecond,
	ActionStop:         100 * time.Millisecond,
}
