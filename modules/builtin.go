// Package modules lists the node modules compiled into the robogrid binary.
package modules

import (
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/modules/action"
	"github.com/specialistvlad/robogrid/modules/comparison"
	"github.com/specialistvlad/robogrid/modules/constant"
	"github.com/specialistvlad/robogrid/modules/control"
	"github.com/specialistvlad/robogrid/modules/counter"
	"github.com/specialistvlad/robogrid/modules/sensor"
	"github.com/specialistvlad/robogrid/modules/stop"
)

// Builtins returns the definitive list of built-in modules, in registration
// order.
func Builtins() []registry.Module {
	return []registry.Module{
		&action.Module{},
		&stop.Module{},
		&sensor.Module{},
		&comparison.Module{},
		&counter.Module{},
		&constant.Module{},
		&control.Module{},
	}
}
