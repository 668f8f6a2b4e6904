package app

import (
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/specialistvlad/robogrid/modules"
)

// coreModules is the definitive list of all modules that are compiled into
// the robogrid binary.
var coreModules = modules.Builtins()

// Option customises an App.
type Option func(*App)

// WithVariables sets the graph variables every loaded graph file sees.
func WithVariables(vars value.Record) Option {
	return func(a *App) { a.vars = vars }
}

// WithModules replaces the compiled-in modules.
func WithModules(mods ...registry.Module) Option {
	return func(a *App) { a.modules = mods }
}
