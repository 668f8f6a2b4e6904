package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	BackendSim      = "sim"
	BackendSocketIO = "socketio"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	backends   = []string{BackendSim, BackendSocketIO}
)

// Config is the complete application configuration.
type Config struct {
	LogLevel        string
	LogFormat       string
	ExtensionsDir   string
	HealthcheckPort int

	Engine  Engine
	Session Session
	Codegen Codegen
}

// Engine holds the execution budgets.
type Engine struct {
	MaxIterations   int
	MaxNodeRuns     int
	DispatchTimeout time.Duration
}

// Session selects and tunes the robot backend.
type Session struct {
	Backend string
	Model   string
	// URL and Namespace address the socket.io simulator bridge.
	URL       string
	Namespace string
	Insecure  bool
	// PollInterval refreshes the sensor snapshot periodically; 0 disables it.
	PollInterval time.Duration
	// TimeScale multiplies simulated action durations; 0 completes actions
	// instantly.
	TimeScale float64
}

// Codegen tunes the script generator.
type Codegen struct {
	Indent int
	// LoopGuard caps the passes of a generated loop. Zero follows
	// Engine.MaxIterations.
	LoopGuard int
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     "text",
		ExtensionsDir: "extensions",
		Engine: Engine{
			MaxIterations:   1000,
			MaxNodeRuns:     100000,
			DispatchTimeout: 5 * time.Second,
		},
		Session: Session{
			Backend:   BackendSim,
			Model:     "go2",
			URL:       "http://127.0.0.1:5000",
			Namespace: "/",
		},
		Codegen: Codegen{
			Indent: 4,
		},
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of %v", c.LogLevel, logLevels))
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of %v", c.LogFormat, logFormats))
	}
	if c.HealthcheckPort < 0 || c.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck port %d", c.HealthcheckPort))
	}
	if c.Engine.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("engine max_iterations must be positive, got %d", c.Engine.MaxIterations))
	}
	if c.Engine.MaxNodeRuns < 0 {
		errs = append(errs, fmt.Errorf("engine max_node_runs cannot be negative, got %d", c.Engine.MaxNodeRuns))
	}
	if c.Engine.DispatchTimeout < 0 {
		errs = append(errs, fmt.Errorf("engine dispatch_timeout cannot be negative, got %s", c.Engine.DispatchTimeout))
	}
	if !slices.Contains(backends, c.Session.Backend) {
		errs = append(errs, fmt.Errorf("invalid session backend %q: must be one of %v", c.Session.Backend, backends))
	}
	if c.Session.Backend == BackendSocketIO && c.Session.URL == "" {
		errs = append(errs, errors.New("session url is required for the socketio backend"))
	}
	if c.Session.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("session poll_interval cannot be negative, got %s", c.Session.PollInterval))
	}
	if c.Session.TimeScale < 0 {
		errs = append(errs, fmt.Errorf("session time_scale cannot be negative, got %g", c.Session.TimeScale))
	}
	if c.Codegen.Indent < 1 || c.Codegen.Indent > 8 {
		errs = append(errs, fmt.Errorf("codegen indent must be between 1 and 8, got %d", c.Codegen.Indent))
	}
	if c.Codegen.LoopGuard < 0 {
		errs = append(errs, fmt.Errorf("codegen loop_guard cannot be negative, got %d", c.Codegen.LoopGuard))
	}
	return errors.Join(errs...)
}

// LoopGuard returns the pass limit of generated loops, which is the engine's
// iteration budget unless the codegen section sets its own.
func (c Config) LoopGuard() int {
	if c.Codegen.LoopGuard > 0 {
		return c.Codegen.LoopGuard
	}
	return c.Engine.MaxIterations
}
