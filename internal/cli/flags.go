package cli

import (
	"github.com/specialistvlad/robogrid/internal/config"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath      string
	logLevel        string
	logFormat       string
	extensionsDir   string
	healthcheckPort int
	vars            map[string]string
}

func (f *globalFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to an HCL or YAML configuration file.")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "Logging level: 'debug', 'info', 'warn' or 'error'.")
	fs.StringVar(&f.logFormat, "log-format", def.LogFormat, "Log output format: 'text' or 'json'.")
	fs.StringVar(&f.extensionsDir, "extensions", def.ExtensionsDir, "Directory scanned for node type manifests.")
	fs.IntVar(&f.healthcheckPort, "healthcheck-port", def.HealthcheckPort, "Port for the health check and metrics server. 0 is disabled.")
	fs.StringToStringVar(&f.vars, "var", nil, "Set a graph variable, e.g. --var clearance=0.5. Repeatable.")
}

// apply merges the flags the user actually set over cfg.
func (f *globalFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if fs.Changed("extensions") {
		cfg.ExtensionsDir = f.extensionsDir
	}
	if fs.Changed("healthcheck-port") {
		cfg.HealthcheckPort = f.healthcheckPort
	}
}

// variables returns the --var values as text; the graph loader coerces them
// to the kind of each variable's default.
func (f *globalFlags) variables() value.Record {
	vars := make(value.Record, len(f.vars))
	for k, v := range f.vars {
		vars[k] = value.Text(v)
	}
	return vars
}

// runFlags tune the robot session and the engine budgets.
type runFlags struct {
	backend       string
	model         string
	url           string
	timeScale     float64
	maxIterations int
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	fs.StringVar(&f.backend, "backend", def.Session.Backend, "Robot backend: 'sim' or 'socketio'.")
	fs.StringVar(&f.model, "model", def.Session.Model, "Robot model to simulate.")
	fs.StringVar(&f.url, "url", def.Session.URL, "URL of the socket.io simulator bridge.")
	fs.Float64Var(&f.timeScale, "time-scale", def.Session.TimeScale, "Multiplier for simulated action durations. 0 completes actions instantly.")
	fs.IntVar(&f.maxIterations, "max-iterations", def.Engine.MaxIterations, "Maximum body passes per loop entry.")
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("backend") {
		cfg.Session.Backend = f.backend
	}
	if fs.Changed("model") {
		cfg.Session.Model = f.model
	}
	if fs.Changed("url") {
		cfg.Session.URL = f.url
	}
	if fs.Changed("time-scale") {
		cfg.Session.TimeScale = f.timeScale
	}
	if fs.Changed("max-iterations") {
		cfg.Engine.MaxIterations = f.maxIterations
	}
}
