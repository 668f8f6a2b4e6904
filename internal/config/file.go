package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// fileRoot mirrors Config with every attribute optional, so a file only
// overrides what it names.
type fileRoot struct {
	LogLevel        *string `hcl:"log_level" yaml:"log_level"`
	LogFormat       *string `hcl:"log_format" yaml:"log_format"`
	ExtensionsDir   *string `hcl:"extensions_dir" yaml:"extensions_dir"`
	HealthcheckPort *int    `hcl:"healthcheck_port" yaml:"healthcheck_port"`

	Engine  *engineBlock  `hcl:"engine,block" yaml:"engine"`
	Session *sessionBlock `hcl:"session,block" yaml:"session"`
	Codegen *codegenBlock `hcl:"codegen,block" yaml:"codegen"`
}

type engineBlock struct {
	MaxIterations   *int    `hcl:"max_iterations" yaml:"max_iterations"`
	MaxNodeRuns     *int    `hcl:"max_node_runs" yaml:"max_node_runs"`
	DispatchTimeout *string `hcl:"dispatch_timeout" yaml:"dispatch_timeout"`
}

type sessionBlock struct {
	Backend      *string  `hcl:"backend" yaml:"backend"`
	Model        *string  `hcl:"model" yaml:"model"`
	URL          *string  `hcl:"url" yaml:"url"`
	Namespace    *string  `hcl:"namespace" yaml:"namespace"`
	Insecure     *bool    `hcl:"insecure" yaml:"insecure"`
	PollInterval *string  `hcl:"poll_interval" yaml:"poll_interval"`
	TimeScale    *float64 `hcl:"time_scale" yaml:"time_scale"`
}

type codegenBlock struct {
	Indent    *int `hcl:"indent" yaml:"indent"`
	LoopGuard *int `hcl:"loop_guard" yaml:"loop_guard"`
}

// LoadFile reads the configuration file at path and applies it over base.
// Files ending in .yaml or .yml are YAML; everything else is HCL.
func LoadFile(path string, base Config) (Config, error) {
	var (
		root fileRoot
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(path, &root)
	default:
		err = decodeHCL(path, &root)
	}
	if err != nil {
		return base, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg, err := apply(root, base)
	if err != nil {
		return base, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return cfg, nil
}

func decodeHCL(path string, root *fileRoot) error {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return diags
	}
	if diags := gohcl.DecodeBody(file.Body, nil, root); diags.HasErrors() {
		return diags
	}
	return nil
}

func decodeYAML(path string, root *fileRoot) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(root); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func apply(root fileRoot, cfg Config) (Config, error) {
	set(&cfg.LogLevel, root.LogLevel)
	set(&cfg.LogFormat, root.LogFormat)
	set(&cfg.ExtensionsDir, root.ExtensionsDir)
	set(&cfg.HealthcheckPort, root.HealthcheckPort)

	if e := root.Engine; e != nil {
		set(&cfg.Engine.MaxIterations, e.MaxIterations)
		set(&cfg.Engine.MaxNodeRuns, e.MaxNodeRuns)
		if err := setDuration(&cfg.Engine.DispatchTimeout, e.DispatchTimeout, "engine.dispatch_timeout"); err != nil {
			return cfg, err
		}
	}
	if s := root.Session; s != nil {
		set(&cfg.Session.Backend, s.Backend)
		set(&cfg.Session.Model, s.Model)
		set(&cfg.Session.URL, s.URL)
		set(&cfg.Session.Namespace, s.Namespace)
		set(&cfg.Session.Insecure, s.Insecure)
		set(&cfg.Session.TimeScale, s.TimeScale)
		if err := setDuration(&cfg.Session.PollInterval, s.PollInterval, "session.poll_interval"); err != nil {
			return cfg, err
		}
	}
	if c := root.Codegen; c != nil {
		set(&cfg.Codegen.Indent, c.Indent)
		set(&cfg.Codegen.LoopGuard, c.LoopGuard)
	}
	return cfg, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string, name string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, *src, err)
	}
	*dst = d
	return nil
}
