package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/graph"
	"github.com/specialistvlad/robogrid/internal/inmemorystore"
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/nodestore"
	"github.com/specialistvlad/robogrid/internal/scheduler"
)

// Default budgets.
const (
	DefaultMaxIterations = 1000
	DefaultMaxNodeRuns   = 100000
)

// Config holds the per-run budgets.
type Config struct {
	// MaxIterations bounds the body passes of one loop entry.
	MaxIterations int
	// MaxNodeRuns bounds the node executions of one run, loop evaluations
	// included.
	MaxNodeRuns int
	// DispatchTimeout bounds each node execution when non-zero.
	DispatchTimeout time.Duration
	// ResultBuffer is the capacity of the live result stream.
	ResultBuffer int
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.MaxNodeRuns <= 0 {
		c.MaxNodeRuns = DefaultMaxNodeRuns
	}
	if c.ResultBuffer <= 0 {
		c.ResultBuffer = 64
	}
	return c
}

// Engine runs graphs against one robot.
type Engine struct {
	robot    node.Robot
	cfg      Config
	newStore func() nodestore.Store
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore overrides the per-run store constructor.
func WithStore(newStore func() nodestore.Store) Option {
	return func(e *Engine) { e.newStore = newStore }
}

// New creates an engine. Zero budgets take their defaults.
func New(robot node.Robot, cfg Config, opts ...Option) *Engine {
	e := &Engine{robot: robot, cfg: cfg.withDefaults(), newStore: inmemorystore.New}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Start validates g, plans it and starts a run on its own goroutine. A graph
// that fails validation returns a *graph.ValidationError and no run.
//
// The run blocks when its result stream is full, so callers must consume
// Results or call Wait.
func (e *Engine) Start(ctx context.Context, g *graph.Graph) (*Run, error) {
	plan, err := scheduler.Build(g.Snapshot())
	if err != nil {
		return nil, err
	}

	r := newRun(uuid.NewString(), e, plan)
	logger := ctxlog.FromContext(ctx).With("run_id", r.id)
	logger.Info("Run started.", "nodes", len(plan.Order()))
	go r.exec(ctxlog.WithLogger(ctx, logger))
	return r, nil
}

// Execute starts a run and waits for its outcome.
func (e *Engine) Execute(ctx context.Context, g *graph.Graph) (*Outcome, error) {
	r, err := e.Start(ctx, g)
	if err != nil {
		return nil, err
	}
	return r.Wait(), nil
}
