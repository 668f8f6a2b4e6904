package registry

import (
	"context"
	"fmt"
	"iter"

	"github.com/specialistvlad/robogrid/internal/ctxlog"
)

// Entry is one (type id, constructor) pair offered by an extension source.
type Entry struct {
	TypeID string
	New    Constructor
	// Origin names where the entry came from, e.g. a manifest path.
	Origin string
}

// Source is a discoverable location of extension node types. Discover yields
// every entry it can produce; a non-nil error in a pair reports one failed
// extension module and never stops the sequence.
type Source interface {
	Name() string
	Discover(ctx context.Context) iter.Seq2[Entry, error]
}

// LoadReport summarises a Load call.
type LoadReport struct {
	Builtins   int
	Extensions int
	// Skipped holds the per-module discovery and registration failures.
	Skipped []error
}

// Load registers the built-in modules, then every entry of every source under
// the extension scope, then seals the registry. A failing built-in is a
// programming error and aborts the load; extension failures are logged,
// recorded in the report and skipped.
func (r *Registry) Load(ctx context.Context, builtins []Module, sources ...Source) (*LoadReport, error) {
	logger := ctxlog.FromContext(ctx)
	report := &LoadReport{}

	before := r.Len()
	for _, mod := range builtins {
		if err := mod.Register(r); err != nil {
			return report, fmt.Errorf("failed to register built-in module %T: %w", mod, err)
		}
	}
	report.Builtins = r.Len() - before
	logger.Debug("Built-in node types registered.", "count", report.Builtins)

	for _, src := range sources {
		logger.Debug("Discovering extension node types.", "source", src.Name())
		for e, err := range src.Discover(ctx) {
			if err != nil {
				logger.Warn("Skipping extension module.", "source", src.Name(), "error", err)
				report.Skipped = append(report.Skipped, err)
				continue
			}
			if err := r.RegisterExtension(e.TypeID, e.New, e.Origin); err != nil {
				logger.Warn("Skipping extension node type.", "source", src.Name(), "type", e.TypeID, "error", err)
				report.Skipped = append(report.Skipped, err)
				continue
			}
			report.Extensions++
			logger.Debug("Extension node type registered.", "type", e.TypeID, "origin", e.Origin)
		}
	}

	r.Seal()
	logger.Info("Node registry loaded.", "builtin", report.Builtins, "extension", report.Extensions, "skipped", len(report.Skipped))
	return report, nil
}
