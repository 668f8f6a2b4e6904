package extension

import (
	"context"
	"iter"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/fsutil"
	"github.com/specialistvlad/robogrid/internal/registry"
)

// Dir is a registry.Source reading every *.hcl manifest below Path.
type Dir struct {
	Path string
}

var _ registry.Source = Dir{}

// Name implements registry.Source.
func (d Dir) Name() string { return "dir:" + d.Path }

// Discover implements registry.Source. Manifests are read in lexical path
// order; a missing directory yields nothing.
func (d Dir) Discover(ctx context.Context) iter.Seq2[registry.Entry, error] {
	return func(yield func(registry.Entry, error) bool) {
		logger := ctxlog.FromContext(ctx)
		files, err := fsutil.FindFilesByExtension(d.Path, ".hcl")
		if err != nil {
			yield(registry.Entry{}, err)
			return
		}
		logger.Debug("Discovered extension manifests.", "path", d.Path, "count", len(files))

		parser := hclparse.NewParser()
		for _, path := range files {
			defs, err := ParseFile(parser, path)
			if err != nil {
				if !yield(registry.Entry{}, err) {
					return
				}
				continue
			}
			for _, def := range defs {
				if !yield(registry.Entry{TypeID: def.Spec.Type, New: def.constructor(), Origin: path}, nil) {
					return
				}
			}
		}
	}
}
