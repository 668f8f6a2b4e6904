package testutil

import (
	"context"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/value"
)

// ExecuteFunc adapts a function into the Execute half of node.Behavior.
type ExecuteFunc func(ctx context.Context, in node.Values, rc node.RunContext) (node.Values, error)

// FuncBehavior is a node.Behavior built from plain functions. A nil Fn
// produces no outputs; a nil CodeFn emits "pass".
type FuncBehavior struct {
	Fn     ExecuteFunc
	CodeFn func(params value.Record) string
}

func (b FuncBehavior) Execute(ctx context.Context, in node.Values, rc node.RunContext) (node.Values, error) {
	if b.Fn == nil {
		return node.Values{}, nil
	}
	return b.Fn(ctx, in, rc)
}

func (b FuncBehavior) Code(params value.Record) string {
	if b.CodeFn == nil {
		return "pass"
	}
	return b.CodeFn(params)
}

// SimpleModule is a test helper for registering one extra node type.
type SimpleModule struct {
	Spec     node.Spec
	Behavior node.Behavior
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) error {
	return r.Register(m.Spec.Type, func(id string) *node.Node {
		return node.New(id, m.Spec, m.Behavior)
	})
}
