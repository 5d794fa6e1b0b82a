package ncube

import (
	"context"
	"strings"
)

// ExecutionContext is handed to an Executor for each expression it runs. Output is
// shared by every cell evaluated during one lookup, including rule fan-out.
type ExecutionContext struct {
	Cube   *Cube
	Input  map[string]any
	Output map[string]any
}

// Executor runs expression source. The store never interprets source text itself.
type Executor interface {
	Execute(ctx context.Context, source string, ec *ExecutionContext) (any, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, source string, ec *ExecutionContext) (any, error)

func (f ExecutorFunc) Execute(ctx context.Context, source string, ec *ExecutionContext) (any, error) {
	return f(ctx, source, ec)
}

// NopExecutor evaluates every expression to nil, so no rule fires.
type NopExecutor struct{}

func (NopExecutor) Execute(context.Context, string, *ExecutionContext) (any, error) {
	return nil, nil
}

// Resolver loads the cubes named by Reference cells.
type Resolver interface {
	ResolveCube(ctx context.Context, name string) (*Cube, error)
}

// Env carries the collaborators a lookup may need. A nil Env, or nil fields, behave as
// a NopExecutor and no resolver.
type Env struct {
	Executor Executor
	Resolver Resolver
}

func (e *Env) executor() Executor {
	if e == nil || e.Executor == nil {
		return NopExecutor{}
	}
	return e.Executor
}

func (e *Env) resolver() Resolver {
	if e == nil {
		return nil
	}
	return e.Resolver
}

// Truthy reports whether a rule condition result fires the rule.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false")
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return true
}
