package ncube

import (
	"context"
	"path"
	"strings"
)

// DefaultMethod names the logical method when the input carries no "method" key.
const DefaultMethod = "run"

// Advice intercepts cube execution. Before returning false vetoes the call; After runs
// only for advices whose Before ran.
type Advice interface {
	Before(ctx context.Context, cube *Cube, input, output map[string]any) bool
	After(ctx context.Context, cube *Cube, input, output map[string]any, result any, err error)
}

// AdviceFuncs builds an Advice from optional functions.
type AdviceFuncs struct {
	BeforeFunc func(ctx context.Context, cube *Cube, input, output map[string]any) bool
	AfterFunc  func(ctx context.Context, cube *Cube, input, output map[string]any, result any, err error)
}

func (a AdviceFuncs) Before(ctx context.Context, cube *Cube, input, output map[string]any) bool {
	if a.BeforeFunc == nil {
		return true
	}
	return a.BeforeFunc(ctx, cube, input, output)
}

func (a AdviceFuncs) After(ctx context.Context, cube *Cube, input, output map[string]any, result any, err error) {
	if a.AfterFunc != nil {
		a.AfterFunc(ctx, cube, input, output, result, err)
	}
}

// MethodName synthesizes the logical method name advice patterns match against,
// e.g. "rates.calc()".
func MethodName(cubeName string, input map[string]any) string {
	method := DefaultMethod
	if v, ok := lowerKeys(input)["method"]; ok {
		if s, ok := v.(string); ok && s != "" {
			method = s
		}
	}
	return cubeName + "." + method + "()"
}

// MatchAdvice reports whether a glob pattern matches a method name, ignoring case.
// Malformed patterns never match.
func MatchAdvice(pattern, methodName string) bool {
	ok, err := path.Match(strings.ToLower(pattern), strings.ToLower(methodName))
	return err == nil && ok
}
