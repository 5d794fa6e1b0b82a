package ncube

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// traceExecutor understands "true", "false", "emit:<v>" (append v to output["trace"])
// and "count" (increment a counter).
type traceExecutor struct {
	calls atomic.Int64
}

func (e *traceExecutor) Execute(_ context.Context, source string, ec *ExecutionContext) (any, error) {
	switch {
	case source == "true":
		return true, nil
	case source == "false":
		return false, nil
	case strings.HasPrefix(source, "emit:"):
		v := strings.TrimPrefix(source, "emit:")
		trace, _ := ec.Output["trace"].([]string)
		ec.Output["trace"] = append(trace, v)
		return v, nil
	case source == "count":
		return e.calls.Add(1), nil
	}
	return nil, fmt.Errorf("unknown source %q", source)
}

type mapResolver map[string]*Cube

func (m mapResolver) ResolveCube(_ context.Context, name string) (*Cube, error) {
	c, ok := m[strings.ToLower(name)]
	if !ok {
		return nil, IllegalArgument("cube %q not found", name)
	}
	return c, nil
}

func ageCube(t *testing.T) *Cube {
	t.Helper()
	c, err := NewCube("Age")
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(mustAxis(t, "age", AxisRange, ValueLong)))
	for _, r := range []Range{{0, 18}, {18, 65}, {65, 150}} {
		_, err := c.AddColumn("age", r)
		require.NoError(t, err)
	}
	require.NoError(t, c.SetCell("child", map[string]any{"age": 5}))
	require.NoError(t, c.SetCell("adult", map[string]any{"age": 30}))
	require.NoError(t, c.SetCell("senior", map[string]any{"age": 70}))
	return c
}

func TestGetCellAgeCube(t *testing.T) {
	c := ageCube(t)
	ctx := context.Background()
	assert.Equal(t, 3, c.CellCount())

	for age, want := range map[int]string{0: "child", 17: "child", 18: "adult", 64: "adult", 99: "senior"} {
		v, err := c.GetCell(ctx, map[string]any{"Age": age}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, want, v, "age %d", age)
	}

	_, err := c.GetCell(ctx, map[string]any{"age": 200}, nil, nil)
	var cnf *CoordinateNotFoundError
	require.ErrorAs(t, err, &cnf)
	assert.Equal(t, "age", cnf.AxisName)

	_, err = c.GetCell(ctx, map[string]any{}, nil, nil)
	assert.True(t, IsCoordinateNotFound(err))
}

func TestGetCellDefaultValue(t *testing.T) {
	c, err := NewCube("tax")
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(mustAxis(t, "state", AxisDiscrete, ValueString, WithDefaultColumn())))
	_, err = c.AddColumn("state", "OH")
	require.NoError(t, err)
	require.NoError(t, c.SetCell(0.07, map[string]any{"state": "OH"}))

	ctx := context.Background()
	_, err = c.GetCell(ctx, map[string]any{"state": "TX"}, nil, nil)
	assert.True(t, IsCoordinateNotFound(err), "no cell and no default value")

	c.SetDefaultCellValue(0.05)
	v, err := c.GetCell(ctx, map[string]any{"state": "TX"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.05, v)

	v, err = c.GetCell(ctx, map[string]any{"state": "OH"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.07, v)

	raw, err := c.GetCellNoExecute(map[string]any{"state": "OH"})
	require.NoError(t, err)
	assert.Equal(t, 0.07, raw)
}

func ruleCube(t *testing.T, fireAll bool) *Cube {
	t.Helper()
	c, err := NewCube("rules")
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(mustAxis(t, "conditions", AxisRule, ValueExpression, WithFireAll(fireAll))))
	for i, cond := range []string{"true", "false", "true"} {
		_, err := c.AddColumn("conditions", cond, WithColumnName(fmt.Sprintf("r%d", i+1)))
		require.NoError(t, err)
	}
	require.NoError(t, c.SetCell(Expression{Source: "emit:one"}, map[string]any{"conditions": "r1"}))
	require.NoError(t, c.SetCell(Expression{Source: "emit:two"}, map[string]any{"conditions": "r2"}))
	require.NoError(t, c.SetCell(Expression{Source: "emit:three"}, map[string]any{"conditions": "r3"}))
	return c
}

func TestRuleAxisFireAll(t *testing.T) {
	env := &Env{Executor: &traceExecutor{}}
	ctx := context.Background()

	output := map[string]any{}
	v, err := ruleCube(t, true).GetCell(ctx, map[string]any{}, output, env)
	require.NoError(t, err)
	assert.Equal(t, "three", v)
	assert.Equal(t, []string{"one", "three"}, output["trace"])

	output = map[string]any{}
	v, err = ruleCube(t, false).GetCell(ctx, map[string]any{}, output, env)
	require.NoError(t, err)
	assert.Equal(t, "one", v)
	assert.Equal(t, []string{"one"}, output["trace"])

	output = map[string]any{}
	v, err = ruleCube(t, true).GetCell(ctx, map[string]any{"conditions": "r3"}, output, env)
	require.NoError(t, err)
	assert.Equal(t, "three", v)
	assert.Equal(t, []string{"three"}, output["trace"])

	_, err = ruleCube(t, true).GetCell(ctx, map[string]any{"conditions": "missing"}, output, env)
	assert.True(t, IsCoordinateNotFound(err))
}

func TestRuleAxisNopExecutorFiresNothing(t *testing.T) {
	output := map[string]any{}
	v, err := ruleCube(t, true).GetCell(context.Background(), nil, output, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Empty(t, output)
}

func TestReferenceCell(t *testing.T) {
	age := ageCube(t)
	c, err := NewCube("wrapper")
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(mustAxis(t, "kind", AxisDiscrete, ValueString)))
	_, err = c.AddColumn("kind", "age")
	require.NoError(t, err)
	require.NoError(t, c.SetCell(Reference{Cube: "Age"}, map[string]any{"kind": "age"}))

	ctx := context.Background()
	env := &Env{Resolver: mapResolver{"age": age}}
	v, err := c.GetCell(ctx, map[string]any{"kind": "age", "age": 40}, nil, env)
	require.NoError(t, err)
	assert.Equal(t, "adult", v)

	_, err = c.GetCell(ctx, map[string]any{"kind": "age", "age": 40}, nil, nil)
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestReferenceCycles(t *testing.T) {
	ctx := context.Background()

	loop, err := NewCube("loop")
	require.NoError(t, err)
	loop.SetDefaultCellValue(Reference{Cube: "Loop"})
	_, err = loop.GetCell(ctx, nil, nil, &Env{Resolver: mapResolver{"loop": loop}})
	require.ErrorIs(t, err, ErrIllegalState)
	assert.Contains(t, err.Error(), "loop -> Loop")

	a, err := NewCube("a")
	require.NoError(t, err)
	b, err := NewCube("b")
	require.NoError(t, err)
	a.SetDefaultCellValue(Reference{Cube: "b"})
	b.SetDefaultCellValue(Reference{Cube: "a"})
	_, err = a.GetCell(ctx, nil, nil, &Env{Resolver: mapResolver{"a": a, "b": b}})
	require.ErrorIs(t, err, ErrIllegalState)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestCacheableExpressionResults(t *testing.T) {
	c, err := NewCube("counter")
	require.NoError(t, err)
	c.SetDefaultCellValue(&Expression{Source: "count", Cacheable: true})

	exec := &traceExecutor{}
	env := &Env{Executor: exec}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetCell(ctx, nil, nil, env)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := c.GetCell(ctx, nil, nil, env)
	require.NoError(t, err)
	first := v.(int64)
	assert.GreaterOrEqual(t, first, int64(1))
	calls := exec.calls.Load()

	v, err = c.GetCell(ctx, nil, nil, env)
	require.NoError(t, err)
	assert.Equal(t, first, v)
	assert.Equal(t, calls, exec.calls.Load(), "cached result is reused")

	c.ClearCellCache()
	_, err = c.GetCell(ctx, nil, nil, env)
	require.NoError(t, err)
	assert.Equal(t, calls+1, exec.calls.Load())
}

func TestAddAxisMovesCellsToDefault(t *testing.T) {
	c := ageCube(t)
	require.NoError(t, c.AddAxis(mustAxis(t, "state", AxisDiscrete, ValueString, WithDefaultColumn())))
	assert.Equal(t, 3, c.CellCount())

	v, err := c.GetCell(context.Background(), map[string]any{"age": 30, "state": "OH"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "adult", v)

	require.NoError(t, c.AddAxis(mustAxis(t, "region", AxisDiscrete, ValueString)))
	assert.Equal(t, 0, c.CellCount())

	err = c.AddAxis(mustAxis(t, "STATE", AxisDiscrete, ValueString))
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestSetCellValidation(t *testing.T) {
	c := ageCube(t)
	err := c.SetCell("x", map[string]any{"age": 500})
	assert.True(t, IsCoordinateNotFound(err))

	err = c.SetCellByIDs("x", 1, 2)
	assert.ErrorIs(t, err, ErrIllegalArgument)

	old, ok, err := c.RemoveCell(map[string]any{"age": 10})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "child", old)
	assert.Equal(t, 2, c.CellCount())
}

func TestCloneIsIndependent(t *testing.T) {
	c := ageCube(t)
	clone := c.Clone()
	require.NoError(t, clone.SetCell("kid", map[string]any{"age": 5}))
	_, err := clone.AddColumn("age", Range{Low: 150, High: 200})
	require.NoError(t, err)

	v, err := c.GetCell(context.Background(), map[string]any{"age": 5}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "child", v)
	assert.Equal(t, 3, c.Axis("age").Size())
	assert.NotEqual(t, c.SHA1(), clone.SHA1())
}

func TestAdviceMatching(t *testing.T) {
	assert.Equal(t, "rates.run()", MethodName("rates", nil))
	assert.Equal(t, "rates.calc()", MethodName("rates", map[string]any{"Method": "calc"}))

	assert.True(t, MatchAdvice("*.run()", "Rates.run()"))
	assert.True(t, MatchAdvice("rates.*", "RATES.calc()"))
	assert.False(t, MatchAdvice("tax.*", "rates.calc()"))
	assert.False(t, MatchAdvice("[", "rates.calc()"))
}
