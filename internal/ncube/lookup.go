// lookup.go
//
// A versioned, multidimensional decision-table store
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of cubedb.
// cubedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// cubedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with cubedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package ncube

import (
	"context"
	"fmt"
	"strings"
)

const defaultResultKey = "default"

// GetCell resolves the input coordinate and evaluates the bound cell. When a fireAll rule
// axis binds several columns, every combination is evaluated in turn against the same
// output map and the last value is returned. A rule axis on which nothing fires yields no
// cells and a nil result.
func (c *Cube) GetCell(ctx context.Context, input, output map[string]any, env *Env) (any, error) {
	if output == nil {
		output = make(map[string]any)
	}
	ec := &ExecutionContext{Cube: c, Input: input, Output: output}
	lowered := lowerKeys(input)

	c.mu.RLock()
	axes := make([]*Axis, len(c.axes))
	copy(axes, c.axes)
	c.mu.RUnlock()

	bindings := make([][]*Column, 0, len(axes))
	for _, a := range axes {
		if a.axisType == AxisRule {
			fired, err := c.fireRules(ctx, a, lowered, ec, env)
			if err != nil {
				return nil, err
			}
			if len(fired) == 0 {
				return nil, nil
			}
			bindings = append(bindings, fired)
			continue
		}
		v, present := lowered[strings.ToLower(a.name)]
		if !present && a.axisType == AxisNearest {
			return nil, &CoordinateNotFoundError{CubeName: c.name, AxisName: a.name, Coordinate: input}
		}
		col, err := a.FindColumn(v)
		if err != nil {
			return nil, fmt.Errorf("cube %q axis %q: %w", c.name, a.name, err)
		}
		if col == nil {
			return nil, &CoordinateNotFoundError{CubeName: c.name, AxisName: a.name, Value: v, Coordinate: input}
		}
		bindings = append(bindings, []*Column{col})
	}

	var result any
	err := cartesian(bindings, func(ids []int64) error {
		v, err := c.evaluate(ctx, ids, ec, env)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetCellNoExecute returns the stored value at the coordinate without running
// expressions or following references. Rule axes bind by rule name or column id.
func (c *Cube) GetCellNoExecute(coord map[string]any) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids, err := c.bindExact(coord)
	if err != nil {
		return nil, err
	}
	if v, ok := c.cells[cellKey(ids)]; ok {
		return v, nil
	}
	if c.defaultValue != nil {
		return c.defaultValue, nil
	}
	return nil, &CoordinateNotFoundError{CubeName: c.name, Coordinate: coord}
}

// fireRules evaluates rule conditions in display order. A coordinate value naming a rule
// restricts evaluation to that rule.
func (c *Cube) fireRules(ctx context.Context, a *Axis, lowered map[string]any, ec *ExecutionContext, env *Env) ([]*Column, error) {
	candidates := a.columns
	if v, ok := lowered[strings.ToLower(a.name)]; ok && v != nil {
		col := ruleColumn(a, v)
		if col == nil {
			return nil, &CoordinateNotFoundError{CubeName: c.name, AxisName: a.name, Value: v, Coordinate: ec.Input}
		}
		candidates = []*Column{col}
	}

	var fired []*Column
	for _, col := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cond := col.value.(*Expression)
		v, err := env.executor().Execute(ctx, cond.Source, ec)
		if err != nil {
			return nil, fmt.Errorf("cube %q rule %q: %w", c.name, col.Name(), err)
		}
		if !Truthy(v) {
			continue
		}
		fired = append(fired, col)
		if !a.fireAll {
			break
		}
	}
	return fired, nil
}

func (c *Cube) evaluate(ctx context.Context, ids []int64, ec *ExecutionContext, env *Env) (any, error) {
	key := cellKey(ids)
	c.mu.RLock()
	v, ok := c.cells[key]
	if !ok {
		v, key = c.defaultValue, defaultResultKey
	}
	c.mu.RUnlock()
	if !ok && v == nil {
		return nil, &CoordinateNotFoundError{CubeName: c.name, Coordinate: ec.Input}
	}

	switch t := v.(type) {
	case *Expression:
		if t.Cacheable {
			if cached, hit := c.results.Load(key); hit {
				return cached, nil
			}
		}
		out, err := env.executor().Execute(ctx, t.Source, ec)
		if err != nil {
			return nil, fmt.Errorf("cube %q cell %s: %w", c.name, key, err)
		}
		if t.Cacheable {
			c.results.Store(key, out)
		}
		return out, nil
	case *Reference:
		r := env.resolver()
		if r == nil {
			return nil, IllegalState("cube %q references %q but no resolver is configured", c.name, t.Cube)
		}
		chain := append(referenceChain(ctx, c.name), t.Cube)
		for _, seen := range chain[:len(chain)-1] {
			if strings.EqualFold(seen, t.Cube) {
				return nil, IllegalState("reference cycle %s", strings.Join(chain, " -> "))
			}
		}
		target, err := r.ResolveCube(ctx, t.Cube)
		if err != nil {
			return nil, fmt.Errorf("cube %q reference %q: %w", c.name, t.Cube, err)
		}
		return target.GetCell(context.WithValue(ctx, referenceChainKey{}, chain), ec.Input, ec.Output, env)
	}
	return v, nil
}

type referenceChainKey struct{}

// referenceChain returns a copy of the cube names followed so far in this lookup, or just
// name when the lookup started here.
func referenceChain(ctx context.Context, name string) []string {
	chain, _ := ctx.Value(referenceChainKey{}).([]string)
	if len(chain) == 0 {
		return []string{name}
	}
	return append([]string(nil), chain...)
}

// cartesian calls fn once per combination, choosing one column from each binding.
func cartesian(bindings [][]*Column, fn func(ids []int64) error) error {
	ids := make([]int64, len(bindings))
	var walk func(depth int) error
	walk = func(depth int) error {
		if depth == len(bindings) {
			return fn(ids)
		}
		for _, col := range bindings[depth] {
			ids[depth] = col.id
			if err := walk(depth + 1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(0)
}
