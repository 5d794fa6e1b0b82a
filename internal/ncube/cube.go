// cube.go
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
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MetaCache is the cube meta-property that, when false, marks artifacts derived from
// the cube as non-cacheable.
const MetaCache = "cache"

// Cube is a named set of axes and a sparse map from column-id tuples to cell values.
// Lookups may run concurrently with each other; structural changes must not run
// concurrently with lookups on the same instance. Cached cubes are shared, so callers
// Clone before editing one.
type Cube struct {
	name         string
	axes         []*Axis
	axisByName   map[string]*Axis
	cells        map[string]any
	defaultValue any
	meta         *MetaProperties
	maxAxisID    int64

	mu      sync.RWMutex
	results sync.Map
}

// NewCube returns an empty cube.
func NewCube(name string) (*Cube, error) {
	if err := ValidateCubeName(name); err != nil {
		return nil, err
	}
	return &Cube{
		name:       name,
		axisByName: make(map[string]*Axis),
		cells:      make(map[string]any),
		meta:       NewMetaProperties(),
	}, nil
}

func (c *Cube) Name() string { return c.name }

// SetName renames the cube in memory. The content hash is unaffected.
func (c *Cube) SetName(name string) error {
	if err := ValidateCubeName(name); err != nil {
		return err
	}
	c.name = name
	return nil
}

// Meta returns the cube's meta-properties.
func (c *Cube) Meta() *MetaProperties { return c.meta }

// IsCacheable is false when the cube carries cache=false.
func (c *Cube) IsCacheable() bool {
	v, ok := c.meta.Get(MetaCache)
	if !ok {
		return true
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		return err != nil || b
	}
	return true
}

func (c *Cube) DefaultCellValue() any { return c.defaultValue }

// SetDefaultCellValue sets the value returned for coordinates with no cell.
func (c *Cube) SetDefaultCellValue(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultValue = normalizeCellValue(v)
	c.results.Delete(defaultResultKey)
}

// Axes returns the axes in insertion order.
func (c *Cube) Axes() []*Axis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Axis, len(c.axes))
	copy(out, c.axes)
	return out
}

// Axis returns the axis with the given case-insensitive name, or nil.
func (c *Cube) Axis(name string) *Axis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.axisByName[strings.ToLower(name)]
}

// NumDimensions is the number of axes.
func (c *Cube) NumDimensions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.axes)
}

// AddAxis attaches an axis and assigns it a fresh axis id. Existing cells are moved to
// the new axis's default column when it has one and dropped otherwise.
func (c *Cube) AddAxis(a *Axis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	lower := strings.ToLower(a.name)
	if _, ok := c.axisByName[lower]; ok {
		return IllegalArgument("cube %q already has an axis named %q", c.name, a.name)
	}
	c.maxAxisID++
	a.reassignID(c.maxAxisID)
	c.attach(a)

	if len(c.cells) > 0 {
		moved := make(map[string]any, len(c.cells))
		if a.defaultCol != nil {
			for key, v := range c.cells {
				moved[cellKey(append(parseCellKey(key), a.defaultCol.id))] = v
			}
		}
		c.cells = moved
	}
	c.clearResults()
	return nil
}

func (c *Cube) attach(a *Axis) {
	c.axes = append(c.axes, a)
	c.axisByName[strings.ToLower(a.name)] = a
	if a.id > c.maxAxisID {
		c.maxAxisID = a.id
	}
}

// DeleteAxis removes an axis and every cell.
func (c *Cube) DeleteAxis(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	lower := strings.ToLower(name)
	a, ok := c.axisByName[lower]
	if !ok {
		return false
	}
	delete(c.axisByName, lower)
	for i, x := range c.axes {
		if x == a {
			c.axes = append(c.axes[:i], c.axes[i+1:]...)
			break
		}
	}
	c.cells = make(map[string]any)
	c.clearResults()
	return true
}

// RenameAxis changes an axis name. A case-only change is allowed.
func (c *Cube) RenameAxis(oldName, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(newName) == "" {
		return IllegalArgument("axis name cannot be empty")
	}
	a, ok := c.axisByName[strings.ToLower(oldName)]
	if !ok {
		return IllegalArgument("axis %q not found on cube %q", oldName, c.name)
	}
	if other, ok := c.axisByName[strings.ToLower(newName)]; ok && other != a {
		return IllegalArgument("cube %q already has an axis named %q", c.name, newName)
	}
	delete(c.axisByName, strings.ToLower(oldName))
	a.name = newName
	c.axisByName[strings.ToLower(newName)] = a
	return nil
}

// AddColumn adds a column to the named axis.
func (c *Cube) AddColumn(axisName string, value any, opts ...ColumnOption) (*Column, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.axisByName[strings.ToLower(axisName)]
	if !ok {
		return nil, IllegalArgument("axis %q not found on cube %q", axisName, c.name)
	}
	return a.AddColumn(value, opts...)
}

// DeleteColumn removes a column and every cell that references it.
func (c *Cube) DeleteColumn(axisName string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.axisByName[strings.ToLower(axisName)]
	if !ok {
		return IllegalArgument("axis %q not found on cube %q", axisName, c.name)
	}
	if !a.DeleteColumn(id) {
		return IllegalArgument("column %d not found on axis %q", id, axisName)
	}
	for key := range c.cells {
		for _, cid := range parseCellKey(key) {
			if cid == id {
				delete(c.cells, key)
				break
			}
		}
	}
	c.clearResults()
	return nil
}

// SetCell stores a value at the coordinate. Every axis must bind to exactly one column:
// rule axes by rule name or column id, other axes by value. Axes missing from the
// coordinate bind to their default column.
func (c *Cube) SetCell(value any, coord map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, err := c.bindExact(coord)
	if err != nil {
		return err
	}
	key := cellKey(ids)
	c.cells[key] = normalizeCellValue(value)
	c.results.Delete(key)
	return nil
}

// SetCellByIDs stores a value at an explicit column-id tuple, one id per axis.
func (c *Cube) SetCellByIDs(value any, ids ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIDs(ids); err != nil {
		return err
	}
	key := cellKey(ids)
	c.cells[key] = normalizeCellValue(value)
	c.results.Delete(key)
	return nil
}

// RemoveCell deletes the cell at the coordinate, returning the old value.
func (c *Cube) RemoveCell(coord map[string]any) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, err := c.bindExact(coord)
	if err != nil {
		return nil, false, err
	}
	key := cellKey(ids)
	old, ok := c.cells[key]
	delete(c.cells, key)
	c.results.Delete(key)
	return old, ok, nil
}

// GetCellByIDs returns the raw stored value at a column-id tuple.
func (c *Cube) GetCellByIDs(ids ...int64) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.cells[cellKey(ids)]
	return v, ok
}

// CellCount returns the number of stored cells.
func (c *Cube) CellCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cells)
}

// ClearCells removes every cell.
func (c *Cube) ClearCells() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cells = make(map[string]any)
	c.clearResults()
}

// ClearCellCache drops cached expression results. The cube itself is untouched.
func (c *Cube) ClearCellCache() {
	c.clearResults()
}

func (c *Cube) clearResults() {
	c.results.Range(func(k, _ any) bool {
		c.results.Delete(k)
		return true
	})
}

// Clone returns a deep copy sharing no mutable state. Cell values are copied by
// reference; expressions and references are treated as immutable.
func (c *Cube) Clone() *Cube {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := &Cube{
		name:         c.name,
		axisByName:   make(map[string]*Axis, len(c.axes)),
		cells:        make(map[string]any, len(c.cells)),
		defaultValue: c.defaultValue,
		meta:         c.meta.Clone(),
	}
	for _, a := range c.axes {
		out.attach(a.clone())
	}
	out.maxAxisID = c.maxAxisID
	for k, v := range c.cells {
		out.cells[k] = v
	}
	return out
}

// bindExact maps a coordinate to one column per axis without running rules.
func (c *Cube) bindExact(coord map[string]any) ([]int64, error) {
	lowered := lowerKeys(coord)
	ids := make([]int64, 0, len(c.axes))
	for _, a := range c.axes {
		v, present := lowered[strings.ToLower(a.name)]
		var col *Column
		switch {
		case a.axisType == AxisRule:
			col = ruleColumn(a, v)
		case !present || v == nil:
			col = a.defaultCol
		default:
			var err error
			if col, err = a.FindColumn(v); err != nil {
				return nil, err
			}
		}
		if col == nil {
			return nil, &CoordinateNotFoundError{CubeName: c.name, AxisName: a.name, Value: v, Coordinate: coord}
		}
		ids = append(ids, col.id)
	}
	return ids, nil
}

func ruleColumn(a *Axis, v any) *Column {
	switch t := v.(type) {
	case string:
		return a.ColumnByName(t)
	case nil:
		return nil
	}
	id, err := toInt64(v)
	if err != nil {
		return nil
	}
	col := a.ColumnByID(id.(int64))
	if col != nil && col.IsDefault() {
		return nil
	}
	return col
}

func (c *Cube) checkIDs(ids []int64) error {
	if len(ids) != len(c.axes) {
		return IllegalArgument("cube %q needs %d column ids, got %d", c.name, len(c.axes), len(ids))
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		axisID := id / columnIDFactor
		if seen[axisID] {
			return IllegalArgument("column ids %v bind axis %d twice", ids, axisID)
		}
		seen[axisID] = true
		a := c.axisByID(axisID)
		if a == nil || a.ColumnByID(id) == nil {
			return IllegalArgument("column %d does not exist in cube %q", id, c.name)
		}
	}
	return nil
}

func (c *Cube) axisByID(id int64) *Axis {
	for _, a := range c.axes {
		if a.id == id {
			return a
		}
	}
	return nil
}

// cellKey canonicalizes a column-id tuple. Ids carry their axis id in the high digits,
// so sorting makes the key independent of axis insertion order.
func cellKey(ids []int64) string {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func parseCellKey(key string) []int64 {
	if key == "" {
		return nil
	}
	parts := strings.Split(key, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// normalizeCellValue folds numeric kinds so equal values hash the same before and
// after a storage round trip.
func normalizeCellValue(v any) any {
	switch t := v.(type) {
	case int, int8, int16, int32, uint, uint8, uint16, uint32:
		n, _ := toInt64(t)
		return n
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	case float32:
		return float64(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case Expression:
		return &t
	case Reference:
		return &t
	}
	return v
}
