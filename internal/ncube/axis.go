// axis.go
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
	"sort"
	"strings"
)

// Axis is one dimension of a cube. Columns are kept in column order: sorted by value
// for SORTED axes, insertion order for DISPLAY axes. The default column, when present,
// is held apart and matches any value no other column matches.
type Axis struct {
	id         int64
	name       string
	axisType   AxisType
	valueType  ValueType
	order      ColumnOrder
	fireAll    bool
	columns    []*Column
	defaultCol *Column
	nextSeq    int64
	discrete   map[string]*Column
	meta       *MetaProperties
}

// AxisOption configures a new axis.
type AxisOption func(*Axis)

// WithDefaultColumn gives the axis a default column.
func WithDefaultColumn() AxisOption {
	return func(a *Axis) {
		a.defaultCol = &Column{meta: NewMetaProperties()}
	}
}

// WithColumnOrder sets SORTED or DISPLAY column order. RULE axes ignore it.
func WithColumnOrder(order ColumnOrder) AxisOption {
	return func(a *Axis) { a.order = order }
}

// WithFireAll sets whether every true rule fires (the default) or only the first.
func WithFireAll(fireAll bool) AxisOption {
	return func(a *Axis) { a.fireAll = fireAll }
}

// WithAxisMeta sets an axis meta-property.
func WithAxisMeta(key string, value any) AxisOption {
	return func(a *Axis) { a.meta.Set(key, value) }
}

// NewAxis validates the combination of axis type, value type and options.
func NewAxis(name string, axisType AxisType, valueType ValueType, opts ...AxisOption) (*Axis, error) {
	if strings.TrimSpace(name) == "" {
		return nil, IllegalArgument("axis name cannot be empty")
	}
	a := &Axis{
		name:      name,
		axisType:  axisType,
		valueType: valueType,
		order:     OrderSorted,
		fireAll:   axisType == AxisRule,
		nextSeq:   1,
		discrete:  make(map[string]*Column),
		meta:      NewMetaProperties(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if _, err := ParseAxisType(string(axisType)); err != nil {
		return nil, err
	}
	if _, err := ParseValueType(string(valueType)); err != nil {
		return nil, err
	}
	if _, err := ParseColumnOrder(string(a.order)); err != nil {
		return nil, err
	}

	switch axisType {
	case AxisRule:
		if valueType != ValueExpression {
			return nil, IllegalArgument("rule axis %q must have value type %s", name, ValueExpression)
		}
		if a.defaultCol != nil {
			return nil, IllegalArgument("rule axis %q cannot have a default column", name)
		}
		a.order = OrderDisplay
	case AxisNearest:
		switch valueType {
		case ValueLong, ValueDouble, ValueDate, ValuePoint2D, ValuePoint3D, ValueComparable:
		default:
			return nil, IllegalArgument("nearest axis %q cannot use value type %s", name, valueType)
		}
		if a.defaultCol != nil {
			return nil, IllegalArgument("nearest axis %q cannot have a default column", name)
		}
		a.fireAll = false
	case AxisRange, AxisSet:
		switch valueType {
		case ValueExpression, ValuePoint2D, ValuePoint3D:
			return nil, IllegalArgument("%s axis %q cannot use value type %s", axisType, name, valueType)
		}
		a.fireAll = false
	default:
		if valueType == ValueExpression {
			return nil, IllegalArgument("only rule axes hold %s values", ValueExpression)
		}
		a.fireAll = false
	}
	if a.defaultCol != nil {
		a.defaultCol.id = defaultColumnSeq
	}
	return a, nil
}

func (a *Axis) ID() int64 { return a.id }
func (a *Axis) Name() string { return a.name }
func (a *Axis) Type() AxisType { return a.axisType }
func (a *Axis) ValueType() ValueType { return a.valueType }
func (a *Axis) ColumnOrder() ColumnOrder { return a.order }
func (a *Axis) FireAll() bool { return a.fireAll }
func (a *Axis) HasDefaultColumn() bool { return a.defaultCol != nil }
func (a *Axis) DefaultColumn() *Column { return a.defaultCol }
func (a *Axis) Meta() *MetaProperties { return a.meta }

// Size counts columns including the default column.
func (a *Axis) Size() int {
	if a.defaultCol != nil {
		return len(a.columns) + 1
	}
	return len(a.columns)
}

// Columns returns the columns in column order, default column last.
func (a *Axis) Columns() []*Column {
	out := make([]*Column, 0, a.Size())
	out = append(out, a.columns...)
	if a.defaultCol != nil {
		out = append(out, a.defaultCol)
	}
	return out
}

// ColumnByID returns the column with the given id, or nil.
func (a *Axis) ColumnByID(id int64) *Column {
	if a.defaultCol != nil && a.defaultCol.id == id {
		return a.defaultCol
	}
	for _, c := range a.columns {
		if c.id == id {
			return c
		}
	}
	return nil
}

// ColumnByName returns the column carrying the given rule name, or nil.
func (a *Axis) ColumnByName(name string) *Column {
	for _, c := range a.columns {
		if c.hasName(name) {
			return c
		}
	}
	return nil
}

// AddColumn validates and adds a column, returning it. Values that would make matching
// ambiguous are rejected.
func (a *Axis) AddColumn(value any, opts ...ColumnOption) (*Column, error) {
	col, err := a.prepareColumn(value, opts)
	if err != nil {
		return nil, err
	}
	col.id = a.id*columnIDFactor + a.nextSeq
	a.nextSeq++
	a.insert(col)
	return col, nil
}

// addColumnWithID restores a column with a known id while decoding.
func (a *Axis) addColumnWithID(id int64, value any, meta *MetaProperties) (*Column, error) {
	seq := id % columnIDFactor
	if seq == defaultColumnSeq {
		if a.defaultCol == nil {
			a.defaultCol = &Column{meta: NewMetaProperties()}
		}
		a.defaultCol.id = id
		if meta != nil {
			a.defaultCol.meta = meta.Clone()
		}
		return a.defaultCol, nil
	}
	if a.ColumnByID(id) != nil {
		return nil, IllegalArgument("duplicate column id %d on axis %q", id, a.name)
	}
	col, err := a.prepareColumn(value, nil)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		col.meta = meta.Clone()
	}
	col.id = id
	if seq >= a.nextSeq {
		a.nextSeq = seq + 1
	}
	a.insert(col)
	return col, nil
}

func (a *Axis) prepareColumn(value any, opts []ColumnOption) (*Column, error) {
	if value == nil {
		return nil, IllegalArgument("column value on axis %q cannot be nil; use a default column", a.name)
	}
	std, err := a.standardize(value)
	if err != nil {
		return nil, err
	}
	col := &Column{value: std, meta: NewMetaProperties()}
	for _, opt := range opts {
		opt(col)
	}
	if err := a.checkConflicts(col, nil); err != nil {
		return nil, err
	}
	return col, nil
}

// UpdateColumn replaces a column's value, keeping its id and meta-properties.
func (a *Axis) UpdateColumn(id int64, value any) error {
	col := a.ColumnByID(id)
	if col == nil || col.IsDefault() {
		return IllegalArgument("column %d not found on axis %q", id, a.name)
	}
	std, err := a.standardize(value)
	if err != nil {
		return err
	}
	candidate := &Column{id: id, value: std, meta: col.meta}
	if err := a.checkConflicts(candidate, col); err != nil {
		return err
	}
	a.remove(col)
	col.value = std
	a.insert(col)
	return nil
}

// DeleteColumn removes a column by id. The id is never handed out again.
func (a *Axis) DeleteColumn(id int64) bool {
	if a.defaultCol != nil && a.defaultCol.id == id {
		a.defaultCol = nil
		return true
	}
	col := a.ColumnByID(id)
	if col == nil {
		return false
	}
	a.remove(col)
	return true
}

func (a *Axis) insert(col *Column) {
	if a.axisType == AxisDiscrete {
		a.discrete[a.discreteKey(col.value)] = col
	}
	if a.order == OrderDisplay {
		col.displayOrder = len(a.columns)
		a.columns = append(a.columns, col)
		return
	}
	i := sort.Search(len(a.columns), func(i int) bool {
		return lessColumnValue(col.value, a.columns[i].value)
	})
	a.columns = append(a.columns, nil)
	copy(a.columns[i+1:], a.columns[i:])
	a.columns[i] = col
	a.renumber()
}

func (a *Axis) remove(col *Column) {
	if a.axisType == AxisDiscrete {
		delete(a.discrete, a.discreteKey(col.value))
	}
	for i, c := range a.columns {
		if c == col {
			a.columns = append(a.columns[:i], a.columns[i+1:]...)
			break
		}
	}
	a.renumber()
}

func (a *Axis) renumber() {
	for i, c := range a.columns {
		c.displayOrder = i
	}
}

// reassignID moves the axis and its columns to a new axis id inside a cube.
func (a *Axis) reassignID(id int64) {
	a.id = id
	for _, c := range a.columns {
		c.id = id*columnIDFactor + c.seq()
	}
	if a.defaultCol != nil {
		a.defaultCol.id = id*columnIDFactor + defaultColumnSeq
	}
}

func (a *Axis) standardize(value any) (any, error) {
	switch a.axisType {
	case AxisRange:
		return a.standardizeRange(value)
	case AxisSet:
		return a.standardizeSet(value)
	}
	v, err := Promote(a.valueType, value)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, IllegalArgument("column value on axis %q cannot be nil", a.name)
	}
	return v, nil
}

func (a *Axis) standardizeRange(value any) (Range, error) {
	var low, high any
	switch t := value.(type) {
	case Range:
		low, high = t.Low, t.High
	case *Range:
		low, high = t.Low, t.High
	case []any:
		if len(t) != 2 {
			return Range{}, IllegalArgument("range on axis %q needs exactly two bounds", a.name)
		}
		low, high = t[0], t[1]
	default:
		return Range{}, IllegalArgument("axis %q expects a range, got %T", a.name, value)
	}
	pl, err := Promote(a.valueType, low)
	if err != nil {
		return Range{}, err
	}
	ph, err := Promote(a.valueType, high)
	if err != nil {
		return Range{}, err
	}
	if pl == nil || ph == nil {
		return Range{}, IllegalArgument("range bounds on axis %q cannot be nil", a.name)
	}
	r := Range{Low: a.foldCase(pl), High: a.foldCase(ph)}
	cmp, err := CompareValues(r.Low, r.High)
	if err != nil {
		return Range{}, err
	}
	if cmp >= 0 {
		return Range{}, IllegalArgument("range [%v, %v) on axis %q is empty", r.Low, r.High, a.name)
	}
	return r, nil
}

func (a *Axis) standardizeSet(value any) (RangeSet, error) {
	var items []any
	switch t := value.(type) {
	case RangeSet:
		items = t.Items
	case *RangeSet:
		items = t.Items
	case []any:
		items = t
	default:
		items = []any{value}
	}
	if len(items) == 0 {
		return RangeSet{}, IllegalArgument("set on axis %q cannot be empty", a.name)
	}
	out := RangeSet{Items: make([]any, 0, len(items))}
	for _, item := range items {
		switch item.(type) {
		case Range, *Range, []any:
			r, err := a.standardizeRange(item)
			if err != nil {
				return RangeSet{}, err
			}
			out.Items = append(out.Items, r)
		default:
			v, err := Promote(a.valueType, item)
			if err != nil {
				return RangeSet{}, err
			}
			if v == nil {
				return RangeSet{}, IllegalArgument("set member on axis %q cannot be nil", a.name)
			}
			out.Items = append(out.Items, a.foldCase(v))
		}
	}
	for i := range out.Items {
		for j := i + 1; j < len(out.Items); j++ {
			if itemsOverlap(out.Items[i], out.Items[j]) {
				return RangeSet{}, IllegalArgument("set on axis %q has overlapping members", a.name)
			}
		}
	}
	return out, nil
}

func (a *Axis) foldCase(v any) any {
	if s, ok := v.(string); ok && a.valueType == ValueCIString {
		return strings.ToLower(s)
	}
	return v
}

func (a *Axis) discreteKey(v any) string {
	return CanonicalString(a.foldCase(v))
}

// checkConflicts rejects a column whose match key collides with an existing column.
// skip is the column being replaced, if any.
func (a *Axis) checkConflicts(col *Column, skip *Column) error {
	for _, other := range a.columns {
		if other == skip {
			continue
		}
		switch a.axisType {
		case AxisDiscrete, AxisNearest:
			if a.discreteKey(other.value) == a.discreteKey(col.value) {
				return IllegalArgument("axis %q already has a column %v", a.name, col.value)
			}
		case AxisRange:
			if itemsOverlap(col.value, other.value) {
				return IllegalArgument("range %v overlaps %v on axis %q", col.value, other.value, a.name)
			}
		case AxisSet:
			for _, x := range col.value.(RangeSet).Items {
				for _, y := range other.value.(RangeSet).Items {
					if itemsOverlap(x, y) {
						return IllegalArgument("set member %v overlaps %v on axis %q", x, y, a.name)
					}
				}
			}
		case AxisRule:
			if name := col.Name(); name != "" && other.hasName(name) {
				return IllegalArgument("axis %q already has a rule named %q", a.name, name)
			}
		}
	}
	return nil
}

// itemsOverlap compares two range-or-value items; values that cannot be ordered are
// compared by canonical form.
func itemsOverlap(x, y any) bool {
	rx, xr := x.(Range)
	ry, yr := y.(Range)
	switch {
	case xr && yr:
		return lessValue(rx.Low, ry.High) && lessValue(ry.Low, rx.High)
	case xr:
		return rangeContains(rx, y)
	case yr:
		return rangeContains(ry, x)
	}
	return CanonicalString(x) == CanonicalString(y)
}

func rangeContains(r Range, v any) bool {
	lo, err := CompareValues(r.Low, v)
	if err != nil || lo > 0 {
		return false
	}
	hi, err := CompareValues(v, r.High)
	return err == nil && hi < 0
}

func lessValue(a, b any) bool {
	cmp, err := CompareValues(a, b)
	if err != nil {
		return CanonicalString(a) < CanonicalString(b)
	}
	return cmp < 0
}

// lessColumnValue orders column values for SORTED axes: ranges by low bound, sets by
// their smallest member.
func lessColumnValue(a, b any) bool {
	return lessValue(sortKey(a), sortKey(b))
}

func sortKey(v any) any {
	switch t := v.(type) {
	case Range:
		return t.Low
	case RangeSet:
		var min any
		for _, item := range t.Items {
			k := sortKey(item)
			if min == nil || lessValue(k, min) {
				min = k
			}
		}
		return min
	}
	return v
}

// FindColumn binds a coordinate value to a column. It returns nil without error when
// nothing matches and there is no default column. RULE axes are evaluated by the cube.
func (a *Axis) FindColumn(value any) (*Column, error) {
	if a.axisType == AxisRule {
		return nil, IllegalState("rule axis %q is evaluated through an executor", a.name)
	}
	if value == nil {
		if a.axisType == AxisNearest {
			return nil, nil
		}
		return a.defaultCol, nil
	}
	v, err := Promote(a.valueType, value)
	if err != nil {
		return nil, err
	}
	v = a.foldCase(v)

	var found *Column
	switch a.axisType {
	case AxisDiscrete:
		found = a.discrete[a.discreteKey(v)]
	case AxisRange:
		found = a.findRange(v)
	case AxisSet:
		found = a.findSet(v)
	case AxisNearest:
		return a.findNearest(v)
	}
	if found == nil {
		return a.defaultCol, nil
	}
	return found, nil
}

func (a *Axis) findRange(v any) *Column {
	// columns of a RANGE axis in SORTED order are ordered by low bound
	if a.order == OrderSorted {
		i := sort.Search(len(a.columns), func(i int) bool {
			return lessValue(v, a.columns[i].value.(Range).Low)
		})
		if i > 0 && rangeContains(a.columns[i-1].value.(Range), v) {
			return a.columns[i-1]
		}
		return nil
	}
	for _, c := range a.columns {
		if rangeContains(c.value.(Range), v) {
			return c
		}
	}
	return nil
}

func (a *Axis) findSet(v any) *Column {
	for _, c := range a.columns {
		for _, item := range c.value.(RangeSet).Items {
			if itemsOverlap(item, v) {
				return c
			}
		}
	}
	return nil
}

func (a *Axis) findNearest(v any) (*Column, error) {
	var best *Column
	bestDist := 0.0
	for _, c := range a.columns {
		d, err := Distance(v, c.value)
		if err != nil {
			return nil, err
		}
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, nil
}

func (a *Axis) clone() *Axis {
	out := &Axis{
		id:        a.id,
		name:      a.name,
		axisType:  a.axisType,
		valueType: a.valueType,
		order:     a.order,
		fireAll:   a.fireAll,
		nextSeq:   a.nextSeq,
		discrete:  make(map[string]*Column, len(a.discrete)),
		meta:      a.meta.Clone(),
		columns:   make([]*Column, len(a.columns)),
	}
	for i, c := range a.columns {
		cc := c.clone()
		out.columns[i] = cc
		if out.axisType == AxisDiscrete {
			out.discrete[out.discreteKey(cc.value)] = cc
		}
	}
	if a.defaultCol != nil {
		out.defaultCol = a.defaultCol.clone()
	}
	return out
}
