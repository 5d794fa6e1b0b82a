// values.go
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
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// AxisType selects the matching discipline of an axis.
type AxisType string

const (
	AxisDiscrete AxisType = "DISCRETE"
	AxisRange    AxisType = "RANGE"
	AxisSet      AxisType = "SET"
	AxisNearest  AxisType = "NEAREST"
	AxisRule     AxisType = "RULE"
)

// ValueType is the type coordinate values are promoted to before matching.
type ValueType string

const (
	ValueString     ValueType = "STRING"
	ValueCIString   ValueType = "CISTRING"
	ValueLong       ValueType = "LONG"
	ValueDouble     ValueType = "DOUBLE"
	ValueDate       ValueType = "DATE"
	ValueExpression ValueType = "EXPRESSION"
	ValuePoint2D    ValueType = "POINT2D"
	ValuePoint3D    ValueType = "POINT3D"
	ValueComparable ValueType = "COMPARABLE"
)

// ColumnOrder controls how columns are kept on an axis.
type ColumnOrder string

const (
	OrderSorted  ColumnOrder = "SORTED"
	OrderDisplay ColumnOrder = "DISPLAY"
)

// Range is a half-open interval [Low, High).
type Range struct {
	Low  any
	High any
}

// RangeSet is a set of discrete values and ranges matched as a unit.
type RangeSet struct {
	Items []any
}

// Point2D is a two-dimensional reference point for NEAREST axes.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3D is a three-dimensional reference point for NEAREST axes.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Comparable values define their own ordering on COMPARABLE axes.
type Comparable interface {
	CompareTo(other any) int
}

// Distancer values define their own distance on NEAREST axes.
type Distancer interface {
	Distance(other any) float64
}

// Expression is source text run by an Executor. Cacheable results are kept per cube
// until the cube's cell cache is cleared.
type Expression struct {
	Source    string
	Cacheable bool
}

// Reference points a cell at another cube of the same application; it evaluates to that
// cube's cell for the same input.
type Reference struct {
	Cube string
}

// ParseAxisType validates an axis type name.
func ParseAxisType(s string) (AxisType, error) {
	switch t := AxisType(strings.ToUpper(s)); t {
	case AxisDiscrete, AxisRange, AxisSet, AxisNearest, AxisRule:
		return t, nil
	}
	return "", IllegalArgument("unknown axis type %q", s)
}

// ParseValueType validates a value type name.
func ParseValueType(s string) (ValueType, error) {
	switch t := ValueType(strings.ToUpper(s)); t {
	case ValueString, ValueCIString, ValueLong, ValueDouble, ValueDate, ValueExpression,
		ValuePoint2D, ValuePoint3D, ValueComparable:
		return t, nil
	}
	return "", IllegalArgument("unknown value type %q", s)
}

// ParseColumnOrder validates a column order name.
func ParseColumnOrder(s string) (ColumnOrder, error) {
	switch o := ColumnOrder(strings.ToUpper(s)); o {
	case OrderSorted, OrderDisplay:
		return o, nil
	}
	return "", IllegalArgument("unknown column order %q", s)
}

// Promote converts v to the canonical Go type of the value type.
func Promote(vt ValueType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch vt {
	case ValueString, ValueCIString:
		return toString(v)
	case ValueLong:
		return toInt64(v)
	case ValueDouble:
		return toFloat64(v)
	case ValueDate:
		return toTime(v)
	case ValueExpression:
		return toExpression(v)
	case ValuePoint2D:
		return toPoint2D(v)
	case ValuePoint3D:
		return toPoint3D(v)
	case ValueComparable:
		return toComparable(v)
	}
	return nil, IllegalArgument("unknown value type %q", vt)
}

func toString(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	}
	if n, err := toInt64(v); err == nil {
		return strconv.FormatInt(n.(int64), 10), nil
	}
	if f, err := toFloat64(v); err == nil {
		return strconv.FormatFloat(f.(float64), 'g', -1, 64), nil
	}
	return nil, IllegalArgument("cannot convert %T to string", v)
}

func toInt64(v any) (any, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, IllegalArgument("value %d overflows LONG", t)
		}
		return int64(t), nil
	case float32:
		return floatToInt64(float64(t))
	case float64:
		return floatToInt64(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, IllegalArgument("cannot convert %q to LONG", t.String())
		}
		return floatToInt64(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, IllegalArgument("cannot convert %q to LONG", t)
		}
		return n, nil
	}
	return nil, IllegalArgument("cannot convert %T to LONG", v)
}

func floatToInt64(f float64) (any, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, IllegalArgument("value %v is not a whole number", f)
	}
	return int64(f), nil
}

func toFloat64(v any) (any, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, IllegalArgument("cannot convert %q to DOUBLE", t.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, IllegalArgument("cannot convert %q to DOUBLE", t)
		}
		return f, nil
	}
	if n, err := toInt64(v); err == nil {
		return float64(n.(int64)), nil
	}
	return nil, IllegalArgument("cannot convert %T to DOUBLE", v)
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func toTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		return t.UTC(), nil
	case string:
		for _, layout := range dateLayouts {
			if tm, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return tm.UTC(), nil
			}
		}
		return nil, IllegalArgument("cannot convert %q to DATE", t)
	}
	if n, err := toInt64(v); err == nil {
		return time.UnixMilli(n.(int64)).UTC(), nil
	}
	return nil, IllegalArgument("cannot convert %T to DATE", v)
}

func toExpression(v any) (any, error) {
	switch t := v.(type) {
	case *Expression:
		return t, nil
	case Expression:
		return &t, nil
	case string:
		return &Expression{Source: t}, nil
	}
	return nil, IllegalArgument("cannot convert %T to EXPRESSION", v)
}

func toPoint2D(v any) (any, error) {
	switch t := v.(type) {
	case Point2D:
		return t, nil
	case *Point2D:
		return *t, nil
	}
	coords, err := toCoords(v, 2)
	if err != nil {
		return nil, err
	}
	return Point2D{X: coords[0], Y: coords[1]}, nil
}

func toPoint3D(v any) (any, error) {
	switch t := v.(type) {
	case Point3D:
		return t, nil
	case *Point3D:
		return *t, nil
	}
	coords, err := toCoords(v, 3)
	if err != nil {
		return nil, err
	}
	return Point3D{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func toCoords(v any, n int) ([]float64, error) {
	var raw []any
	switch t := v.(type) {
	case []any:
		raw = t
	case []float64:
		for _, f := range t {
			raw = append(raw, f)
		}
	case map[string]any:
		for _, k := range []string{"x", "y", "z"}[:n] {
			raw = append(raw, t[k])
		}
	case string:
		for _, part := range strings.Split(strings.Trim(t, "() "), ",") {
			raw = append(raw, strings.TrimSpace(part))
		}
	default:
		return nil, IllegalArgument("cannot convert %T to a %d-dimensional point", v, n)
	}
	if len(raw) != n {
		return nil, IllegalArgument("point needs %d coordinates, got %d", n, len(raw))
	}
	out := make([]float64, n)
	for i, c := range raw {
		f, err := toFloat64(c)
		if err != nil {
			return nil, err
		}
		out[i] = f.(float64)
	}
	return out, nil
}

func toComparable(v any) (any, error) {
	switch t := v.(type) {
	case string, int64, float64, bool, time.Time, Comparable:
		return t, nil
	case float32:
		return float64(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		return toFloat64(t)
	}
	if n, err := toInt64(v); err == nil {
		return n, nil
	}
	return nil, IllegalArgument("value of type %T is not comparable", v)
}

// CompareValues orders two promoted values of the same value type.
func CompareValues(a, b any) (int, error) {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmpOrdered(x, y), nil
		case float64:
			return cmpOrdered(float64(x), y), nil
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmpOrdered(x, y), nil
		case int64:
			return cmpOrdered(x, float64(y)), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			}
			return 1, nil
		}
	case Comparable:
		return x.CompareTo(b), nil
	}
	return 0, IllegalArgument("cannot compare %T with %T", a, b)
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Distance measures how far apart two promoted values are for NEAREST matching.
func Distance(a, b any) (float64, error) {
	switch x := a.(type) {
	case Distancer:
		return x.Distance(b), nil
	case Point2D:
		if y, ok := b.(Point2D); ok {
			return math.Hypot(x.X-y.X, x.Y-y.Y), nil
		}
	case Point3D:
		if y, ok := b.(Point3D); ok {
			dx, dy, dz := x.X-y.X, x.Y-y.Y, x.Z-y.Z
			return math.Sqrt(dx*dx + dy*dy + dz*dz), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return math.Abs(float64(x.Sub(y).Milliseconds())), nil
		}
	case int64, float64:
		fx, _ := toFloat64(x)
		fy, err := toFloat64(b)
		if err != nil {
			break
		}
		return math.Abs(fx.(float64) - fy.(float64)), nil
	}
	return 0, IllegalArgument("no distance defined between %T and %T", a, b)
}

// CanonicalString renders a value deterministically for hashing and discrete lookup.
// The prefix keeps values of different kinds from colliding.
func CanonicalString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "s:" + t
	case int64:
		return "l:" + strconv.FormatInt(t, 10)
	case int:
		return "l:" + strconv.Itoa(t)
	case float64:
		return "d:" + strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(t)
	case time.Time:
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	case Range:
		return "r:[" + CanonicalString(t.Low) + "," + CanonicalString(t.High) + ")"
	case RangeSet:
		items := make([]string, len(t.Items))
		for i, item := range t.Items {
			items[i] = CanonicalString(item)
		}
		sort.Strings(items)
		return "set:{" + strings.Join(items, "|") + "}"
	case Point2D:
		return fmt.Sprintf("p2:(%g,%g)", t.X, t.Y)
	case Point3D:
		return fmt.Sprintf("p3:(%g,%g,%g)", t.X, t.Y, t.Z)
	case *Expression:
		return "exp:" + strconv.FormatBool(t.Cacheable) + ":" + t.Source
	case *Reference:
		return "ref:" + strings.ToLower(t.Cube)
	}
	if data, err := json.Marshal(v); err == nil {
		return "j:" + string(data)
	}
	return fmt.Sprintf("o:%T:%v", v, v)
}
