// codec.go
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
	"strings"
	"time"
)

// Stored value kinds. Every value carries its kind so numeric types, dates and cell
// kinds survive a round trip unchanged.
const (
	kindNull       = "null"
	kindString     = "string"
	kindLong       = "long"
	kindDouble     = "double"
	kindBoolean    = "boolean"
	kindDate       = "date"
	kindRange      = "range"
	kindSet        = "set"
	kindPoint2D    = "point2d"
	kindPoint3D    = "point3d"
	kindExpression = "exp"
	kindReference  = "ref"
	kindJSON       = "json"
)

type valueJSON struct {
	Kind  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type rangeJSON struct {
	Low  valueJSON `json:"low"`
	High valueJSON `json:"high"`
}

type expressionJSON struct {
	Source string `json:"source"`
	Cache  bool   `json:"cache,omitempty"`
}

type columnJSON struct {
	ID    int64           `json:"id"`
	Value *valueJSON      `json:"value,omitempty"`
	Meta  *MetaProperties `json:"meta,omitempty"`
}

type axisJSON struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Type       AxisType        `json:"type"`
	ValueType  ValueType       `json:"valueType"`
	Order      ColumnOrder     `json:"preferredOrder"`
	HasDefault bool            `json:"hasDefault"`
	FireAll    bool            `json:"fireAll,omitempty"`
	NextColumn int64           `json:"nextColumn,omitempty"`
	Meta       *MetaProperties `json:"meta,omitempty"`
	Columns    []columnJSON    `json:"columns"`
}

type cellJSON struct {
	IDs   []int64   `json:"id"`
	Value valueJSON `json:"value"`
}

type cubeJSON struct {
	Name        string          `json:"ncube"`
	Meta        *MetaProperties `json:"meta,omitempty"`
	DefaultCell *valueJSON      `json:"defaultCellValue,omitempty"`
	Axes        []axisJSON      `json:"axes"`
	Cells       []cellJSON      `json:"cells"`
}

// MarshalJSON encodes the cube in its storage form.
func (c *Cube) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := cubeJSON{Name: c.name, Axes: make([]axisJSON, 0, len(c.axes)), Cells: make([]cellJSON, 0, len(c.cells))}
	if c.meta.Len() > 0 {
		out.Meta = c.meta
	}
	if c.defaultValue != nil {
		v, err := encodeValue(c.defaultValue)
		if err != nil {
			return nil, err
		}
		out.DefaultCell = &v
	}
	for _, a := range c.axes {
		aj := axisJSON{
			ID:         a.id,
			Name:       a.name,
			Type:       a.axisType,
			ValueType:  a.valueType,
			Order:      a.order,
			HasDefault: a.defaultCol != nil,
			FireAll:    a.fireAll,
			NextColumn: a.nextSeq,
			Columns:    make([]columnJSON, 0, a.Size()),
		}
		if a.meta.Len() > 0 {
			aj.Meta = a.meta
		}
		for _, col := range a.Columns() {
			cj := columnJSON{ID: col.id}
			if col.meta.Len() > 0 {
				cj.Meta = col.meta
			}
			if !col.IsDefault() {
				v, err := encodeValue(col.value)
				if err != nil {
					return nil, fmt.Errorf("axis %q column %d: %w", a.name, col.id, err)
				}
				cj.Value = &v
			}
			aj.Columns = append(aj.Columns, cj)
		}
		out.Axes = append(out.Axes, aj)
	}
	for key, v := range c.cells {
		enc, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", key, err)
		}
		out.Cells = append(out.Cells, cellJSON{IDs: parseCellKey(key), Value: enc})
	}
	return json.Marshal(out)
}

// FromJSON decodes a cube from its storage form, keeping column ids.
func FromJSON(data []byte) (*Cube, error) {
	var raw cubeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cube: %w", err)
	}
	c, err := NewCube(raw.Name)
	if err != nil {
		return nil, err
	}
	if raw.Meta != nil {
		c.meta = raw.Meta
	}
	if raw.DefaultCell != nil {
		v, err := decodeValue(*raw.DefaultCell)
		if err != nil {
			return nil, err
		}
		c.defaultValue = normalizeCellValue(v)
	}
	for _, aj := range raw.Axes {
		opts := []AxisOption{WithColumnOrder(aj.Order), WithFireAll(aj.FireAll)}
		a, err := NewAxis(aj.Name, aj.Type, aj.ValueType, opts...)
		if err != nil {
			return nil, err
		}
		if aj.Meta != nil {
			a.meta = aj.Meta
		}
		if _, dup := c.axisByName[strings.ToLower(a.name)]; dup {
			return nil, IllegalArgument("cube %q has duplicate axis %q", raw.Name, aj.Name)
		}
		a.id = aj.ID
		for _, cj := range aj.Columns {
			if cj.ID/columnIDFactor != aj.ID {
				return nil, IllegalArgument("column %d does not belong to axis %q", cj.ID, aj.Name)
			}
			var value any
			if cj.Value != nil {
				if value, err = decodeValue(*cj.Value); err != nil {
					return nil, err
				}
			}
			if _, err := a.addColumnWithID(cj.ID, value, cj.Meta); err != nil {
				return nil, err
			}
		}
		// ids of deleted columns stay retired
		if aj.NextColumn > a.nextSeq && aj.NextColumn < defaultColumnSeq {
			a.nextSeq = aj.NextColumn
		}
		if aj.HasDefault && a.defaultCol == nil {
			a.defaultCol = &Column{id: aj.ID*columnIDFactor + defaultColumnSeq, meta: NewMetaProperties()}
		}
		c.attach(a)
	}
	for _, cell := range raw.Cells {
		v, err := decodeValue(cell.Value)
		if err != nil {
			return nil, err
		}
		if err := c.SetCellByIDs(v, cell.IDs...); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cube) UnmarshalJSON(data []byte) error {
	decoded, err := FromJSON(data)
	if err != nil {
		return err
	}
	c.name = decoded.name
	c.axes = decoded.axes
	c.axisByName = decoded.axisByName
	c.cells = decoded.cells
	c.defaultValue = decoded.defaultValue
	c.meta = decoded.meta
	c.maxAxisID = decoded.maxAxisID
	c.clearResults()
	return nil
}

func encodeValue(v any) (valueJSON, error) {
	var kind string
	var payload any = v
	switch t := v.(type) {
	case nil:
		return valueJSON{Kind: kindNull}, nil
	case string:
		kind = kindString
	case int64, int, int32:
		kind = kindLong
	case float64, float32:
		kind = kindDouble
	case bool:
		kind = kindBoolean
	case time.Time:
		kind, payload = kindDate, t.UTC().Format(time.RFC3339Nano)
	case Range:
		low, err := encodeValue(t.Low)
		if err != nil {
			return valueJSON{}, err
		}
		high, err := encodeValue(t.High)
		if err != nil {
			return valueJSON{}, err
		}
		kind, payload = kindRange, rangeJSON{Low: low, High: high}
	case RangeSet:
		items := make([]valueJSON, 0, len(t.Items))
		for _, item := range t.Items {
			enc, err := encodeValue(item)
			if err != nil {
				return valueJSON{}, err
			}
			items = append(items, enc)
		}
		kind, payload = kindSet, items
	case Point2D:
		kind = kindPoint2D
	case Point3D:
		kind = kindPoint3D
	case *Expression:
		kind, payload = kindExpression, expressionJSON{Source: t.Source, Cache: t.Cacheable}
	case *Reference:
		kind, payload = kindReference, t.Cube
	case Comparable, Distancer:
		return valueJSON{}, IllegalArgument("values of type %T cannot be stored", v)
	default:
		kind = kindJSON
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return valueJSON{}, fmt.Errorf("encode %s value: %w", kind, err)
	}
	return valueJSON{Kind: kind, Value: data}, nil
}

func decodeValue(v valueJSON) (any, error) {
	switch v.Kind {
	case kindNull, "":
		return nil, nil
	case kindString:
		var s string
		err := json.Unmarshal(v.Value, &s)
		return s, wrapDecode(v.Kind, err)
	case kindLong:
		var n int64
		err := json.Unmarshal(v.Value, &n)
		return n, wrapDecode(v.Kind, err)
	case kindDouble:
		var f float64
		err := json.Unmarshal(v.Value, &f)
		return f, wrapDecode(v.Kind, err)
	case kindBoolean:
		var b bool
		err := json.Unmarshal(v.Value, &b)
		return b, wrapDecode(v.Kind, err)
	case kindDate:
		var s string
		if err := json.Unmarshal(v.Value, &s); err != nil {
			return nil, wrapDecode(v.Kind, err)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		return t.UTC(), wrapDecode(v.Kind, err)
	case kindRange:
		var r rangeJSON
		if err := json.Unmarshal(v.Value, &r); err != nil {
			return nil, wrapDecode(v.Kind, err)
		}
		low, err := decodeValue(r.Low)
		if err != nil {
			return nil, err
		}
		high, err := decodeValue(r.High)
		if err != nil {
			return nil, err
		}
		return Range{Low: low, High: high}, nil
	case kindSet:
		var items []valueJSON
		if err := json.Unmarshal(v.Value, &items); err != nil {
			return nil, wrapDecode(v.Kind, err)
		}
		out := RangeSet{Items: make([]any, 0, len(items))}
		for _, item := range items {
			d, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, d)
		}
		return out, nil
	case kindPoint2D:
		var p Point2D
		err := json.Unmarshal(v.Value, &p)
		return p, wrapDecode(v.Kind, err)
	case kindPoint3D:
		var p Point3D
		err := json.Unmarshal(v.Value, &p)
		return p, wrapDecode(v.Kind, err)
	case kindExpression:
		var e expressionJSON
		if err := json.Unmarshal(v.Value, &e); err != nil {
			return nil, wrapDecode(v.Kind, err)
		}
		return &Expression{Source: e.Source, Cacheable: e.Cache}, nil
	case kindReference:
		var name string
		if err := json.Unmarshal(v.Value, &name); err != nil {
			return nil, wrapDecode(v.Kind, err)
		}
		return &Reference{Cube: name}, nil
	case kindJSON:
		var out any
		err := json.Unmarshal(v.Value, &out)
		return out, wrapDecode(v.Kind, err)
	}
	return nil, IllegalArgument("unknown stored value type %q", v.Kind)
}

func wrapDecode(kind string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("decode %s value: %w", kind, err)
}
