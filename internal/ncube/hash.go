// hash.go
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
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"sort"
	"strings"
)

// SHA1 returns the upper-case hex content hash of the cube. The hash ignores the cube
// name, column ids, display order and the order in which anything was added; it covers
// meta-properties, the default cell, every axis's matching configuration and columns,
// and every cell by semantic coordinate and value kind.
func (c *Cube) SHA1() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := sha1.New()
	writeMeta(h, "cube", c.meta)
	writeField(h, "default", cellCanonical(c.defaultValue))

	axes := make([]*Axis, len(c.axes))
	copy(axes, c.axes)
	sort.Slice(axes, func(i, j int) bool {
		return strings.ToLower(axes[i].name) < strings.ToLower(axes[j].name)
	})

	for _, a := range axes {
		writeField(h, "axis", strings.ToLower(a.name))
		writeField(h, "type", string(a.axisType))
		writeField(h, "valueType", string(a.valueType))
		writeField(h, "order", string(a.order))
		writeField(h, "hasDefault", fmt.Sprint(a.defaultCol != nil))
		writeField(h, "fireAll", fmt.Sprint(a.fireAll))
		writeMeta(h, "axisMeta", a.meta)

		cols := make([]string, 0, len(a.columns))
		for _, col := range a.columns {
			cols = append(cols, columnCanonical(col))
		}
		sort.Strings(cols)
		for _, s := range cols {
			writeField(h, "column", s)
		}
	}

	cells := make([]string, 0, len(c.cells))
	for key, v := range c.cells {
		cells = append(cells, c.semanticCoordinate(parseCellKey(key), axes)+"=>"+cellCanonical(v))
	}
	sort.Strings(cells)
	for _, s := range cells {
		writeField(h, "cell", s)
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

// semanticCoordinate renders a cell's column ids as the values they stand for, in
// case-folded axis-name order.
func (c *Cube) semanticCoordinate(ids []int64, sortedAxes []*Axis) string {
	byAxis := make(map[int64]int64, len(ids))
	for _, id := range ids {
		byAxis[id/columnIDFactor] = id
	}
	parts := make([]string, 0, len(sortedAxes))
	for _, a := range sortedAxes {
		col := a.ColumnByID(byAxis[a.id])
		s := "?"
		if col != nil {
			s = columnCanonical(col)
		}
		parts = append(parts, strings.ToLower(a.name)+":"+s)
	}
	return strings.Join(parts, ";")
}

func columnCanonical(col *Column) string {
	if col.IsDefault() {
		return "<default>"
	}
	s := CanonicalString(col.value)
	if name := col.Name(); name != "" {
		s += "#" + strings.ToLower(name)
	}
	return s
}

// cellCanonical tags the value kind so a literal and an expression with the same text
// never collide.
func cellCanonical(v any) string {
	switch v.(type) {
	case *Expression:
		return "expression|" + CanonicalString(v)
	case *Reference:
		return "reference|" + CanonicalString(v)
	case nil:
		return "none"
	}
	return "literal|" + CanonicalString(v)
}

func writeMeta(h hash.Hash, label string, m *MetaProperties) {
	keys := m.Keys()
	lowered := make([]string, len(keys))
	for i, k := range keys {
		lowered[i] = strings.ToLower(k)
	}
	sort.Strings(lowered)
	for _, k := range lowered {
		v, _ := m.Get(k)
		data, err := json.Marshal(v)
		if err != nil {
			data = []byte(fmt.Sprint(v))
		}
		writeField(h, label, k+"="+string(data))
	}
}

func writeField(h hash.Hash, label, value string) {
	fmt.Fprintf(h, "%s:%d:%s\n", label, len(value), value)
}
