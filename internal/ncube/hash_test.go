package ncube

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cubeSpec struct {
	stateType  AxisType
	valueType  ValueType
	order      ColumnOrder
	hasDefault bool
	stateName  string
}

func defaultSpec() cubeSpec {
	return cubeSpec{
		stateType:  AxisDiscrete,
		valueType:  ValueString,
		order:      OrderSorted,
		hasDefault: true,
		stateName:  "state",
	}
}

// buildRates builds the same cube in either insertion order.
func buildRates(t *testing.T, s cubeSpec, reversed bool) *Cube {
	t.Helper()
	c, err := NewCube("rates")
	require.NoError(t, err)

	opts := []AxisOption{WithColumnOrder(s.order)}
	if s.hasDefault {
		opts = append(opts, WithDefaultColumn())
	}
	state := mustAxis(t, s.stateName, s.stateType, s.valueType, opts...)
	age := mustAxis(t, "age", AxisRange, ValueLong)
	states := []any{"OH", "TX", "CA"}
	ranges := []any{Range{Low: 0, High: 18}, Range{Low: 18, High: 65}}
	if s.stateType == AxisSet {
		states = []any{[]any{"OH"}, []any{"TX"}, []any{"CA"}}
	}
	cells := []struct {
		value any
		coord map[string]any
	}{
		{1, map[string]any{s.stateName: "OH", "age": 10}},
		{2, map[string]any{s.stateName: "TX", "age": 30}},
		{Expression{Source: "x + 1"}, map[string]any{s.stateName: "CA", "age": 10}},
	}

	if reversed {
		require.NoError(t, c.AddAxis(age))
		require.NoError(t, c.AddAxis(state))
		for i := len(ranges) - 1; i >= 0; i-- {
			_, err := c.AddColumn("age", ranges[i])
			require.NoError(t, err)
		}
		for i := len(states) - 1; i >= 0; i-- {
			_, err := c.AddColumn(s.stateName, states[i])
			require.NoError(t, err)
		}
		for i := len(cells) - 1; i >= 0; i-- {
			require.NoError(t, c.SetCell(cells[i].value, cells[i].coord))
		}
		c.Meta().Set("owner", "pricing")
		c.Meta().Set("Team", "core")
		return c
	}

	require.NoError(t, c.AddAxis(state))
	require.NoError(t, c.AddAxis(age))
	for _, v := range states {
		_, err := c.AddColumn(s.stateName, v)
		require.NoError(t, err)
	}
	for _, r := range ranges {
		_, err := c.AddColumn("age", r)
		require.NoError(t, err)
	}
	for _, cell := range cells {
		require.NoError(t, c.SetCell(cell.value, cell.coord))
	}
	c.Meta().Set("team", "core")
	c.Meta().Set("owner", "pricing")
	return c
}

func TestHashOrderIndependence(t *testing.T) {
	a := buildRates(t, defaultSpec(), false)
	b := buildRates(t, defaultSpec(), true)
	assert.Len(t, a.SHA1(), 40)
	assert.Equal(t, a.SHA1(), b.SHA1())
	assert.Equal(t, a.SHA1(), a.SHA1(), "hash is stable across calls")
}

func TestHashIgnoresCubeName(t *testing.T) {
	a := buildRates(t, defaultSpec(), false)
	b := buildRates(t, defaultSpec(), false)
	require.NoError(t, b.SetName("other"))
	assert.Equal(t, a.SHA1(), b.SHA1())
}

func TestHashSensitivity(t *testing.T) {
	base := buildRates(t, defaultSpec(), false).SHA1()

	variants := map[string]func(*cubeSpec){
		"sort order":     func(s *cubeSpec) { s.order = OrderDisplay },
		"default column": func(s *cubeSpec) { s.hasDefault = false },
		"value type":     func(s *cubeSpec) { s.valueType = ValueCIString },
		"axis type":      func(s *cubeSpec) { s.stateType = AxisSet },
		"axis name":      func(s *cubeSpec) { s.stateName = "province" },
	}
	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			s := defaultSpec()
			mutate(&s)
			assert.NotEqual(t, base, buildRates(t, s, false).SHA1())
		})
	}

	t.Run("case-only axis name", func(t *testing.T) {
		s := defaultSpec()
		s.stateName = "STATE"
		assert.Equal(t, base, buildRates(t, s, false).SHA1())
	})
}

func TestHashRenameAxis(t *testing.T) {
	c := buildRates(t, defaultSpec(), false)
	before := c.SHA1()

	require.NoError(t, c.RenameAxis("state", "State"))
	assert.Equal(t, before, c.SHA1())

	require.NoError(t, c.RenameAxis("state", "region"))
	assert.NotEqual(t, before, c.SHA1())
}

func TestHashFireAll(t *testing.T) {
	assert.NotEqual(t, ruleCube(t, true).SHA1(), ruleCube(t, false).SHA1())
}

func TestHashCellChanges(t *testing.T) {
	base := buildRates(t, defaultSpec(), false)
	before := base.SHA1()

	literal := base.Clone()
	require.NoError(t, literal.SetCell("x + 1", map[string]any{"state": "CA", "age": 10}))
	assert.NotEqual(t, before, literal.SHA1(), "literal and expression with the same text differ")

	moved := base.Clone()
	_, _, err := moved.RemoveCell(map[string]any{"state": "OH", "age": 10})
	require.NoError(t, err)
	require.NoError(t, moved.SetCell(1, map[string]any{"state": "OH", "age": 30}))
	assert.NotEqual(t, before, moved.SHA1(), "same value at another coordinate")

	same := base.Clone()
	require.NoError(t, same.SetCell(int64(1), map[string]any{"state": "OH", "age": 10}))
	assert.Equal(t, before, same.SHA1(), "int and int64 literals hash alike")

	ref := base.Clone()
	require.NoError(t, ref.SetCell(Reference{Cube: "x + 1"}, map[string]any{"state": "CA", "age": 10}))
	assert.NotEqual(t, before, ref.SHA1())
}

func TestHashSurvivesStorageRoundTrip(t *testing.T) {
	c := buildRates(t, defaultSpec(), false)
	c.SetDefaultCellValue(map[string]any{"rate": 1, "tags": []any{"a", "b"}})
	_, err := c.AddColumn("state", "NY", WithColumnMeta("label", "New York"))
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	decoded, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, c.SHA1(), decoded.SHA1())
	assert.Equal(t, c.Name(), decoded.Name())
	assert.Equal(t, c.CellCount(), decoded.CellCount())
	ny, err := decoded.Axis("state").FindColumn("NY")
	require.NoError(t, err)
	assert.Equal(t, "New York", ny.Meta().GetString("label"))

	// ids survive, so a column added after decoding does not collide
	col, err := decoded.AddColumn("state", "WA")
	require.NoError(t, err)
	for _, other := range c.Axis("state").Columns() {
		assert.NotEqual(t, other.ID(), col.ID())
	}
}
