package ncube

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAxis(t *testing.T, name string, at AxisType, vt ValueType, opts ...AxisOption) *Axis {
	t.Helper()
	a, err := NewAxis(name, at, vt, opts...)
	require.NoError(t, err)
	return a
}

func TestDiscreteAxis(t *testing.T) {
	a := mustAxis(t, "state", AxisDiscrete, ValueString, WithDefaultColumn())
	oh, err := a.AddColumn("OH")
	require.NoError(t, err)
	_, err = a.AddColumn("TX")
	require.NoError(t, err)

	_, err = a.AddColumn("OH")
	assert.ErrorIs(t, err, ErrIllegalArgument)

	col, err := a.FindColumn("OH")
	require.NoError(t, err)
	assert.Same(t, oh, col)

	col, err = a.FindColumn("oh")
	require.NoError(t, err)
	assert.True(t, col.IsDefault(), "STRING matching is case-sensitive")

	col, err = a.FindColumn(nil)
	require.NoError(t, err)
	assert.True(t, col.IsDefault())
}

func TestDiscreteAxisCaseInsensitive(t *testing.T) {
	a := mustAxis(t, "state", AxisDiscrete, ValueCIString)
	_, err := a.AddColumn("Ohio")
	require.NoError(t, err)
	_, err = a.AddColumn("OHIO")
	assert.ErrorIs(t, err, ErrIllegalArgument)

	col, err := a.FindColumn("ohio")
	require.NoError(t, err)
	require.NotNil(t, col)
	assert.Equal(t, "Ohio", col.Value())

	col, err = a.FindColumn("Texas")
	require.NoError(t, err)
	assert.Nil(t, col)
}

func TestDiscreteAxisPromotesNumbers(t *testing.T) {
	a := mustAxis(t, "code", AxisDiscrete, ValueLong)
	c, err := a.AddColumn(42)
	require.NoError(t, err)

	for _, in := range []any{42, int64(42), float64(42), "42"} {
		col, err := a.FindColumn(in)
		require.NoError(t, err)
		assert.Same(t, c, col, "input %T", in)
	}
	_, err = a.FindColumn(42.5)
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestRangeAxis(t *testing.T) {
	a := mustAxis(t, "age", AxisRange, ValueLong, WithDefaultColumn())
	young, err := a.AddColumn(Range{Low: 0, High: 18})
	require.NoError(t, err)
	old, err := a.AddColumn([]any{65, 120})
	require.NoError(t, err)
	mid, err := a.AddColumn(Range{Low: 18, High: 65})
	require.NoError(t, err)

	cases := map[int64]*Column{0: young, 17: young, 18: mid, 64: mid, 65: old, 119: old}
	for in, want := range cases {
		col, err := a.FindColumn(in)
		require.NoError(t, err)
		assert.Same(t, want, col, "age %d", in)
	}

	col, err := a.FindColumn(120)
	require.NoError(t, err)
	assert.True(t, col.IsDefault())

	col, err = a.FindColumn(-1)
	require.NoError(t, err)
	assert.True(t, col.IsDefault())

	// sorted order is by low bound regardless of insertion order
	cols := a.Columns()
	assert.Same(t, young, cols[0])
	assert.Same(t, mid, cols[1])
	assert.Same(t, old, cols[2])
}

func TestRangeAxisRejectsOverlapAndEmpty(t *testing.T) {
	a := mustAxis(t, "age", AxisRange, ValueLong)
	_, err := a.AddColumn(Range{Low: 10, High: 20})
	require.NoError(t, err)

	_, err = a.AddColumn(Range{Low: 15, High: 25})
	assert.ErrorIs(t, err, ErrIllegalArgument)
	_, err = a.AddColumn(Range{Low: 0, High: 11})
	assert.ErrorIs(t, err, ErrIllegalArgument)
	_, err = a.AddColumn(Range{Low: 30, High: 30})
	assert.ErrorIs(t, err, ErrIllegalArgument)

	_, err = a.AddColumn(Range{Low: 20, High: 30})
	assert.NoError(t, err, "touching ranges do not overlap")
}

func TestSetAxis(t *testing.T) {
	a := mustAxis(t, "code", AxisSet, ValueLong)
	low, err := a.AddColumn([]any{1, 2, Range{Low: 10, High: 20}})
	require.NoError(t, err)
	high, err := a.AddColumn(RangeSet{Items: []any{3, Range{Low: 50, High: 60}}})
	require.NoError(t, err)

	for in, want := range map[int64]*Column{1: low, 15: low, 3: high, 55: high} {
		col, err := a.FindColumn(in)
		require.NoError(t, err)
		assert.Same(t, want, col, "code %d", in)
	}
	col, err := a.FindColumn(4)
	require.NoError(t, err)
	assert.Nil(t, col)

	_, err = a.AddColumn([]any{15})
	assert.ErrorIs(t, err, ErrIllegalArgument)
	_, err = a.AddColumn([]any{Range{Low: 58, High: 70}})
	assert.ErrorIs(t, err, ErrIllegalArgument)
	_, err = a.AddColumn([]any{2})
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestNearestAxis(t *testing.T) {
	a := mustAxis(t, "loc", AxisNearest, ValuePoint2D)
	origin, err := a.AddColumn(Point2D{X: 0, Y: 0})
	require.NoError(t, err)
	far, err := a.AddColumn([]any{10, 10})
	require.NoError(t, err)

	col, err := a.FindColumn(Point2D{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Same(t, origin, col)

	col, err = a.FindColumn(map[string]any{"x": 8.0, "y": 9.0})
	require.NoError(t, err)
	assert.Same(t, far, col)

	_, err = a.AddColumn(Point2D{X: 10, Y: 10})
	assert.ErrorIs(t, err, ErrIllegalArgument)

	_, err = NewAxis("loc", AxisNearest, ValuePoint2D, WithDefaultColumn())
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestNearestAxisDates(t *testing.T) {
	a := mustAxis(t, "when", AxisNearest, ValueDate)
	jan, err := a.AddColumn("2024-01-01")
	require.NoError(t, err)
	jun, err := a.AddColumn(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	col, err := a.FindColumn("2024-02-10")
	require.NoError(t, err)
	assert.Same(t, jan, col)
	col, err = a.FindColumn("2024-05-01")
	require.NoError(t, err)
	assert.Same(t, jun, col)
}

func TestRuleAxisConstraints(t *testing.T) {
	_, err := NewAxis("rules", AxisRule, ValueString)
	assert.ErrorIs(t, err, ErrIllegalArgument)
	_, err = NewAxis("rules", AxisRule, ValueExpression, WithDefaultColumn())
	assert.ErrorIs(t, err, ErrIllegalArgument)

	a := mustAxis(t, "rules", AxisRule, ValueExpression, WithColumnOrder(OrderSorted))
	assert.Equal(t, OrderDisplay, a.ColumnOrder())
	assert.True(t, a.FireAll())

	_, err = a.AddColumn("x > 1", WithColumnName("big"))
	require.NoError(t, err)
	_, err = a.AddColumn("x > 2", WithColumnName("BIG"))
	assert.ErrorIs(t, err, ErrIllegalArgument)

	_, err = a.FindColumn("anything")
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestColumnIDsAreNeverReused(t *testing.T) {
	c, err := NewCube("ids")
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(mustAxis(t, "state", AxisDiscrete, ValueString)))

	first, err := c.AddColumn("state", "OH")
	require.NoError(t, err)
	require.NoError(t, c.DeleteColumn("state", first.ID()))
	second, err := c.AddColumn("state", "OH")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestUpdateColumn(t *testing.T) {
	a := mustAxis(t, "age", AxisRange, ValueLong)
	c1, err := a.AddColumn(Range{Low: 0, High: 10})
	require.NoError(t, err)
	_, err = a.AddColumn(Range{Low: 10, High: 20})
	require.NoError(t, err)

	assert.ErrorIs(t, a.UpdateColumn(c1.ID(), Range{Low: 0, High: 15}), ErrIllegalArgument)
	require.NoError(t, a.UpdateColumn(c1.ID(), Range{Low: 0, High: 5}))

	col, err := a.FindColumn(7)
	require.NoError(t, err)
	assert.Nil(t, col)
}

func TestColumnIDsSurviveStorageRoundTrip(t *testing.T) {
	c, err := NewCube("ids")
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(mustAxis(t, "state", AxisDiscrete, ValueString)))

	_, err = c.AddColumn("state", "OH")
	require.NoError(t, err)
	tx, err := c.AddColumn("state", "TX")
	require.NoError(t, err)
	require.NoError(t, c.DeleteColumn("state", tx.ID()))

	data, err := c.MarshalJSON()
	require.NoError(t, err)
	reloaded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, c.SHA1(), reloaded.SHA1())

	ca, err := reloaded.AddColumn("state", "CA")
	require.NoError(t, err)
	assert.Greater(t, ca.ID(), tx.ID())
}
