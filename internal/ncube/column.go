package ncube

import "strings"

const (
	// columnIDFactor separates the axis id from the per-axis sequence inside a column id.
	columnIDFactor int64 = 1_000_000_000_000

	// defaultColumnSeq is the reserved sequence of an axis's default column.
	defaultColumnSeq = columnIDFactor - 1

	// MetaName is the column meta-property holding a rule name.
	MetaName = "name"
)

// Column is one addressable slot on an axis. A nil value marks the default column.
type Column struct {
	id           int64
	value        any
	displayOrder int
	meta         *MetaProperties
}

// ColumnOption configures a column as it is added to an axis.
type ColumnOption func(*Column)

// WithColumnName names a column; rule axes use the name to restrict evaluation.
func WithColumnName(name string) ColumnOption {
	return func(c *Column) { c.meta.Set(MetaName, name) }
}

// WithColumnMeta sets a column meta-property.
func WithColumnMeta(key string, value any) ColumnOption {
	return func(c *Column) { c.meta.Set(key, value) }
}

func (c *Column) ID() int64 { return c.id }

// Value returns the promoted column value: a scalar, Range, RangeSet, point or *Expression.
func (c *Column) Value() any { return c.value }

func (c *Column) DisplayOrder() int { return c.displayOrder }

// IsDefault reports whether this is the axis's default column.
func (c *Column) IsDefault() bool { return c.id%columnIDFactor == defaultColumnSeq }

// Meta returns the column's meta-properties; callers may modify them.
func (c *Column) Meta() *MetaProperties { return c.meta }

// Name returns the rule name, or "" when unnamed.
func (c *Column) Name() string { return c.meta.GetString(MetaName) }

func (c *Column) seq() int64 { return c.id % columnIDFactor }

func (c *Column) clone() *Column {
	return &Column{id: c.id, value: c.value, displayOrder: c.displayOrder, meta: c.meta.Clone()}
}

func (c *Column) hasName(name string) bool {
	n := c.Name()
	return n != "" && strings.EqualFold(n, name)
}
