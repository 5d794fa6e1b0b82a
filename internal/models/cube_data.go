package models

import (
	"database/sql/driver"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// CubeData holds a serialized cube definition. It wraps datatypes.JSON so each dialect
// gets a column type it can index and store large documents in.
type CubeData struct {
	datatypes.JSON
}

// NewCubeData wraps an encoded cube.
func NewCubeData(data []byte) CubeData {
	return CubeData{JSON: datatypes.JSON(data)}
}

// Bytes returns the encoded cube.
func (d CubeData) Bytes() []byte {
	return []byte(d.JSON)
}

// Value promotes the embedded JSON's Value method
func (d CubeData) Value() (driver.Value, error) {
	if len(d.JSON) == 0 {
		return nil, nil
	}
	return d.JSON.Value()
}

// Scan promotes the embedded JSON's Scan method
func (d *CubeData) Scan(value interface{}) error {
	if value == nil {
		d.JSON = nil
		return nil
	}
	return d.JSON.Scan(value)
}

// GormDBDataType picks the column type per driver; MSSQL has no json type and MySQL's
// TEXT is too small for large cubes.
func (CubeData) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "LONGTEXT"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
