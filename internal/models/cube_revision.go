package models

import (
	"time"
)

// CubeRevision is one append-only revision row of a cube at one coordinate. Tenant, app
// and branch are stored case-folded; Name keeps the caller's spelling and NameKey is its
// case-folded form used for matching.
type CubeRevision struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Tenant    string `gorm:"size:64;not null;uniqueIndex:idx_cube_revision,priority:1;index:idx_cube_sha1,priority:1"`
	App       string `gorm:"size:64;not null;uniqueIndex:idx_cube_revision,priority:2;index:idx_cube_sha1,priority:2"`
	Version   string `gorm:"size:32;not null;uniqueIndex:idx_cube_revision,priority:3"`
	Status    string `gorm:"size:16;not null;uniqueIndex:idx_cube_revision,priority:4"`
	Branch    string `gorm:"size:64;not null;uniqueIndex:idx_cube_revision,priority:5"`
	NameKey   string `gorm:"size:255;not null;uniqueIndex:idx_cube_revision,priority:6;index:idx_cube_sha1,priority:3"`
	Revision  int64  `gorm:"not null;uniqueIndex:idx_cube_revision,priority:7"`
	Name      string `gorm:"size:255;not null"`
	Sha1      string `gorm:"size:40;not null;index:idx_cube_sha1,priority:4"`
	HeadSha1  string `gorm:"size:40"`
	Deleted   bool   `gorm:"not null;default:false"`
	Changed   bool   `gorm:"not null;default:false"`
	Notes     string `gorm:"size:1024"`
	Author    string `gorm:"size:255"`
	TxID      string `gorm:"type:char(36)"`
	CubeData  CubeData
	CreatedAt time.Time
}

// TableName overrides the table name for CubeRevision
func (CubeRevision) TableName() string {
	return "cube_revisions"
}
