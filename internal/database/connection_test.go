package database

import (
	"testing"

	"github.com/localnerve/cubedb/internal/config"
	"github.com/localnerve/cubedb/internal/models"
	"gorm.io/gorm/logger"
)

func TestConnectPureSQLite(t *testing.T) {
	cfg := &config.Config{
		DBType:               "sqlite-pure",
		DBAppDatabase:        ":memory:",
		DBAppConnectionLimit: 5,
		DBLogLevel:           "silent",
	}

	db, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer Close(db)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	if !db.Migrator().HasTable(&models.CubeRevision{}) {
		t.Error("Expected cube_revisions table to exist")
	}
	if !db.Migrator().HasIndex(&models.CubeRevision{}, "idx_cube_revision") {
		t.Error("Expected unique revision index to exist")
	}
}

func TestDialectorRejectsUnknownType(t *testing.T) {
	if _, err := Dialector(&config.Config{DBType: "oracle"}); err == nil {
		t.Error("Expected error for unsupported database type")
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"ERROR":  logger.Error,
		"info":   logger.Info,
		"":       logger.Warn,
	}
	for in, want := range cases {
		if got := LogLevel(in); got != want {
			t.Errorf("LogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
