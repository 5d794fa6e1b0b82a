package data

import (
	_ "embed"
)

// InitdbMariaDBTables creates the cube revision table on MariaDB/MySQL. The schema
// matches what AutoMigrate produces for models.CubeRevision.
//
//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbMariaDBTables string

// InitdbMariaDBPrivileges grants the application user access to the revision table.
// Both scripts reference ${DB_APP_DATABASE} and ${DB_APP_USER}, expanded before use.
//
//go:embed initdb/mariadb/003-ddl-privileges.sql
var InitdbMariaDBPrivileges string
