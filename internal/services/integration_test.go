package services_test

import (
	"context"
	"os"
	"testing"

	"github.com/localnerve/cubedb/internal/config"
	"github.com/localnerve/cubedb/internal/database"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/persister"
	"github.com/localnerve/cubedb/internal/services"
	"github.com/localnerve/cubedb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateCube(t *testing.T, rate float64) *ncube.Cube {
	t.Helper()
	c, err := ncube.NewCube("rates.auto")
	require.NoError(t, err)
	a, err := ncube.NewAxis("state", ncube.AxisDiscrete, ncube.ValueCIString, ncube.WithDefaultColumn())
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(a))
	_, err = c.AddColumn("state", "OH")
	require.NoError(t, err)
	require.NoError(t, c.SetCell(rate, map[string]any{"state": "OH"}))
	require.NoError(t, c.SetCell(1.0, map[string]any{}))
	return c
}

// TestMariaDBBranchLifecycle runs create, branch, commit, conflict and release against a
// real MariaDB.
func TestMariaDBBranchLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE not set")
	}

	ctx := context.Background()
	stack, err := testutil.Start(ctx, t, testutil.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { stack.Terminate(context.Background()) })

	cfg, err := config.LoadDatabase()
	require.NoError(t, err)
	cfg.DBHost, cfg.DBPort, err = testutil.Endpoint(ctx, stack.DBContainer, os.Getenv("DB_PORT"))
	require.NoError(t, err)

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	m := services.NewManager(persister.NewGormPersister(db))
	head := ncube.MustApplicationID("acme", "quotes", "1.0.0", ncube.StatusSnapshot, ncube.HeadBranch)
	branch, err := head.AsBranch("pricing")
	require.NoError(t, err)

	_, err = m.CreateCube(ctx, head, rateCube(t, 1.2), "it@example.com")
	require.NoError(t, err)
	_, err = m.CreateBranch(ctx, branch)
	require.NoError(t, err)

	_, err = m.UpdateCube(ctx, branch, rateCube(t, 1.3), "it@example.com")
	require.NoError(t, err)
	committed, err := m.CommitBranch(ctx, branch, nil, "it@example.com")
	require.NoError(t, err)
	require.Len(t, committed, 1)

	v, _, err := m.Execute(ctx, head, "rates.auto", map[string]any{"state": "oh"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.3, v)

	_, err = m.UpdateCube(ctx, branch, rateCube(t, 1.4), "it@example.com")
	require.NoError(t, err)
	_, err = m.UpdateCube(ctx, head, rateCube(t, 1.5), "it@example.com")
	require.NoError(t, err)
	_, err = m.CommitBranch(ctx, branch, nil, "it@example.com")
	var conflict *ncube.MergeConflictError
	require.ErrorAs(t, err, &conflict)

	n, err := m.ReleaseCubes(ctx, head, "1.1.0")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	result := services.HealthCheck(cfg, db)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "ok", result.Schema)
}
