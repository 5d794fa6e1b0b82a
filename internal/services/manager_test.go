package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/localnerve/cubedb/internal/config"
	"github.com/localnerve/cubedb/internal/database"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/persister"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	head = ncube.MustApplicationID("acme", "insure", "1.0.0", ncube.StatusSnapshot, ncube.HeadBranch)
	b1   = ncube.MustApplicationID("acme", "insure", "1.0.0", ncube.StatusSnapshot, "b1")
)

const user = "tester@example.com"

// countingPersister counts current-revision loads to observe the cache.
type countingPersister struct {
	persister.Persister
	loads atomic.Int64
}

func (c *countingPersister) LoadCurrent(ctx context.Context, appID *ncube.ApplicationID, name string) (*persister.Revision, error) {
	c.loads.Add(1)
	return c.Persister.LoadCurrent(ctx, appID, name)
}

func newTestStore(t *testing.T) *countingPersister {
	t.Helper()
	db, err := database.Connect(&config.Config{
		DBType:               "sqlite-pure",
		DBAppDatabase:        ":memory:",
		DBAppConnectionLimit: 1,
		DBLogLevel:           "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))
	return &countingPersister{Persister: persister.NewGormPersister(db)}
}

func newTestManager(t *testing.T, opts ...ManagerOption) (*Manager, *countingPersister) {
	t.Helper()
	store := newTestStore(t)
	return NewManager(store, opts...), store
}

func ageCube(t *testing.T) *ncube.Cube {
	t.Helper()
	c, err := ncube.NewCube("Age")
	require.NoError(t, err)
	a, err := ncube.NewAxis("age", ncube.AxisRange, ncube.ValueLong)
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(a))
	for _, r := range []ncube.Range{
		{Low: int64(0), High: int64(18)},
		{Low: int64(18), High: int64(65)},
		{Low: int64(65), High: int64(150)},
	} {
		_, err := c.AddColumn("age", r)
		require.NoError(t, err)
	}
	require.NoError(t, c.SetCell("child", map[string]any{"age": 5}))
	require.NoError(t, c.SetCell("adult", map[string]any{"age": 30}))
	require.NoError(t, c.SetCell("senior", map[string]any{"age": 70}))
	return c
}

func namedCube(t *testing.T, name string, value any) *ncube.Cube {
	t.Helper()
	c, err := ncube.NewCube(name)
	require.NoError(t, err)
	a, err := ncube.NewAxis("state", ncube.AxisDiscrete, ncube.ValueCIString, ncube.WithDefaultColumn())
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(a))
	require.NoError(t, c.SetCell(value, map[string]any{}))
	return c
}

func cellAt(t *testing.T, m *Manager, appID *ncube.ApplicationID, name string, age int) any {
	t.Helper()
	cube, err := m.GetCube(context.Background(), appID, name)
	require.NoError(t, err)
	v, err := cube.GetCell(context.Background(), map[string]any{"age": age}, nil, nil)
	require.NoError(t, err)
	return v
}

// editAge stores a copy of the named cube with the adult cell replaced.
func editAge(t *testing.T, m *Manager, appID *ncube.ApplicationID, name string, adult any) *ncube.CubeInfo {
	t.Helper()
	ctx := context.Background()
	cube, err := m.GetCube(ctx, appID, name)
	require.NoError(t, err)
	edited := cube.Clone()
	require.NoError(t, edited.SetCell(adult, map[string]any{"age": 30}))
	info, err := m.UpdateCube(ctx, appID, edited, user)
	require.NoError(t, err)
	return info
}

func TestCreateAndGetCube(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	info, err := m.CreateCube(ctx, head, ageCube(t), user)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Revision)
	assert.Equal(t, user, info.Author)
	assert.False(t, info.Changed)

	assert.Equal(t, "adult", cellAt(t, m, head, "age", 30))

	_, err = m.CreateCube(ctx, head, ageCube(t), user)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)

	same, err := m.UpdateCube(ctx, head, ageCube(t), user)
	require.NoError(t, err)
	assert.Equal(t, int64(0), same.Revision)

	history, err := m.GetRevisionHistory(ctx, head, "Age")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = m.GetCube(ctx, head, "Missing")
	assert.ErrorIs(t, err, ncube.ErrCubeNotFound)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)
}

func TestUpdateCubeAppendsRevision(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.UpdateCube(ctx, head, ageCube(t), user)
	require.NoError(t, err)
	info := editAge(t, m, head, "Age", "grown-up")
	assert.Equal(t, int64(1), info.Revision)
	assert.Equal(t, "grown-up", cellAt(t, m, head, "Age", 40))

	cube, rev, err := m.LoadCubeRevision(ctx, head, "Age", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rev.Revision)
	v, err := cube.GetCell(ctx, map[string]any{"age": 40}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "adult", v)

	require.NoError(t, m.UpdateNotes(ctx, head, "Age", "tuned adult label"))
	history, err := m.GetRevisionHistory(ctx, head, "Age")
	require.NoError(t, err)
	assert.Equal(t, "tuned adult label", history[0].Notes)
}

func TestReleaseCoordinatesRejectMutation(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	release := head.AsRelease()

	_, err := m.CreateCube(ctx, release, ageCube(t), user)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)
	assert.Contains(t, err.Error(), "RELEASE cube")

	_, err = m.DeleteCube(ctx, release, "Age", user)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)

	_, err = m.RenameCube(ctx, release, "Age", "Years", user)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)

	_, err = m.DuplicateCube(ctx, head, release, "Age", "Age", user)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)

	_, err = m.ChangeVersionValue(ctx, release, "2.0.0")
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)

	err = m.UpdateNotes(ctx, release, "Age", "rewritten")
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)
	assert.Contains(t, err.Error(), "RELEASE cube")
}

func TestNilPersister(t *testing.T) {
	m := NewManager(nil)
	_, err := m.GetCube(context.Background(), head, "Age")
	assert.ErrorIs(t, err, ncube.ErrIllegalState)

	_, err = m.CreateBranch(context.Background(), b1)
	assert.ErrorIs(t, err, ncube.ErrIllegalState)
}

func TestDeleteAndRestoreOnBranch(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.CreateCube(ctx, head, ageCube(t), user)
	require.NoError(t, err)
	_, err = m.CreateBranch(ctx, b1)
	require.NoError(t, err)

	before, err := m.GetCube(ctx, b1, "Age")
	require.NoError(t, err)
	sha1 := before.SHA1()

	_, err = m.DeleteCube(ctx, b1, "Age", user)
	require.NoError(t, err)

	_, err = m.GetCube(ctx, b1, "Age")
	assert.True(t, errors.Is(err, ncube.ErrCubeNotFound))

	deleted, err := m.GetDeletedCubes(ctx, b1, "*")
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "Age", deleted[0].Name)
	assert.Equal(t, int64(1), deleted[0].Revision)

	_, err = m.DeleteCube(ctx, b1, "Age", user)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)

	restored, err := m.RestoreCube(ctx, b1, "Age", user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), restored.Revision)

	after, err := m.GetCube(ctx, b1, "Age")
	require.NoError(t, err)
	assert.Equal(t, sha1, after.SHA1())

	_, err = m.RestoreCube(ctx, b1, "Age", user)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)
	_, err = m.RestoreCube(ctx, b1, "Nope", user)
	assert.ErrorIs(t, err, ncube.ErrIllegalArgument)

	// HEAD never saw any of it
	assert.Equal(t, "adult", cellAt(t, m, head, "Age", 30))
	history, err := m.GetRevisionHistory(ctx, head, "Age")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDuplicateCube(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.CreateCube(ctx, head, ageCube(t), user)
	require.NoError(t, err)

	info, err := m.DuplicateCube(ctx, head, head, "Age", "Age2", user)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Revision)
	assert.Equal(t, "senior", cellAt(t, m, head, "Age2", 90))

	dup, err := m.GetCube(ctx, head, "Age2")
	require.NoError(t, err)
	assert.Equal(t, "Age2", dup.Name())

	_, err = m.DuplicateCube(ctx, head, head, "Age", "Age2", user)
	require.ErrorIs(t, err, ncube.ErrIllegalArgument)
	assert.Contains(t, err.Error(), "already exists")

	_, err = m.DeleteCube(ctx, head, "Age2", user)
	require.NoError(t, err)
	info, err = m.DuplicateCube(ctx, head, head, "Age", "Age2", user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Revision)

	other := ncube.MustApplicationID("acme", "claims", "3.0.0", ncube.StatusSnapshot, ncube.HeadBranch)
	info, err = m.DuplicateCube(ctx, head, other, "Age", "Age", user)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Revision)
}

func TestInfosAndEnumeration(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.CreateCube(ctx, head, ageCube(t), user)
	require.NoError(t, err)
	_, err = m.CreateCube(ctx, head, namedCube(t, "rates.auto", 1.5), user)
	require.NoError(t, err)
	_, err = m.CreateBranch(ctx, b1)
	require.NoError(t, err)

	infos, err := m.GetCubeInfos(ctx, head, "rates.*", persister.FilterActive)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "rates.auto", infos[0].Name)

	apps, err := m.GetAppNames(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"insure"}, apps)

	versions, err := m.GetAppVersions(ctx, "acme", "insure")
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	branches, err := m.GetBranches(ctx, head)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ncube.HeadBranch, "b1"}, branches)
}
