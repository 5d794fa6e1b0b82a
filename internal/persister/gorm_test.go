package persister

import (
	"context"
	"testing"

	"github.com/localnerve/cubedb/internal/config"
	"github.com/localnerve/cubedb/internal/database"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPersister(t *testing.T) *GormPersister {
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
	return NewGormPersister(db)
}

var (
	snapshotHead = ncube.MustApplicationID("acme", "rates", "1.0.0", ncube.StatusSnapshot, ncube.HeadBranch)
	featureX     = ncube.MustApplicationID("acme", "rates", "1.0.0", ncube.StatusSnapshot, "featureX")
)

func record(appID *ncube.ApplicationID, name, sha1 string) Record {
	return Record{
		AppID:  appID,
		Name:   name,
		Sha1:   sha1,
		Author: "tester",
		Data:   []byte(`{"ncube":"` + name + `","sha1":"` + sha1 + `"}`),
	}
}

func TestAppendRevisionNumbering(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	for i, sha := range []string{"A1", "A2", "A3"} {
		info, err := p.AppendRevision(ctx, record(snapshotHead, "Rates", sha), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(i), info.Revision)
		assert.NotEmpty(t, info.TxID)
		assert.True(t, info.AppID.Equal(snapshotHead))
	}

	cur, err := p.LoadCurrent(ctx, snapshotHead, "rates")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cur.Revision)
	assert.Equal(t, "A3", cur.Sha1)
	assert.JSONEq(t, `{"ncube":"Rates","sha1":"A3"}`, string(cur.Data))

	rev, err := p.LoadRevision(ctx, snapshotHead, "Rates", 1)
	require.NoError(t, err)
	assert.Equal(t, "A2", rev.Sha1)

	prev, err := p.LoadRevision(ctx, snapshotHead, "Rates", -2)
	require.NoError(t, err)
	assert.Equal(t, "A1", prev.Sha1)

	_, err = p.LoadRevision(ctx, snapshotHead, "Rates", 7)
	assert.ErrorIs(t, err, ErrNotFound)

	history, err := p.RevisionHistory(ctx, snapshotHead, "RATES")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, int64(2), history[0].Revision)
	assert.Equal(t, int64(0), history[2].Revision)
}

func TestAppendRevisionExpectations(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	_, err := p.AppendRevision(ctx, record(snapshotHead, "Rates", "A1"), &Expect{Missing: true})
	require.NoError(t, err)

	_, err = p.AppendRevision(ctx, record(snapshotHead, "Rates", "A2"), &Expect{Missing: true})
	assert.ErrorIs(t, err, ErrStale)

	_, err = p.AppendRevision(ctx, record(snapshotHead, "Rates", "A2"), &Expect{Sha1: "ZZ"})
	assert.ErrorIs(t, err, ErrStale)

	info, err := p.AppendRevision(ctx, record(snapshotHead, "Rates", "A2"), &Expect{Sha1: "a1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Revision)

	_, err = p.AppendRevision(ctx, record(snapshotHead, "Other", "B1"), &Expect{Sha1: "B0"})
	assert.ErrorIs(t, err, ErrStale)
}

func TestCoordinatesAreCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	mixed := ncube.MustApplicationID("ACME", "Rates", "1.0.0", ncube.StatusSnapshot, "head")
	_, err := p.AppendRevision(ctx, record(mixed, "Rates", "A1"), nil)
	require.NoError(t, err)
	_, err = p.AppendRevision(ctx, record(snapshotHead, "RATES", "A2"), nil)
	require.NoError(t, err)

	cur, err := p.LoadCurrent(ctx, snapshotHead, "rates")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cur.Revision)
	assert.Equal(t, "RATES", cur.Name)
}

func TestListCurrent(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	_, err := p.AppendRevisions(ctx, []Record{
		record(featureX, "rates.auto", "A1"),
		record(featureX, "rates.home", "B1"),
		record(featureX, "sys.classpath", "C1"),
	})
	require.NoError(t, err)

	deleted := record(featureX, "rates.home", "B1")
	deleted.Deleted = true
	deleted.Changed = true
	_, err = p.AppendRevision(ctx, deleted, nil)
	require.NoError(t, err)

	all, err := p.ListCurrent(ctx, featureX, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "rates.auto", all[0].Name)
	assert.Nil(t, all[0].Data)
	assert.Equal(t, int64(1), all[1].Revision)

	active, err := p.ListCurrent(ctx, featureX, ListOptions{Filter: FilterActive, Pattern: "RATES.*", WithData: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "rates.auto", active[0].Name)
	assert.NotEmpty(t, active[0].Data)

	gone, err := p.ListCurrent(ctx, featureX, ListOptions{Filter: FilterDeleted})
	require.NoError(t, err)
	require.Len(t, gone, 1)
	assert.Equal(t, "rates.home", gone[0].Name)

	changed, err := p.ListCurrent(ctx, featureX, ListOptions{ChangedOnly: true})
	require.NoError(t, err)
	require.Len(t, changed, 1)

	none, err := p.ListCurrent(ctx, snapshotHead, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSyncHeadSha1AndNotes(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	rec := record(featureX, "Rates", "A2")
	rec.HeadSha1 = "A1"
	rec.Changed = true
	info, err := p.AppendRevision(ctx, rec, nil)
	require.NoError(t, err)

	require.NoError(t, p.SyncHeadSha1(ctx, featureX, "rates", info.Revision, "A2"))
	cur, err := p.LoadCurrent(ctx, featureX, "Rates")
	require.NoError(t, err)
	assert.Equal(t, "A2", cur.HeadSha1)
	assert.False(t, cur.Changed)

	err = p.SyncHeadSha1(ctx, featureX, "Rates", 9, "A2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, p.UpdateNotes(ctx, featureX, "Rates", "reviewed"))
	cur, err = p.LoadCurrent(ctx, featureX, "Rates")
	require.NoError(t, err)
	assert.Equal(t, "reviewed", cur.Notes)

	assert.ErrorIs(t, p.UpdateNotes(ctx, featureX, "Missing", "x"), ErrNotFound)
}

func TestLoadBySha1SearchesAllBranches(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	_, err := p.AppendRevision(ctx, record(snapshotHead, "Rates", "A1"), nil)
	require.NoError(t, err)
	_, err = p.AppendRevision(ctx, record(featureX, "Rates", "A2"), nil)
	require.NoError(t, err)

	rev, err := p.LoadBySha1(ctx, featureX, "rates", "A1")
	require.NoError(t, err)
	assert.Equal(t, ncube.HeadBranch, rev.AppID.Branch())
	assert.JSONEq(t, `{"ncube":"Rates","sha1":"A1"}`, string(rev.Data))

	_, err = p.LoadBySha1(ctx, featureX, "rates", "FF")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnumeration(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	other := ncube.MustApplicationID("acme", "claims", "2.0.0", ncube.StatusSnapshot, ncube.HeadBranch)
	_, err := p.AppendRevisions(ctx, []Record{
		record(snapshotHead, "Rates", "A1"),
		record(featureX, "Rates", "A1"),
		record(other, "Claims", "C1"),
	})
	require.NoError(t, err)

	apps, err := p.AppNames(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, []string{"claims", "rates"}, apps)

	versions, err := p.AppVersions(ctx, "acme", "rates")
	require.NoError(t, err)
	assert.Equal(t, []VersionInfo{{Version: "1.0.0", Status: ncube.StatusSnapshot}}, versions)

	branches, err := p.Branches(ctx, snapshotHead)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ncube.HeadBranch, "featurex"}, branches)

	ok, err := p.HasRows(ctx, featureX)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := p.DeleteBranch(ctx, featureX)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err = p.HasRows(ctx, featureX)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReleaseCubes(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	gone := record(snapshotHead, "Old", "O1")
	gone.Deleted = true
	_, err := p.AppendRevisions(ctx, []Record{
		record(snapshotHead, "Rates", "A1"),
		record(snapshotHead, "Rates", "A2"),
		gone,
		record(featureX, "Rates", "A3"),
	})
	require.NoError(t, err)

	n, err := p.ReleaseCubes(ctx, snapshotHead, "1.1.0")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	released, err := p.LoadCurrent(ctx, snapshotHead.AsRelease(), "Rates")
	require.NoError(t, err)
	assert.Equal(t, "A2", released.Sha1)
	assert.Equal(t, int64(1), released.Revision)

	next := ncube.MustApplicationID("acme", "rates", "1.1.0", ncube.StatusSnapshot, ncube.HeadBranch)
	seeded, err := p.LoadCurrent(ctx, next, "Rates")
	require.NoError(t, err)
	assert.Equal(t, "A2", seeded.Sha1)
	assert.Equal(t, int64(0), seeded.Revision)

	_, err = p.LoadCurrent(ctx, next, "Old")
	assert.ErrorIs(t, err, ErrNotFound)

	movedBranch, err := next.AsBranch("featureX")
	require.NoError(t, err)
	moved, err := p.LoadCurrent(ctx, movedBranch, "Rates")
	require.NoError(t, err)
	assert.Equal(t, "A3", moved.Sha1)

	ok, err := p.HasRows(ctx, snapshotHead)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.ReleaseCubes(ctx, next, "1.1.0")
	assert.ErrorIs(t, err, ErrStale)
}

func TestChangeVersion(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	_, err := p.AppendRevisions(ctx, []Record{
		record(snapshotHead, "Rates", "A1"),
		record(featureX, "Rates", "A2"),
	})
	require.NoError(t, err)

	n, err := p.ChangeVersion(ctx, snapshotHead, "1.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	versions, err := p.AppVersions(ctx, "acme", "rates")
	require.NoError(t, err)
	assert.Equal(t, []VersionInfo{{Version: "1.0.1", Status: ncube.StatusSnapshot}}, versions)

	_, err = p.AppendRevision(ctx, record(snapshotHead, "Rates", "B1"), nil)
	require.NoError(t, err)
	_, err = p.ChangeVersion(ctx, snapshotHead, "1.0.1")
	assert.ErrorIs(t, err, ErrStale)
}
