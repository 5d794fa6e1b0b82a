// cube_ops.go
//
// A versioned, multidimensional decision-table store
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of cubedb.
// cubedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// cubedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with cubedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/persister"
)

func decode(rev *persister.Revision) (*ncube.Cube, error) {
	cube, err := ncube.FromJSON(rev.Data)
	if err != nil {
		return nil, fmt.Errorf("cube %s revision %d: %w", rev.Name, rev.Revision, err)
	}
	if cube.Name() != rev.Name {
		if err := cube.SetName(rev.Name); err != nil {
			return nil, err
		}
	}
	return cube, nil
}

// renamed re-encodes stored content under another name.
func renamed(rev *persister.Revision, name string) ([]byte, error) {
	cube, err := decode(rev)
	if err != nil {
		return nil, err
	}
	if err := cube.SetName(name); err != nil {
		return nil, err
	}
	return cube.MarshalJSON()
}

// CreateCube stores a new cube. A name that exists, even deleted, is rejected.
func (m *Manager) CreateCube(ctx context.Context, appID *ncube.ApplicationID, cube *ncube.Cube, user string) (*ncube.CubeInfo, error) {
	if err := requireMutable(appID, "create"); err != nil {
		return nil, err
	}
	if cube == nil {
		return nil, ncube.IllegalArgument("cube cannot be nil")
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	cur, err := m.current(ctx, appID, cube.Name())
	if err != nil {
		return nil, err
	}
	if cur != nil {
		if cur.Deleted {
			return nil, ncube.IllegalArgument("cube %s in %s is deleted, restore it instead", cube.Name(), appID)
		}
		return nil, ncube.IllegalArgument("cube %s already exists in %s", cube.Name(), appID)
	}

	sha1, data, err := encode(cube)
	if err != nil {
		return nil, err
	}
	info, err := p.AppendRevision(ctx, persister.Record{
		AppID:   appID,
		Name:    cube.Name(),
		Sha1:    sha1,
		Changed: !appID.IsHead(),
		Notes:   "created",
		Author:  user,
		Data:    data,
	}, &persister.Expect{Missing: true})
	if err != nil {
		return nil, storeError(err)
	}
	m.cache.evict(appID, cube.Name())
	m.logger.Info("cube created", "app", appID.String(), "cube", cube.Name(), "sha1", sha1)
	return info, nil
}

// UpdateCube stores cube as the next revision, creating it when the name is new. An
// unchanged hash writes nothing and returns the current revision.
func (m *Manager) UpdateCube(ctx context.Context, appID *ncube.ApplicationID, cube *ncube.Cube, user string) (*ncube.CubeInfo, error) {
	if err := requireMutable(appID, "update"); err != nil {
		return nil, err
	}
	if cube == nil {
		return nil, ncube.IllegalArgument("cube cannot be nil")
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	cur, err := m.current(ctx, appID, cube.Name())
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return m.CreateCube(ctx, appID, cube, user)
	}
	if cur.Deleted {
		return nil, ncube.IllegalArgument("cube %s in %s is deleted, restore it before updating", cube.Name(), appID)
	}

	sha1, data, err := encode(cube)
	if err != nil {
		return nil, err
	}
	if sha1 == cur.Sha1 && cube.Name() == cur.Name {
		return &cur.CubeInfo, nil
	}
	info, err := p.AppendRevision(ctx, persister.Record{
		AppID:    appID,
		Name:     cube.Name(),
		Sha1:     sha1,
		HeadSha1: cur.HeadSha1,
		Changed:  !appID.IsHead(),
		Notes:    "updated",
		Author:   user,
		Data:     data,
	}, &persister.Expect{Sha1: cur.Sha1})
	if err != nil {
		return nil, storeError(err)
	}
	m.cache.evict(appID, cube.Name())
	m.logger.Info("cube updated", "app", appID.String(), "cube", cube.Name(), "revision", info.Revision)
	return info, nil
}

// DeleteCube appends a deleted revision. The content stays recoverable through
// RestoreCube.
func (m *Manager) DeleteCube(ctx context.Context, appID *ncube.ApplicationID, name, user string) (*ncube.CubeInfo, error) {
	return m.setDeleted(ctx, appID, name, user, true)
}

// RestoreCube revives a deleted cube with the content it had when deleted.
func (m *Manager) RestoreCube(ctx context.Context, appID *ncube.ApplicationID, name, user string) (*ncube.CubeInfo, error) {
	return m.setDeleted(ctx, appID, name, user, false)
}

func (m *Manager) setDeleted(ctx context.Context, appID *ncube.ApplicationID, name, user string, deleted bool) (*ncube.CubeInfo, error) {
	action := "restore"
	if deleted {
		action = "delete"
	}
	if err := requireMutable(appID, action); err != nil {
		return nil, err
	}
	if err := ncube.ValidateCubeName(name); err != nil {
		return nil, err
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	cur, err := m.current(ctx, appID, name)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ncube.IllegalArgument("cannot %s cube %s, it does not exist in %s", action, name, appID)
	}
	if cur.Deleted == deleted {
		if deleted {
			return nil, ncube.IllegalArgument("cannot delete cube %s, it is already deleted in %s", name, appID)
		}
		return nil, ncube.IllegalArgument("cannot restore cube %s, it is not deleted in %s", name, appID)
	}

	info, err := p.AppendRevision(ctx, persister.Record{
		AppID:    appID,
		Name:     cur.Name,
		Sha1:     cur.Sha1,
		HeadSha1: cur.HeadSha1,
		Deleted:  deleted,
		Changed:  !appID.IsHead(),
		Notes:    action + "d",
		Author:   user,
		Data:     cur.Data,
	}, &persister.Expect{Sha1: cur.Sha1})
	if err != nil {
		return nil, storeError(err)
	}
	m.cache.evict(appID, name)
	m.logger.Info("cube "+action+"d", "app", appID.String(), "cube", name, "revision", info.Revision)
	return info, nil
}

// RenameCube deletes oldName and writes its content under newName in one transaction.
// A case-only rename appends a single revision under the new spelling.
func (m *Manager) RenameCube(ctx context.Context, appID *ncube.ApplicationID, oldName, newName, user string) ([]ncube.CubeInfo, error) {
	if err := requireMutable(appID, "rename"); err != nil {
		return nil, err
	}
	if err := ncube.ValidateCubeName(oldName); err != nil {
		return nil, err
	}
	if err := ncube.ValidateCubeName(newName); err != nil {
		return nil, err
	}
	if oldName == newName {
		return nil, ncube.IllegalArgument("cannot rename cube %s to itself", oldName)
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	src, err := m.current(ctx, appID, oldName)
	if err != nil {
		return nil, err
	}
	if src == nil || src.Deleted {
		return nil, ncube.IllegalArgument("cannot rename cube %s, it does not exist in %s", oldName, appID)
	}
	data, err := renamed(src, newName)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(oldName, newName) {
		info, err := p.AppendRevision(ctx, persister.Record{
			AppID:    appID,
			Name:     newName,
			Sha1:     src.Sha1,
			HeadSha1: src.HeadSha1,
			Changed:  !appID.IsHead(),
			Notes:    "renamed from " + oldName,
			Author:   user,
			Data:     data,
		}, &persister.Expect{Sha1: src.Sha1})
		if err != nil {
			return nil, storeError(err)
		}
		m.cache.evict(appID, oldName)
		return []ncube.CubeInfo{*info}, nil
	}

	dst, err := m.current(ctx, appID, newName)
	if err != nil {
		return nil, err
	}
	if dst != nil && !dst.Deleted {
		return nil, ncube.IllegalArgument("cannot rename cube %s, %s already exists in %s", oldName, newName, appID)
	}
	var dstHeadSha1 string
	if dst != nil {
		dstHeadSha1 = dst.HeadSha1
	}

	txID := newTxID()
	infos, err := p.AppendRevisions(ctx, []persister.Record{
		{
			AppID:    appID,
			Name:     src.Name,
			Sha1:     src.Sha1,
			HeadSha1: src.HeadSha1,
			Deleted:  true,
			Changed:  !appID.IsHead(),
			Notes:    "renamed to " + newName,
			Author:   user,
			TxID:     txID,
			Data:     src.Data,
		},
		{
			AppID:    appID,
			Name:     newName,
			Sha1:     src.Sha1,
			HeadSha1: dstHeadSha1,
			Changed:  !appID.IsHead(),
			Notes:    "renamed from " + oldName,
			Author:   user,
			TxID:     txID,
			Data:     data,
		},
	})
	if err != nil {
		return nil, storeError(err)
	}
	m.cache.evict(appID, oldName, newName)
	m.logger.Info("cube renamed", "app", appID.String(), "from", oldName, "to", newName)
	return infos, nil
}

// DuplicateCube copies the current content of srcName at src to dstName at dst. The
// destination may hold a deleted cube of that name, which is overwritten.
func (m *Manager) DuplicateCube(ctx context.Context, src, dst *ncube.ApplicationID, srcName, dstName, user string) (*ncube.CubeInfo, error) {
	if src == nil {
		return nil, ncube.IllegalArgument("source application id cannot be nil")
	}
	if err := requireMutable(dst, "duplicate"); err != nil {
		return nil, err
	}
	if err := ncube.ValidateCubeName(srcName); err != nil {
		return nil, err
	}
	if err := ncube.ValidateCubeName(dstName); err != nil {
		return nil, err
	}
	if src.Equal(dst) && strings.EqualFold(srcName, dstName) {
		return nil, ncube.IllegalArgument("cannot duplicate cube %s onto itself", srcName)
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	from, err := m.current(ctx, src, srcName)
	if err != nil {
		return nil, err
	}
	if from == nil || from.Deleted {
		return nil, ncube.IllegalArgument("cannot duplicate cube %s, it does not exist in %s", srcName, src)
	}
	to, err := m.current(ctx, dst, dstName)
	if err != nil {
		return nil, err
	}
	if to != nil && !to.Deleted {
		return nil, ncube.IllegalArgument("cannot duplicate cube %s, %s already exists in %s", srcName, dstName, dst)
	}

	data, err := renamed(from, dstName)
	if err != nil {
		return nil, err
	}
	rec := persister.Record{
		AppID:   dst,
		Name:    dstName,
		Sha1:    from.Sha1,
		Changed: !dst.IsHead(),
		Notes:   fmt.Sprintf("duplicated from %s in %s", from.Name, src),
		Author:  user,
		Data:    data,
	}
	expect := &persister.Expect{Missing: true}
	if to != nil {
		rec.HeadSha1 = to.HeadSha1
		expect = &persister.Expect{Sha1: to.Sha1}
	}
	info, err := p.AppendRevision(ctx, rec, expect)
	if err != nil {
		return nil, storeError(err)
	}
	m.cache.evict(dst, dstName)
	return info, nil
}

// LoadCubeRevision loads one stored revision, deleted or not. A negative revision counts
// back from the newest.
func (m *Manager) LoadCubeRevision(ctx context.Context, appID *ncube.ApplicationID, name string, revision int64) (*ncube.Cube, *ncube.CubeInfo, error) {
	p, err := m.store()
	if err != nil {
		return nil, nil, err
	}
	rev, err := p.LoadRevision(ctx, appID, name, revision)
	if errors.Is(err, persister.ErrNotFound) {
		return nil, nil, ncube.IllegalArgument("cube %s revision %d does not exist in %s", name, revision, appID)
	}
	if err != nil {
		return nil, nil, err
	}
	cube, err := decode(rev)
	if err != nil {
		return nil, nil, err
	}
	return cube, &rev.CubeInfo, nil
}

// UpdateNotes replaces the notes on the current revision of a cube.
func (m *Manager) UpdateNotes(ctx context.Context, appID *ncube.ApplicationID, name, notes string) error {
	if err := requireMutable(appID, "annotate"); err != nil {
		return err
	}
	p, err := m.store()
	if err != nil {
		return err
	}
	err = p.UpdateNotes(ctx, appID, name, notes)
	if errors.Is(err, persister.ErrNotFound) {
		return ncube.IllegalArgument("cube %s does not exist in %s", name, appID)
	}
	return err
}

// GetRevisionHistory lists every revision of a cube, newest first.
func (m *Manager) GetRevisionHistory(ctx context.Context, appID *ncube.ApplicationID, name string) ([]ncube.CubeInfo, error) {
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	infos, err := p.RevisionHistory(ctx, appID, name)
	if errors.Is(err, persister.ErrNotFound) {
		return nil, ncube.IllegalArgument("cube %s does not exist in %s", name, appID)
	}
	return infos, err
}

// GetCubeInfos lists current revisions whose names match a case-insensitive glob.
func (m *Manager) GetCubeInfos(ctx context.Context, appID *ncube.ApplicationID, pattern string, filter persister.Filter) ([]ncube.CubeInfo, error) {
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	revs, err := p.ListCurrent(ctx, appID, persister.ListOptions{Pattern: pattern, Filter: filter})
	if err != nil {
		return nil, err
	}
	infos := make([]ncube.CubeInfo, len(revs))
	for i := range revs {
		infos[i] = revs[i].CubeInfo
	}
	return infos, nil
}

// GetDeletedCubes lists the cubes whose current revision is deleted.
func (m *Manager) GetDeletedCubes(ctx context.Context, appID *ncube.ApplicationID, pattern string) ([]ncube.CubeInfo, error) {
	return m.GetCubeInfos(ctx, appID, pattern, persister.FilterDeleted)
}

// GetAppNames lists the apps of a tenant.
func (m *Manager) GetAppNames(ctx context.Context, tenant string) ([]string, error) {
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	return p.AppNames(ctx, tenant)
}

// GetAppVersions lists the version/status pairs of an app.
func (m *Manager) GetAppVersions(ctx context.Context, tenant, app string) ([]persister.VersionInfo, error) {
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	return p.AppVersions(ctx, tenant, app)
}

// GetBranches lists the branches at the app's version and status.
func (m *Manager) GetBranches(ctx context.Context, appID *ncube.ApplicationID) ([]string, error) {
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	return p.Branches(ctx, appID)
}
