// branch.go
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

// CreateBranch seeds target with revision 0 of every active HEAD cube at the target's
// version, each synced to HEAD. It returns the number of cubes branched.
func (m *Manager) CreateBranch(ctx context.Context, target *ncube.ApplicationID) (int, error) {
	if err := requireBranch(target); err != nil {
		return 0, err
	}
	if err := requireMutable(target, "branch"); err != nil {
		return 0, err
	}
	p, err := m.store()
	if err != nil {
		return 0, err
	}
	exists, err := p.HasRows(ctx, target)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ncube.IllegalState("branch %s already exists", target)
	}

	heads, err := p.ListCurrent(ctx, target.AsHead(), persister.ListOptions{Filter: persister.FilterActive, WithData: true})
	if err != nil {
		return 0, err
	}
	txID := newTxID()
	recs := make([]persister.Record, len(heads))
	for i, h := range heads {
		recs[i] = persister.Record{
			AppID:    target,
			Name:     h.Name,
			Sha1:     h.Sha1,
			HeadSha1: h.Sha1,
			Notes:    "branch created",
			Author:   h.Author,
			TxID:     txID,
			Data:     h.Data,
		}
	}
	if _, err := p.AppendRevisions(ctx, recs); err != nil {
		return 0, storeError(err)
	}
	m.cache.clearCoord(target)
	branchOperations.WithLabelValues("create").Add(float64(len(recs)))
	m.logger.Info("branch created", "app", target.String(), "cubes", len(recs))
	return len(recs), nil
}

// CopyBranch seeds dst with the current state of every cube in src, pending changes
// included. Copying from HEAD is CreateBranch.
func (m *Manager) CopyBranch(ctx context.Context, src, dst *ncube.ApplicationID) (int, error) {
	if src == nil {
		return 0, ncube.IllegalArgument("source application id cannot be nil")
	}
	if err := requireBranch(dst); err != nil {
		return 0, err
	}
	if err := requireMutable(dst, "copy branch onto"); err != nil {
		return 0, err
	}
	if !src.SameApp(dst) {
		return 0, ncube.IllegalArgument("cannot copy %s to another app %s", src, dst)
	}
	if src.IsHead() {
		if src.Version() != dst.Version() || src.Status() != dst.Status() {
			return 0, ncube.IllegalArgument("cannot branch %s from another version %s", dst, src)
		}
		return m.CreateBranch(ctx, dst)
	}
	p, err := m.store()
	if err != nil {
		return 0, err
	}
	exists, err := p.HasRows(ctx, dst)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ncube.IllegalState("branch %s already exists", dst)
	}

	revs, err := p.ListCurrent(ctx, src, persister.ListOptions{WithData: true})
	if err != nil {
		return 0, err
	}
	if len(revs) == 0 {
		return 0, ncube.IllegalArgument("branch %s does not exist", src)
	}
	txID := newTxID()
	recs := make([]persister.Record, len(revs))
	for i, r := range revs {
		recs[i] = persister.Record{
			AppID:    dst,
			Name:     r.Name,
			Sha1:     r.Sha1,
			HeadSha1: r.HeadSha1,
			Deleted:  r.Deleted,
			Changed:  r.Changed,
			Notes:    "copied from " + src.Branch(),
			Author:   r.Author,
			TxID:     txID,
			Data:     r.Data,
		}
	}
	if _, err := p.AppendRevisions(ctx, recs); err != nil {
		return 0, storeError(err)
	}
	m.cache.clearCoord(dst)
	branchOperations.WithLabelValues("copy").Add(float64(len(recs)))
	return len(recs), nil
}

// DeleteBranch removes a branch and its history. HEAD cannot be deleted.
func (m *Manager) DeleteBranch(ctx context.Context, branch *ncube.ApplicationID) error {
	if err := requireBranch(branch); err != nil {
		return err
	}
	if err := requireMutable(branch, "delete branch of"); err != nil {
		return err
	}
	p, err := m.store()
	if err != nil {
		return err
	}
	n, err := p.DeleteBranch(ctx, branch)
	if err != nil {
		return err
	}
	if n == 0 {
		return ncube.IllegalArgument("branch %s does not exist", branch)
	}
	m.cache.clearCoord(branch)
	m.logger.Info("branch deleted", "app", branch.String(), "rows", n)
	return nil
}

// branchChange classifies a branch revision against HEAD's current revision of the same
// name. Only locally edited cubes that differ from HEAD are changes; a cube that merely
// lags behind HEAD is for UpdateBranch to pull.
func branchChange(b *persister.Revision, h *persister.Revision) (ncube.ChangeType, bool) {
	if !b.Changed {
		return "", false
	}
	if h == nil {
		if b.Deleted {
			return "", false
		}
		return ncube.ChangeCreated, true
	}
	switch {
	case b.Deleted && !h.Deleted:
		return ncube.ChangeDeleted, true
	case !b.Deleted && h.Deleted && b.HeadSha1 == "":
		// HEAD's deleted row predates the branch, so the name is new here
		return ncube.ChangeCreated, true
	case !b.Deleted && h.Deleted:
		return ncube.ChangeRestored, true
	case b.Sha1 != h.Sha1 && !b.Deleted:
		return ncube.ChangeUpdated, true
	}
	return "", false
}

func byName(revs []persister.Revision) map[string]*persister.Revision {
	out := make(map[string]*persister.Revision, len(revs))
	for i := range revs {
		out[strings.ToLower(revs[i].Name)] = &revs[i]
	}
	return out
}

// GetBranchChanges lists the branch cubes with local edits that HEAD does not have.
func (m *Manager) GetBranchChanges(ctx context.Context, branch *ncube.ApplicationID) ([]ncube.CubeInfo, error) {
	if err := requireBranch(branch); err != nil {
		return nil, err
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	branchRevs, err := p.ListCurrent(ctx, branch, persister.ListOptions{ChangedOnly: true})
	if err != nil {
		return nil, err
	}
	if len(branchRevs) == 0 {
		return []ncube.CubeInfo{}, nil
	}
	heads, err := p.ListCurrent(ctx, branch.AsHead(), persister.ListOptions{})
	if err != nil {
		return nil, err
	}
	headByName := byName(heads)

	changes := make([]ncube.CubeInfo, 0, len(branchRevs))
	for i := range branchRevs {
		b := &branchRevs[i]
		kind, ok := branchChange(b, headByName[strings.ToLower(b.Name)])
		if !ok {
			continue
		}
		info := b.CubeInfo
		info.ChangeType = kind
		changes = append(changes, info)
	}
	return changes, nil
}

// loadPair loads the current branch and HEAD revisions of name. Either may be nil.
func (m *Manager) loadPair(ctx context.Context, branch *ncube.ApplicationID, name string) (*persister.Revision, *persister.Revision, error) {
	b, err := m.current(ctx, branch, name)
	if err != nil {
		return nil, nil, err
	}
	h, err := m.current(ctx, branch.AsHead(), name)
	if err != nil {
		return nil, nil, err
	}
	return b, h, nil
}

func conflictOf(b, h *persister.Revision, reason string) ncube.Conflict {
	c := ncube.Conflict{Name: b.Name, Sha1: b.Sha1, Reason: reason}
	if h != nil {
		c.HeadSha1 = h.Sha1
	}
	return c
}

func sameState(b, h *persister.Revision) bool {
	return h != nil && b.Sha1 == h.Sha1 && b.Deleted == h.Deleted
}

// CommitBranch merges the named branch cubes into HEAD. Each name is merged on its own:
// names that conflict are reported together in a *ncube.MergeConflictError while the
// others are still committed. It returns the HEAD revisions written.
func (m *Manager) CommitBranch(ctx context.Context, branch *ncube.ApplicationID, names []string, user string) ([]ncube.CubeInfo, error) {
	if err := requireBranch(branch); err != nil {
		return nil, err
	}
	if err := requireMutable(branch, "commit"); err != nil {
		return nil, err
	}
	names = uniqueNames(names)
	if len(names) == 0 {
		return []ncube.CubeInfo{}, nil
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}

	head := branch.AsHead()
	txID := newTxID()
	conflicts := ncube.NewMergeConflictError()
	committed := make([]ncube.CubeInfo, 0, len(names))

	for _, name := range names {
		b, h, err := m.loadPair(ctx, branch, name)
		if err != nil {
			return committed, err
		}
		if b == nil {
			return committed, ncube.IllegalArgument("cannot commit cube %s, it does not exist in %s", name, branch)
		}

		switch {
		case sameState(b, h):
			if b.HeadSha1 != h.Sha1 || b.Changed {
				if err := p.SyncHeadSha1(ctx, branch, b.Name, b.Revision, h.Sha1); err != nil {
					return committed, err
				}
			}
			continue
		case !b.Changed:
			continue
		case h == nil && b.HeadSha1 != "":
			conflicts.Add(conflictOf(b, h, ncube.ReasonHeadRemoved))
			continue
		case b.Deleted && b.HeadSha1 == "" && (h == nil || h.Deleted):
			// created and deleted on the branch only
			continue
		case h != nil && b.HeadSha1 == "" && !h.Deleted:
			conflicts.Add(conflictOf(b, h, ncube.ReasonCreatedIndependently))
			continue
		case h != nil && b.HeadSha1 != "" && h.Sha1 != b.HeadSha1:
			conflicts.Add(conflictOf(b, h, ncube.ReasonHeadChanged))
			continue
		}

		expect := &persister.Expect{Missing: true}
		if h != nil {
			expect = &persister.Expect{Sha1: h.Sha1}
		}
		info, err := p.AppendRevision(ctx, persister.Record{
			AppID:   head,
			Name:    b.Name,
			Sha1:    b.Sha1,
			Deleted: b.Deleted,
			Notes:   "merged from " + branch.Branch(),
			Author:  user,
			TxID:    txID,
			Data:    b.Data,
		}, expect)
		if errors.Is(err, persister.ErrStale) {
			conflicts.Add(conflictOf(b, h, ncube.ReasonHeadChanged))
			continue
		}
		if err != nil {
			return committed, err
		}
		if err := p.SyncHeadSha1(ctx, branch, b.Name, b.Revision, b.Sha1); err != nil {
			return committed, fmt.Errorf("committed %s to HEAD but could not sync branch: %w", b.Name, err)
		}
		m.cache.evict(head, b.Name)
		committed = append(committed, *info)
	}

	branchOperations.WithLabelValues("commit").Add(float64(len(committed)))
	mergeConflicts.WithLabelValues("commit").Add(float64(conflicts.Len()))
	m.logger.Info("branch committed",
		"app", branch.String(),
		"committed", len(committed),
		"conflicts", conflicts.Len(),
		"user", user,
	)
	return committed, conflicts.OrNil()
}

// UpdateBranch pulls HEAD into the branch for every cube the branch has not edited
// locally, and adds active HEAD cubes the branch lacks. Cubes edited on both sides are
// reported in a *ncube.MergeConflictError. It returns the branch revisions written.
func (m *Manager) UpdateBranch(ctx context.Context, branch *ncube.ApplicationID, user string) ([]ncube.CubeInfo, error) {
	if err := requireBranch(branch); err != nil {
		return nil, err
	}
	if err := requireMutable(branch, "update branch of"); err != nil {
		return nil, err
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	heads, err := p.ListCurrent(ctx, branch.AsHead(), persister.ListOptions{WithData: true})
	if err != nil {
		return nil, err
	}
	branchRevs, err := p.ListCurrent(ctx, branch, persister.ListOptions{})
	if err != nil {
		return nil, err
	}
	branchByName := byName(branchRevs)

	txID := newTxID()
	conflicts := ncube.NewMergeConflictError()
	pulled := make([]ncube.CubeInfo, 0)

	for i := range heads {
		h := &heads[i]
		b := branchByName[strings.ToLower(h.Name)]

		var expect *persister.Expect
		switch {
		case b == nil:
			if h.Deleted {
				continue
			}
			expect = &persister.Expect{Missing: true}
		case sameState(b, h):
			if b.HeadSha1 != h.Sha1 || b.Changed {
				if err := p.SyncHeadSha1(ctx, branch, b.Name, b.Revision, h.Sha1); err != nil {
					return pulled, err
				}
			}
			continue
		case b.Changed && b.HeadSha1 == h.Sha1:
			// HEAD has not moved; the branch is ahead
			continue
		case !b.Changed || (b.Sha1 == b.HeadSha1 && !b.Deleted):
			expect = &persister.Expect{Sha1: b.Sha1}
		default:
			conflicts.Add(conflictOf(b, h, ncube.ReasonBothChanged))
			continue
		}

		info, err := p.AppendRevision(ctx, persister.Record{
			AppID:    branch,
			Name:     h.Name,
			Sha1:     h.Sha1,
			HeadSha1: h.Sha1,
			Deleted:  h.Deleted,
			Notes:    "updated from HEAD",
			Author:   user,
			TxID:     txID,
			Data:     h.Data,
		}, expect)
		if errors.Is(err, persister.ErrStale) {
			conflicts.Add(ncube.Conflict{Name: h.Name, HeadSha1: h.Sha1, Reason: ncube.ReasonBothChanged})
			continue
		}
		if err != nil {
			return pulled, err
		}
		m.cache.evict(branch, h.Name)
		pulled = append(pulled, *info)
	}

	branchOperations.WithLabelValues("update").Add(float64(len(pulled)))
	mergeConflicts.WithLabelValues("update").Add(float64(conflicts.Len()))
	m.logger.Info("branch updated", "app", branch.String(), "pulled", len(pulled), "conflicts", conflicts.Len())
	return pulled, conflicts.OrNil()
}

// RollbackBranch discards local edits of the named cubes, returning each to the content
// it had when last synced with HEAD. Cubes created on the branch are deleted. It returns
// the number of cubes rolled back.
func (m *Manager) RollbackBranch(ctx context.Context, branch *ncube.ApplicationID, names []string, user string) (int, error) {
	if err := requireBranch(branch); err != nil {
		return 0, err
	}
	if err := requireMutable(branch, "rollback"); err != nil {
		return 0, err
	}
	p, err := m.store()
	if err != nil {
		return 0, err
	}

	txID := newTxID()
	count := 0
	for _, name := range uniqueNames(names) {
		b, h, err := m.loadPair(ctx, branch, name)
		if err != nil {
			return count, err
		}
		if b == nil {
			return count, ncube.IllegalArgument("cannot rollback cube %s, it does not exist in %s", name, branch)
		}

		rec := persister.Record{
			AppID:    branch,
			Name:     b.Name,
			HeadSha1: b.HeadSha1,
			Notes:    "rolled back",
			Author:   user,
			TxID:     txID,
		}
		if b.HeadSha1 == "" {
			if b.Deleted {
				continue
			}
			rec.Sha1, rec.Data, rec.Deleted = b.Sha1, b.Data, true
		} else {
			deleted := h != nil && h.Sha1 == b.HeadSha1 && h.Deleted
			if b.Sha1 == b.HeadSha1 && b.Deleted == deleted && !b.Changed {
				continue
			}
			data := b.Data
			if b.Sha1 != b.HeadSha1 {
				snap, err := p.LoadBySha1(ctx, branch, b.Name, b.HeadSha1)
				if err != nil {
					return count, ncube.IllegalState("cannot rollback cube %s, content %s is gone: %v", b.Name, b.HeadSha1, err)
				}
				if data, err = renamedData(snap, b.Name); err != nil {
					return count, err
				}
			}
			rec.Sha1, rec.Data, rec.Deleted = b.HeadSha1, data, deleted
		}

		if _, err := p.AppendRevision(ctx, rec, &persister.Expect{Sha1: b.Sha1}); err != nil {
			return count, storeError(err)
		}
		m.cache.evict(branch, b.Name)
		count++
	}

	branchOperations.WithLabelValues("rollback").Add(float64(count))
	m.logger.Info("branch rolled back", "app", branch.String(), "cubes", count)
	return count, nil
}

// renamedData returns the stored content under name, re-encoding only when the stored
// spelling differs.
func renamedData(rev *persister.Revision, name string) ([]byte, error) {
	if rev.Name == name {
		return rev.Data, nil
	}
	return renamed(rev, name)
}

// MergeOverwriteHeadCube forces HEAD's cube to the branch's content, provided HEAD is
// still at expectedHeadSha1 ("" when HEAD has no such cube).
func (m *Manager) MergeOverwriteHeadCube(ctx context.Context, branch *ncube.ApplicationID, name, expectedHeadSha1, user string) (*ncube.CubeInfo, error) {
	if err := requireBranch(branch); err != nil {
		return nil, err
	}
	if err := requireMutable(branch, "overwrite"); err != nil {
		return nil, err
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	b, h, err := m.loadPair(ctx, branch, name)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ncube.IllegalArgument("cannot overwrite HEAD with cube %s, it does not exist in %s", name, branch)
	}
	expect, err := expectation(h, expectedHeadSha1, "HEAD", name)
	if err != nil {
		return nil, err
	}

	info, err := p.AppendRevision(ctx, persister.Record{
		AppID:   branch.AsHead(),
		Name:    b.Name,
		Sha1:    b.Sha1,
		Deleted: b.Deleted,
		Notes:   "overwritten from " + branch.Branch(),
		Author:  user,
		Data:    b.Data,
	}, expect)
	if err != nil {
		return nil, storeError(err)
	}
	if err := p.SyncHeadSha1(ctx, branch, b.Name, b.Revision, b.Sha1); err != nil {
		return nil, err
	}
	m.cache.evict(branch.AsHead(), b.Name)
	m.cache.evict(branch, b.Name)
	branchOperations.WithLabelValues("overwrite_head").Inc()
	return info, nil
}

// MergeOverwriteBranchCube forces the branch's cube to HEAD's content, provided the
// branch is still at expectedBranchSha1 ("" when the branch has no such cube).
func (m *Manager) MergeOverwriteBranchCube(ctx context.Context, branch *ncube.ApplicationID, name, expectedBranchSha1, user string) (*ncube.CubeInfo, error) {
	if err := requireBranch(branch); err != nil {
		return nil, err
	}
	if err := requireMutable(branch, "overwrite"); err != nil {
		return nil, err
	}
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	b, h, err := m.loadPair(ctx, branch, name)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ncube.IllegalArgument("cannot overwrite branch with cube %s, it does not exist in HEAD", name)
	}
	expect, err := expectation(b, expectedBranchSha1, "branch", name)
	if err != nil {
		return nil, err
	}

	info, err := p.AppendRevision(ctx, persister.Record{
		AppID:    branch,
		Name:     h.Name,
		Sha1:     h.Sha1,
		HeadSha1: h.Sha1,
		Deleted:  h.Deleted,
		Notes:    "overwritten from HEAD",
		Author:   user,
		Data:     h.Data,
	}, expect)
	if err != nil {
		return nil, storeError(err)
	}
	m.cache.evict(branch, h.Name)
	branchOperations.WithLabelValues("overwrite_branch").Inc()
	return info, nil
}

// expectation checks the caller's view of cur before handing the same check to the
// persister, which repeats it under a row lock.
func expectation(cur *persister.Revision, expectedSha1, side, name string) (*persister.Expect, error) {
	if cur == nil {
		if expectedSha1 != "" {
			return nil, ncube.IllegalState("%s has no cube %s, expected sha1 %s", side, name, expectedSha1)
		}
		return &persister.Expect{Missing: true}, nil
	}
	if !strings.EqualFold(cur.Sha1, expectedSha1) {
		return nil, ncube.IllegalState("%s cube %s is at sha1 %s, expected %s", side, name, cur.Sha1, expectedSha1)
	}
	return &persister.Expect{Sha1: cur.Sha1}, nil
}
