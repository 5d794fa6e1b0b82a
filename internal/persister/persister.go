// persister.go
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

// Package persister stores cube revisions. Every call is atomic on its own; callers that
// span several calls must tolerate partial progress.
package persister

import (
	"context"
	"errors"

	"github.com/localnerve/cubedb/internal/ncube"
)

var (
	// ErrNotFound is returned when no revision matches the request.
	ErrNotFound = errors.New("cube revision not found")

	// ErrStale is returned when an append's expectation no longer holds, or a concurrent
	// append claimed the same revision number.
	ErrStale = errors.New("cube changed concurrently")
)

// Record is a revision to append. The revision number is assigned by the store.
type Record struct {
	AppID    *ncube.ApplicationID
	Name     string
	Sha1     string
	HeadSha1 string
	Deleted  bool
	Changed  bool
	Notes    string
	Author   string
	TxID     string
	Data     []byte
}

// Expect is the optimistic precondition of an append, checked against the current row
// under a row lock.
type Expect struct {
	// Missing requires that the name has no revisions at the coordinate.
	Missing bool
	// Sha1 requires the current revision to carry this hash.
	Sha1 string
}

// Revision is a stored revision record with its encoded cube, when requested.
type Revision struct {
	ncube.CubeInfo
	Data []byte
}

// Filter selects current revisions by deletion state.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterDeleted
)

// ListOptions narrows ListCurrent.
type ListOptions struct {
	// Pattern is a case-insensitive glob over cube names; empty matches all.
	Pattern     string
	Filter      Filter
	ChangedOnly bool
	WithData    bool
}

// VersionInfo is one version/status pair of an application.
type VersionInfo struct {
	Version string              `json:"version"`
	Status  ncube.ReleaseStatus `json:"status"`
}

// Persister is the storage contract of the cube manager.
type Persister interface {
	AppendRevision(ctx context.Context, rec Record, expect *Expect) (*ncube.CubeInfo, error)
	AppendRevisions(ctx context.Context, recs []Record) ([]ncube.CubeInfo, error)
	SyncHeadSha1(ctx context.Context, appID *ncube.ApplicationID, name string, revision int64, headSha1 string) error
	UpdateNotes(ctx context.Context, appID *ncube.ApplicationID, name, notes string) error

	LoadCurrent(ctx context.Context, appID *ncube.ApplicationID, name string) (*Revision, error)
	LoadRevision(ctx context.Context, appID *ncube.ApplicationID, name string, revision int64) (*Revision, error)
	LoadBySha1(ctx context.Context, appID *ncube.ApplicationID, name, sha1 string) (*Revision, error)
	ListCurrent(ctx context.Context, appID *ncube.ApplicationID, opts ListOptions) ([]Revision, error)
	RevisionHistory(ctx context.Context, appID *ncube.ApplicationID, name string) ([]ncube.CubeInfo, error)

	AppNames(ctx context.Context, tenant string) ([]string, error)
	AppVersions(ctx context.Context, tenant, app string) ([]VersionInfo, error)
	Branches(ctx context.Context, appID *ncube.ApplicationID) ([]string, error)
	HasRows(ctx context.Context, appID *ncube.ApplicationID) (bool, error)

	DeleteBranch(ctx context.Context, appID *ncube.ApplicationID) (int64, error)
	ReleaseCubes(ctx context.Context, appID *ncube.ApplicationID, newVersion string) (int64, error)
	ChangeVersion(ctx context.Context, appID *ncube.ApplicationID, newVersion string) (int64, error)
}
