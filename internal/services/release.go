// release.go
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

	"github.com/localnerve/cubedb/internal/ncube"
)

// ReleaseCubes freezes the SNAPSHOT HEAD of appID's version as RELEASE and opens
// newVersion as the next SNAPSHOT, seeded with the released cubes. Branches at the old
// version move to newVersion. It returns the number of cubes released.
func (m *Manager) ReleaseCubes(ctx context.Context, appID *ncube.ApplicationID, newVersion string) (int64, error) {
	if err := requireMutable(appID, "release"); err != nil {
		return 0, err
	}
	if err := ncube.ValidateVersion(newVersion); err != nil {
		return 0, err
	}
	if newVersion == appID.Version() {
		return 0, ncube.IllegalArgument("new version %s must differ from %s", newVersion, appID.Version())
	}
	p, err := m.store()
	if err != nil {
		return 0, err
	}

	next, err := appID.AsHead().CreateNewSnapshotID(newVersion)
	if err != nil {
		return 0, err
	}
	exists, err := p.HasRows(ctx, next)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ncube.IllegalState("cannot release %s, version %s already has cubes", appID, newVersion)
	}

	n, err := p.ReleaseCubes(ctx, appID, newVersion)
	if err != nil {
		return 0, storeError(err)
	}
	m.ClearCache()
	branchOperations.WithLabelValues("release").Add(float64(n))
	return n, nil
}

// ChangeVersionValue renumbers a SNAPSHOT version, branches included.
func (m *Manager) ChangeVersionValue(ctx context.Context, appID *ncube.ApplicationID, newVersion string) (int64, error) {
	if err := requireMutable(appID, "change version of"); err != nil {
		return 0, err
	}
	if err := ncube.ValidateVersion(newVersion); err != nil {
		return 0, err
	}
	if newVersion == appID.Version() {
		return 0, nil
	}
	p, err := m.store()
	if err != nil {
		return 0, err
	}
	n, err := p.ChangeVersion(ctx, appID, newVersion)
	if err != nil {
		return 0, storeError(err)
	}
	if n == 0 {
		return 0, ncube.IllegalArgument("version %s of %s/%s has no cubes", appID.Version(), appID.Tenant(), appID.App())
	}
	m.ClearCache()
	m.logger.Info("version changed", "app", appID.String(), "newVersion", newVersion, "rows", n)
	return n, nil
}
