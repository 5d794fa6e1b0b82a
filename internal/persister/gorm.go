// gorm.go
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

package persister

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/cubedb/internal/models"
	"github.com/localnerve/cubedb/internal/ncube"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// latestRevision keeps only the newest revision row of each cube at its coordinate.
const latestRevision = "cube_revisions.revision = (SELECT MAX(m.revision) FROM cube_revisions m" +
	" WHERE m.tenant = cube_revisions.tenant AND m.app = cube_revisions.app" +
	" AND m.version = cube_revisions.version AND m.status = cube_revisions.status" +
	" AND m.branch = cube_revisions.branch AND m.name_key = cube_revisions.name_key)"

// GormPersister stores revisions in the cube_revisions table through gorm.
type GormPersister struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Option configures a GormPersister.
type Option func(*GormPersister)

// WithLogger sets the structured logger used for write diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *GormPersister) { p.logger = l }
}

// NewGormPersister wraps an open, migrated connection.
func NewGormPersister(db *gorm.DB, opts ...Option) *GormPersister {
	p := &GormPersister{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ Persister = (*GormPersister)(nil)

func (p *GormPersister) session(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx).Session(&gorm.Session{Logger: p.db.Logger.LogMode(logger.Silent)})
}

// coordinate scopes a query to one tenant/app/version/status/branch.
func coordinate(appID *ncube.ApplicationID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant = ? AND app = ? AND version = ? AND status = ? AND branch = ?",
			strings.ToLower(appID.Tenant()),
			strings.ToLower(appID.App()),
			appID.Version(),
			string(appID.Status()),
			strings.ToLower(appID.Branch()),
		)
	}
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

// AppendRevision writes the next revision of rec.Name. The current row is read under a
// row lock and checked against expect before the insert.
func (p *GormPersister) AppendRevision(ctx context.Context, rec Record, expect *Expect) (*ncube.CubeInfo, error) {
	var info *ncube.CubeInfo
	err := p.session(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		info, err = p.append(tx, rec, expect)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// AppendRevisions writes every record in one transaction.
func (p *GormPersister) AppendRevisions(ctx context.Context, recs []Record) ([]ncube.CubeInfo, error) {
	infos := make([]ncube.CubeInfo, 0, len(recs))
	err := p.session(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range recs {
			info, err := p.append(tx, rec, nil)
			if err != nil {
				return err
			}
			infos = append(infos, *info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

func (p *GormPersister) append(tx *gorm.DB, rec Record, expect *Expect) (*ncube.CubeInfo, error) {
	key := nameKey(rec.Name)

	var current models.CubeRevision
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Model(&models.CubeRevision{}).
		Scopes(coordinate(rec.AppID)).
		Where("name_key = ?", key).
		Omit("cube_data").
		Order("revision DESC").
		Limit(1).
		Find(&current)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to lock cube %s: %w", rec.Name, result.Error)
	}
	found := result.RowsAffected > 0

	if expect != nil {
		if expect.Missing && found {
			return nil, fmt.Errorf("%w: %s already exists in %s", ErrStale, rec.Name, rec.AppID)
		}
		if expect.Sha1 != "" && (!found || !strings.EqualFold(current.Sha1, expect.Sha1)) {
			return nil, fmt.Errorf("%w: %s no longer at %s", ErrStale, rec.Name, expect.Sha1)
		}
	}

	row := models.CubeRevision{
		Tenant:   strings.ToLower(rec.AppID.Tenant()),
		App:      strings.ToLower(rec.AppID.App()),
		Version:  rec.AppID.Version(),
		Status:   string(rec.AppID.Status()),
		Branch:   strings.ToLower(rec.AppID.Branch()),
		NameKey:  key,
		Name:     rec.Name,
		Sha1:     rec.Sha1,
		HeadSha1: rec.HeadSha1,
		Deleted:  rec.Deleted,
		Changed:  rec.Changed,
		Notes:    rec.Notes,
		Author:   rec.Author,
		TxID:     rec.TxID,
		CubeData: models.NewCubeData(rec.Data),
	}
	if found {
		row.Revision = current.Revision + 1
	}
	if row.TxID == "" {
		row.TxID = uuid.New().String()
	}

	if err := tx.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: revision %d of %s was taken", ErrStale, row.Revision, rec.Name)
		}
		return nil, fmt.Errorf("failed to append cube %s: %w", rec.Name, err)
	}

	p.logger.Debug("cube revision appended",
		"app", rec.AppID.String(),
		"cube", rec.Name,
		"revision", row.Revision,
		"deleted", row.Deleted,
		"sha1", row.Sha1,
	)
	return toInfo(&row, rec.AppID), nil
}

// SyncHeadSha1 records that the given branch revision now matches HEAD at headSha1.
func (p *GormPersister) SyncHeadSha1(ctx context.Context, appID *ncube.ApplicationID, name string, revision int64, headSha1 string) error {
	result := p.session(ctx).
		Model(&models.CubeRevision{}).
		Scopes(coordinate(appID)).
		Where("name_key = ? AND revision = ?", nameKey(name), revision).
		Updates(map[string]any{"head_sha1": headSha1, "changed": false})
	if result.Error != nil {
		return fmt.Errorf("failed to sync %s: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s revision %d in %s", ErrNotFound, name, revision, appID)
	}
	return nil
}

// UpdateNotes replaces the notes of the current revision.
func (p *GormPersister) UpdateNotes(ctx context.Context, appID *ncube.ApplicationID, name, notes string) error {
	return p.session(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.CubeRevision
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Model(&models.CubeRevision{}).
			Scopes(coordinate(appID)).
			Where("name_key = ?", nameKey(name)).
			Omit("cube_data").
			Order("revision DESC").
			Limit(1).
			Find(&current)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s in %s", ErrNotFound, name, appID)
		}
		return tx.Model(&current).Update("notes", notes).Error
	})
}

// LoadCurrent returns the newest revision, deleted or not, with its data.
func (p *GormPersister) LoadCurrent(ctx context.Context, appID *ncube.ApplicationID, name string) (*Revision, error) {
	var row models.CubeRevision
	result := p.session(ctx).
		Clauses(hints.Comment("select", "cube:current")).
		Scopes(coordinate(appID)).
		Where("name_key = ?", nameKey(name)).
		Order("revision DESC").
		Limit(1).
		Find(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, appID)
	}
	return toRevision(&row, appID), nil
}

// LoadRevision returns a specific revision. A negative revision counts back from the
// newest: -1 is the revision before the current one.
func (p *GormPersister) LoadRevision(ctx context.Context, appID *ncube.ApplicationID, name string, revision int64) (*Revision, error) {
	query := p.session(ctx).
		Clauses(hints.Comment("select", "cube:revision")).
		Scopes(coordinate(appID)).
		Where("name_key = ?", nameKey(name))
	if revision < 0 {
		query = query.Order("revision DESC").Offset(int(-revision))
	} else {
		query = query.Where("revision = ?", revision)
	}

	var row models.CubeRevision
	result := query.Limit(1).Find(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load %s revision %d: %w", name, revision, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s revision %d in %s", ErrNotFound, name, revision, appID)
	}
	return toRevision(&row, appID), nil
}

// LoadBySha1 finds the newest stored revision of the named cube, at any version or
// branch of the same tenant and app, whose content hash is sha1.
func (p *GormPersister) LoadBySha1(ctx context.Context, appID *ncube.ApplicationID, name, sha1 string) (*Revision, error) {
	var row models.CubeRevision
	result := p.session(ctx).
		Clauses(hints.Comment("select", "cube:sha1")).
		Where("tenant = ? AND app = ? AND name_key = ? AND sha1 = ?",
			strings.ToLower(appID.Tenant()), strings.ToLower(appID.App()), nameKey(name), sha1).
		Order("id DESC").
		Limit(1).
		Find(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load %s by sha1: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s with sha1 %s", ErrNotFound, name, sha1)
	}
	return toRevision(&row, nil), nil
}

// ListCurrent returns the newest revision of every cube at the coordinate, ordered by
// name.
func (p *GormPersister) ListCurrent(ctx context.Context, appID *ncube.ApplicationID, opts ListOptions) ([]Revision, error) {
	query := p.session(ctx).
		Clauses(hints.Comment("select", "cube:list")).
		Model(&models.CubeRevision{}).
		Scopes(coordinate(appID)).
		Where(latestRevision)

	switch opts.Filter {
	case FilterActive:
		query = query.Where("deleted = ?", false)
	case FilterDeleted:
		query = query.Where("deleted = ?", true)
	}
	if opts.ChangedOnly {
		query = query.Where("changed = ?", true)
	}
	if !opts.WithData {
		query = query.Omit("cube_data")
	}

	var rows []models.CubeRevision
	if err := query.Order("name_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list cubes in %s: %w", appID, err)
	}

	pattern := strings.ToLower(opts.Pattern)
	revs := make([]Revision, 0, len(rows))
	for i := range rows {
		if pattern != "" {
			if ok, err := path.Match(pattern, rows[i].NameKey); err != nil || !ok {
				continue
			}
		}
		revs = append(revs, *toRevision(&rows[i], appID))
	}
	return revs, nil
}

// RevisionHistory lists every revision of a cube, newest first, without data.
func (p *GormPersister) RevisionHistory(ctx context.Context, appID *ncube.ApplicationID, name string) ([]ncube.CubeInfo, error) {
	var rows []models.CubeRevision
	if err := p.session(ctx).
		Clauses(hints.Comment("select", "cube:history")).
		Model(&models.CubeRevision{}).
		Scopes(coordinate(appID)).
		Where("name_key = ?", nameKey(name)).
		Omit("cube_data").
		Order("revision DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load history of %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, appID)
	}

	infos := make([]ncube.CubeInfo, len(rows))
	for i := range rows {
		infos[i] = *toInfo(&rows[i], appID)
	}
	return infos, nil
}

// AppNames lists the apps stored for a tenant.
func (p *GormPersister) AppNames(ctx context.Context, tenant string) ([]string, error) {
	var apps []string
	if err := p.session(ctx).
		Model(&models.CubeRevision{}).
		Distinct("app").
		Where("tenant = ?", strings.ToLower(tenant)).
		Order("app").
		Pluck("app", &apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}

// AppVersions lists the version/status pairs stored for an app.
func (p *GormPersister) AppVersions(ctx context.Context, tenant, app string) ([]VersionInfo, error) {
	var rows []struct {
		Version string
		Status  string
	}
	if err := p.session(ctx).
		Model(&models.CubeRevision{}).
		Distinct("version", "status").
		Where("tenant = ? AND app = ?", strings.ToLower(tenant), strings.ToLower(app)).
		Order("version").
		Order("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	versions := make([]VersionInfo, len(rows))
	for i, r := range rows {
		versions[i] = VersionInfo{Version: r.Version, Status: ncube.ReleaseStatus(r.Status)}
	}
	return versions, nil
}

// Branches lists the branches stored at the app's version and status.
func (p *GormPersister) Branches(ctx context.Context, appID *ncube.ApplicationID) ([]string, error) {
	var branches []string
	if err := p.session(ctx).
		Model(&models.CubeRevision{}).
		Distinct("branch").
		Where("tenant = ? AND app = ? AND version = ? AND status = ?",
			strings.ToLower(appID.Tenant()), strings.ToLower(appID.App()), appID.Version(), string(appID.Status())).
		Order("branch").
		Pluck("branch", &branches).Error; err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	for i, b := range branches {
		branches[i] = branchName(b)
	}
	return branches, nil
}

// HasRows reports whether anything is stored at the coordinate.
func (p *GormPersister) HasRows(ctx context.Context, appID *ncube.ApplicationID) (bool, error) {
	var ids []uint64
	if err := p.session(ctx).
		Model(&models.CubeRevision{}).
		Scopes(coordinate(appID)).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// DeleteBranch physically removes every revision of the branch.
func (p *GormPersister) DeleteBranch(ctx context.Context, appID *ncube.ApplicationID) (int64, error) {
	result := p.session(ctx).Scopes(coordinate(appID)).Delete(&models.CubeRevision{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete branch %s: %w", appID, result.Error)
	}
	return result.RowsAffected, nil
}

// ReleaseCubes turns the SNAPSHOT HEAD of appID's version into a RELEASE, moves every
// other branch to newVersion, and seeds a SNAPSHOT HEAD at newVersion with the released
// cubes. It returns the number of cubes released.
func (p *GormPersister) ReleaseCubes(ctx context.Context, appID *ncube.ApplicationID, newVersion string) (int64, error) {
	snapshotHead := appID.AsSnapshot().AsHead()
	tenant := strings.ToLower(appID.Tenant())
	app := strings.ToLower(appID.App())
	oldVersion := appID.Version()

	var released int64
	err := p.session(ctx).Transaction(func(tx *gorm.DB) error {
		var taken []uint64
		if err := tx.Model(&models.CubeRevision{}).
			Where("tenant = ? AND app = ? AND ((version = ?) OR (version = ? AND status = ?))",
				tenant, app, newVersion, oldVersion, string(ncube.StatusRelease)).
			Limit(1).
			Pluck("id", &taken).Error; err != nil {
			return err
		}
		if len(taken) > 0 {
			return fmt.Errorf("%w: version %s or release %s already exists", ErrStale, newVersion, oldVersion)
		}

		var heads []models.CubeRevision
		if err := tx.Model(&models.CubeRevision{}).
			Scopes(coordinate(snapshotHead)).
			Where(latestRevision).
			Where("deleted = ?", false).
			Order("name_key").
			Find(&heads).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.CubeRevision{}).
			Where("tenant = ? AND app = ? AND version = ? AND status = ? AND branch <> ?",
				tenant, app, oldVersion, string(ncube.StatusSnapshot), strings.ToLower(ncube.HeadBranch)).
			Update("version", newVersion).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.CubeRevision{}).
			Scopes(coordinate(snapshotHead)).
			Update("status", string(ncube.StatusRelease)).Error; err != nil {
			return err
		}

		if len(heads) == 0 {
			return nil
		}
		txID := uuid.New().String()
		seeded := make([]models.CubeRevision, len(heads))
		for i, h := range heads {
			seeded[i] = models.CubeRevision{
				Tenant:   tenant,
				App:      app,
				Version:  newVersion,
				Status:   string(ncube.StatusSnapshot),
				Branch:   strings.ToLower(ncube.HeadBranch),
				NameKey:  h.NameKey,
				Name:     h.Name,
				Sha1:     h.Sha1,
				Notes:    fmt.Sprintf("released from %s", oldVersion),
				Author:   h.Author,
				TxID:     txID,
				CubeData: h.CubeData,
			}
		}
		if err := tx.CreateInBatches(seeded, 100).Error; err != nil {
			return err
		}
		released = int64(len(heads))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to release %s: %w", appID, err)
	}

	p.logger.Info("cubes released", "app", snapshotHead.String(), "newVersion", newVersion, "count", released)
	return released, nil
}

// ChangeVersion moves every branch of a SNAPSHOT version to newVersion.
func (p *GormPersister) ChangeVersion(ctx context.Context, appID *ncube.ApplicationID, newVersion string) (int64, error) {
	tenant := strings.ToLower(appID.Tenant())
	app := strings.ToLower(appID.App())

	var moved int64
	err := p.session(ctx).Transaction(func(tx *gorm.DB) error {
		var taken []uint64
		if err := tx.Model(&models.CubeRevision{}).
			Where("tenant = ? AND app = ? AND version = ?", tenant, app, newVersion).
			Limit(1).
			Pluck("id", &taken).Error; err != nil {
			return err
		}
		if len(taken) > 0 {
			return fmt.Errorf("%w: version %s already exists", ErrStale, newVersion)
		}

		result := tx.Model(&models.CubeRevision{}).
			Where("tenant = ? AND app = ? AND version = ? AND status = ?",
				tenant, app, appID.Version(), string(ncube.StatusSnapshot)).
			Update("version", newVersion)
		if result.Error != nil {
			return result.Error
		}
		moved = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to change version of %s: %w", appID, err)
	}
	return moved, nil
}

// branchName restores the canonical spelling of HEAD from its stored form.
func branchName(stored string) string {
	if strings.EqualFold(stored, ncube.HeadBranch) {
		return ncube.HeadBranch
	}
	return stored
}

// rowAppID rebuilds the identity of a stored row. Stored parts are already valid.
func rowAppID(row *models.CubeRevision) *ncube.ApplicationID {
	id, err := ncube.NewApplicationID(row.Tenant, row.App, row.Version, ncube.ReleaseStatus(row.Status), branchName(row.Branch))
	if err != nil {
		return nil
	}
	return id
}

func toInfo(row *models.CubeRevision, appID *ncube.ApplicationID) *ncube.CubeInfo {
	if appID == nil {
		appID = rowAppID(row)
	}
	return &ncube.CubeInfo{
		AppID:     appID,
		Name:      row.Name,
		Revision:  row.Revision,
		Sha1:      row.Sha1,
		HeadSha1:  row.HeadSha1,
		Deleted:   row.Deleted,
		Changed:   row.Changed,
		Notes:     row.Notes,
		Author:    row.Author,
		TxID:      row.TxID,
		CreatedAt: row.CreatedAt,
	}
}

func toRevision(row *models.CubeRevision, appID *ncube.ApplicationID) *Revision {
	return &Revision{CubeInfo: *toInfo(row, appID), Data: row.CubeData.Bytes()}
}
