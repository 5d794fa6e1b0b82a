// cache.go
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
	"strings"
	"sync"

	"github.com/localnerve/cubedb/internal/ncube"
	"golang.org/x/sync/singleflight"
)

// coordCache holds everything cached for one ApplicationID.
type coordCache struct {
	cubes     map[string]*ncube.Cube
	classpath map[string]*Classpath
}

// cubeCache memoizes cubes per (coordinate, case-folded name). Every invalidation bumps
// epoch; a load that started before an invalidation is not stored, so a slow miss cannot
// resurrect an evicted cube.
type cubeCache struct {
	enabled bool

	mu     sync.RWMutex
	epoch  uint64
	coords map[string]*coordCache

	group singleflight.Group
}

func newCubeCache() *cubeCache {
	return &cubeCache{enabled: true, coords: make(map[string]*coordCache)}
}

func (c *cubeCache) currentEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

func (c *cubeCache) get(appID *ncube.ApplicationID, name string) (*ncube.Cube, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cc := c.coords[appID.CacheKey()]
	if cc == nil {
		return nil, false
	}
	cube, ok := cc.cubes[strings.ToLower(name)]
	return cube, ok
}

func (c *cubeCache) coord(appID *ncube.ApplicationID) *coordCache {
	key := appID.CacheKey()
	cc := c.coords[key]
	if cc == nil {
		cc = &coordCache{cubes: make(map[string]*ncube.Cube), classpath: make(map[string]*Classpath)}
		c.coords[key] = cc
	}
	return cc
}

func (c *cubeCache) put(appID *ncube.ApplicationID, name string, cube *ncube.Cube, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	c.coord(appID).cubes[strings.ToLower(name)] = cube
}

func (c *cubeCache) getClasspath(appID *ncube.ApplicationID, key string) (*Classpath, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cc := c.coords[appID.CacheKey()]
	if cc == nil {
		return nil, false
	}
	cp, ok := cc.classpath[key]
	return cp, ok
}

func (c *cubeCache) putClasspath(appID *ncube.ApplicationID, key string, cp *Classpath, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	c.coord(appID).classpath[key] = cp
}

// evict drops the named cubes of one coordinate. Derived artifacts are dropped too since
// any cube may feed them.
func (c *cubeCache) evict(appID *ncube.ApplicationID, names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	cc := c.coords[appID.CacheKey()]
	if cc == nil {
		return
	}
	for _, name := range names {
		delete(cc.cubes, strings.ToLower(name))
	}
	clear(cc.classpath)
}

func (c *cubeCache) clearCoord(appID *ncube.ApplicationID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	delete(c.coords, appID.CacheKey())
}

func (c *cubeCache) clearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.coords = make(map[string]*coordCache)
}

// size returns the number of cached cubes for a coordinate.
func (c *cubeCache) size(appID *ncube.ApplicationID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cc := c.coords[appID.CacheKey()]; cc != nil {
		return len(cc.cubes)
	}
	return 0
}

// ClearCache evicts every cached cube and derived artifact.
func (m *Manager) ClearCache() {
	m.cache.clearAll()
	m.logger.Debug("cube cache cleared")
}

// ClearCacheFor evicts one coordinate's cubes and derived artifacts.
func (m *Manager) ClearCacheFor(appID *ncube.ApplicationID) {
	m.cache.clearCoord(appID)
	m.logger.Debug("cube cache cleared", "app", appID.String())
}

// GetCube returns the current, non-deleted cube. The returned instance may be shared
// with other callers; Clone it before editing. Missing or deleted cubes fail with an
// error wrapping ncube.ErrCubeNotFound.
func (m *Manager) GetCube(ctx context.Context, appID *ncube.ApplicationID, name string) (*ncube.Cube, error) {
	if appID == nil {
		return nil, ncube.IllegalArgument("application id cannot be nil")
	}
	if err := ncube.ValidateCubeName(name); err != nil {
		return nil, err
	}
	if !m.cache.enabled {
		return m.loadCube(ctx, appID, name)
	}

	if cube, ok := m.cache.get(appID, name); ok {
		cacheHits.Inc()
		return cube, nil
	}
	cacheMisses.Inc()

	// The shared load outlives any one caller; each caller still honours its own ctx.
	key := appID.CacheKey() + "/" + strings.ToLower(name)
	loadCtx := context.WithoutCancel(ctx)
	ch := m.cache.group.DoChan(key, func() (any, error) {
		epoch := m.cache.currentEpoch()
		cube, err := m.loadCube(loadCtx, appID, name)
		if err != nil {
			return nil, err
		}
		m.cache.put(appID, name, cube, epoch)
		return cube, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ncube.Cube), nil
	}
}

func (m *Manager) loadCube(ctx context.Context, appID *ncube.ApplicationID, name string) (*ncube.Cube, error) {
	rev, err := m.current(ctx, appID, name)
	if err != nil {
		return nil, err
	}
	if rev == nil || rev.Deleted {
		return nil, ncube.CubeNotFound(name, appID)
	}
	return decode(rev)
}
