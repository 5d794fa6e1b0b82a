// classpath.go
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
	"sort"
	"strings"

	"github.com/localnerve/cubedb/internal/ncube"
)

// ClasspathCube is the reserved cube that describes where an app's executable
// resources live.
const ClasspathCube = "sys.classpath"

// Classpath is the resolved execution environment of an app, derived from
// ClasspathCube.
type Classpath struct {
	Entries   []string `json:"entries"`
	Cacheable bool     `json:"cacheable"`
}

// GetClasspath resolves ClasspathCube for input. The result is cached per input unless
// the cube carries cache=false, in which case it is recomputed on every call while the
// cube itself stays cached. A missing cube resolves to an empty classpath.
func (m *Manager) GetClasspath(ctx context.Context, appID *ncube.ApplicationID, input map[string]any) (*Classpath, error) {
	key := classpathKey(input)
	if m.cache.enabled {
		if cp, ok := m.cache.getClasspath(appID, key); ok {
			cacheHits.Inc()
			return cp, nil
		}
	}
	epoch := m.cache.currentEpoch()

	cube, err := m.GetCube(ctx, appID, ClasspathCube)
	if errors.Is(err, ncube.ErrCubeNotFound) {
		cp := &Classpath{Entries: []string{}, Cacheable: true}
		if m.cache.enabled {
			m.cache.putClasspath(appID, key, cp, epoch)
		}
		return cp, nil
	}
	if err != nil {
		return nil, err
	}

	env := &ncube.Env{Executor: m.executor, Resolver: &coordinateResolver{m: m, appID: appID}}
	value, err := cube.GetCell(ctx, input, nil, env)
	if err != nil && !ncube.IsCoordinateNotFound(err) {
		return nil, err
	}
	cp := &Classpath{Entries: classpathEntries(value), Cacheable: cube.IsCacheable()}

	if cp.Cacheable {
		classpathBuilds.WithLabelValues("true").Inc()
		if m.cache.enabled {
			m.cache.putClasspath(appID, key, cp, epoch)
		}
	} else {
		classpathBuilds.WithLabelValues("false").Inc()
	}
	return cp, nil
}

func classpathKey(input map[string]any) string {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strings.ToLower(k))
		b.WriteByte('=')
		b.WriteString(ncube.CanonicalString(input[k]))
		b.WriteByte(';')
	}
	return b.String()
}

// classpathEntries accepts a list, or a string of entries separated by whitespace or
// commas.
func classpathEntries(v any) []string {
	entries := []string{}
	switch t := v.(type) {
	case string:
		for _, f := range strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			entries = append(entries, f)
		}
	case []string:
		entries = append(entries, t...)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				entries = append(entries, s)
			}
		}
	}
	return entries
}
