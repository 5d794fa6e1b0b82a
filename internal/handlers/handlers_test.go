// handlers_test.go
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

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/config"
	"github.com/localnerve/cubedb/internal/database"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/persister"
	"github.com/localnerve/cubedb/internal/services"
	"github.com/localnerve/cubedb/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	headPath = "/api/cubes/acme/insure/1.0.0/SNAPSHOT/HEAD"
	b1Path   = "/api/cubes/acme/insure/1.0.0/SNAPSHOT/b1"
)

func adminSessions(c *fiber.Ctx, cookie string, roles []string) (*services.SessionUser, error) {
	if cookie != "admin" {
		return nil, errors.New("not an admin session")
	}
	return &services.SessionUser{ID: "u1", Email: "admin@example.com"}, nil
}

func setupTestApp(t *testing.T) *fiber.App {
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

	manager := services.NewManager(persister.NewGormPersister(db))
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	Register(app.Group("/api"), manager, adminSessions)
	app.Use(NotFound)
	return app
}

func ageCubeJSON(t *testing.T, adult string) []byte {
	t.Helper()
	c, err := ncube.NewCube("Age")
	require.NoError(t, err)
	a, err := ncube.NewAxis("age", ncube.AxisRange, ncube.ValueLong)
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(a))
	for _, r := range []ncube.Range{{Low: int64(0), High: int64(18)}, {Low: int64(18), High: int64(150)}} {
		_, err := c.AddColumn("age", r)
		require.NoError(t, err)
	}
	require.NoError(t, c.SetCell("child", map[string]any{"age": 5}))
	require.NoError(t, c.SetCell(adult, map[string]any{"age": 30}))
	data, err := json.Marshal(c)
	require.NoError(t, err)
	return data
}

func do(t *testing.T, app *fiber.App, method, path string, body []byte, admin bool) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Cookie", "cookie_session=admin")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestSaveAndReadCube(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := do(t, app, "POST", headPath+"/Age", ageCubeJSON(t, "adult"), false)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, data := do(t, app, "POST", headPath+"/Age?create=true", ageCubeJSON(t, "adult"), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var saved utils.SuccessResponseStruct
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.True(t, saved.Ok)
	assert.Equal(t, "admin@example.com", saved.Info.Author)

	resp, _ = do(t, app, "POST", headPath+"/Age?create=true", ageCubeJSON(t, "adult"), true)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "POST", headPath+"/Other", ageCubeJSON(t, "adult"), true)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, data = do(t, app, "GET", headPath+"/age", nil, false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cube, err := ncube.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, `"`+cube.SHA1()+`"`, resp.Header.Get("ETag"))

	resp, data = do(t, app, "POST", headPath+"/Age/cell", []byte(`{"age": 30}`), false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var cell map[string]any
	require.NoError(t, json.Unmarshal(data, &cell))
	assert.Equal(t, "adult", cell["value"])

	resp, _ = do(t, app, "POST", headPath+"/Age/cell", []byte(`{"age": 400}`), false)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, data = do(t, app, "GET", headPath+"/", nil, false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var infos []ncube.CubeInfo
	require.NoError(t, json.Unmarshal(data, &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "Age", infos[0].Name)
}

func TestReadErrors(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := do(t, app, "GET", headPath+"/Missing", nil, false)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, "GET", "/api/cubes/acme/insure/one/SNAPSHOT/HEAD/Age", nil, false)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "GET", headPath+"/?filter=sideways", nil, false)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "GET", "/api/nowhere", nil, false)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestBranchConflictOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := do(t, app, "POST", headPath+"/Age", ageCubeJSON(t, "adult"), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = do(t, app, "POST", b1Path+"/branch", nil, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, "POST", b1Path+"/Age", ageCubeJSON(t, "grown-up"), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = do(t, app, "POST", headPath+"/Age", ageCubeJSON(t, "major"), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, data := do(t, app, "GET", b1Path+"/changes", nil, false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var changes []ncube.CubeInfo
	require.NoError(t, json.Unmarshal(data, &changes))
	require.Len(t, changes, 1)
	assert.Equal(t, ncube.ChangeUpdated, changes[0].ChangeType)

	resp, data = do(t, app, "POST", b1Path+"/commit", []byte(`{"names":"Age"}`), true)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	var conflict utils.ErrorResponseStruct
	require.NoError(t, json.Unmarshal(data, &conflict))
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, "Age", conflict.Conflicts[0].Name)
	headSha1 := conflict.Conflicts[0].HeadSha1

	resp, _ = do(t, app, "POST", b1Path+"/Age/overwrite-head", []byte(`{"sha1":"stale"}`), true)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, data = do(t, app, "POST", b1Path+"/Age/overwrite-head", []byte(`{"sha1":"`+headSha1+`"}`), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))

	resp, data = do(t, app, "POST", headPath+"/Age/cell", []byte(`{"age": 30}`), false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "grown-up")

	resp, data = do(t, app, "GET", headPath+"/branches", nil, false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var branches []string
	require.NoError(t, json.Unmarshal(data, &branches))
	assert.ElementsMatch(t, []string{ncube.HeadBranch, "b1"}, branches)

	resp, _ = do(t, app, "DELETE", b1Path, nil, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMetaRoutes(t *testing.T) {
	app := setupTestApp(t)
	resp, _ := do(t, app, "POST", headPath+"/Age", ageCubeJSON(t, "adult"), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, data := do(t, app, "GET", "/api/apps/acme", nil, false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["insure"]`, string(data))

	resp, data = do(t, app, "GET", "/api/apps/acme/insure/versions", nil, false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "1.0.0")

	resp, data = do(t, app, "POST", headPath+"/classpath", []byte(`{"env":"DEV"}`), false)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"entries":[],"cacheable":true}`, string(data))

	resp, _ = do(t, app, "POST", "/api/cache/clear", nil, false)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp, _ = do(t, app, "POST", "/api/cache/clear?tenant=acme&app=insure&version=1.0.0", nil, true)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, data = do(t, app, "GET", "/api/session", nil, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"u1","email":"admin@example.com"}`, string(data))
}

func TestReleaseOverHTTP(t *testing.T) {
	app := setupTestApp(t)
	resp, _ := do(t, app, "POST", headPath+"/Age", ageCubeJSON(t, "adult"), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, data := do(t, app, "POST", headPath+"/release", []byte(`{"newVersion":"1.1.0"}`), true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var released utils.SuccessResponseStruct
	require.NoError(t, json.Unmarshal(data, &released))
	assert.Equal(t, int64(1), released.AffectedRows)

	resp, _ = do(t, app, "POST", "/api/cubes/acme/insure/1.0.0/RELEASE/HEAD/Age", ageCubeJSON(t, "x"), true)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, "GET", "/api/cubes/acme/insure/1.1.0/SNAPSHOT/HEAD/Age", nil, false)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
