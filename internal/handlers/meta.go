// meta.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/middleware"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/services"
	"github.com/localnerve/cubedb/internal/utils"
)

// MetaHandler handles enumeration, classpath and cache routes
type MetaHandler struct {
	Manager *services.Manager
}

// ListApps handles GET /api/apps/:tenant
// @Summary List applications
// @Tags Meta
// @Produce json
// @Param tenant path string true "Tenant"
// @Success 200 {array} string
// @Router /apps/{tenant} [get]
func (h *MetaHandler) ListApps(c *fiber.Ctx) error {
	apps, err := h.Manager.GetAppNames(c.UserContext(), c.Params("tenant"))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, apps, fiber.StatusOK)
}

// ListVersions handles GET /api/apps/:tenant/:app/versions
// @Summary List application versions
// @Tags Meta
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Success 200 {array} persister.VersionInfo
// @Router /apps/{tenant}/{app}/versions [get]
func (h *MetaHandler) ListVersions(c *fiber.Ctx) error {
	versions, err := h.Manager.GetAppVersions(c.UserContext(), c.Params("tenant"), c.Params("app"))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, versions, fiber.StatusOK)
}

// GetClasspath handles POST /api/cubes/:tenant/:app/:version/:status/:branch/classpath
// @Summary Resolve the classpath
// @Description Evaluate sys.classpath for the coordinate in the body
// @Tags Meta
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT or RELEASE"
// @Param branch path string true "Branch"
// @Param body body object false "Coordinate, axis name to value"
// @Success 200 {object} services.Classpath
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/classpath [post]
func (h *MetaHandler) GetClasspath(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	input, err := decodeInput(c.Body())
	if err != nil {
		return err
	}
	cp, err := h.Manager.GetClasspath(c.UserContext(), appID, input)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, cp, fiber.StatusOK)
}

// ClearCache handles POST /api/cache/clear
// @Summary Clear the cube cache
// @Description Clear every cached cube, or one coordinate's when tenant is given. Status defaults to SNAPSHOT and branch to HEAD.
// @Tags Meta
// @Produce json
// @Param tenant query string false "Tenant"
// @Param app query string false "Application"
// @Param version query string false "Version"
// @Param status query string false "Status"
// @Param branch query string false "Branch"
// @Success 200 {object} utils.SuccessResponseStruct
// @Security CookieAuth
// @Router /cache/clear [post]
func (h *MetaHandler) ClearCache(c *fiber.Ctx) error {
	if c.Query("tenant") == "" {
		h.Manager.ClearCache()
		return utils.CountResponse(c, 0)
	}
	appID, err := ncube.NewApplicationID(c.Query("tenant"), c.Query("app"), c.Query("version"),
		ncube.ReleaseStatus(c.Query("status", string(ncube.StatusSnapshot))), c.Query("branch", ncube.HeadBranch))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	h.Manager.ClearCacheFor(appID)
	return utils.CountResponse(c, 0)
}

// Session handles GET /api/session
// @Summary Current session user
// @Tags Meta
// @Produce json
// @Success 200 {object} services.SessionUser
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /session [get]
func (h *MetaHandler) Session(c *fiber.Ctx) error {
	user := middleware.User(c)
	if user == nil {
		return utils.ErrorResponse(c, "user not found in context", fiber.StatusForbidden, "cube.authorization.user")
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}
