// cubes.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/middleware"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/services"
	"github.com/localnerve/cubedb/internal/types"
	"github.com/localnerve/cubedb/internal/utils"
)

// CubeHandler handles the cube routes of one coordinate
type CubeHandler struct {
	Manager *services.Manager
}

// ListCubes handles GET /api/cubes/:tenant/:app/:version/:status/:branch
// @Summary List cubes
// @Description List the current revision record of every cube at a coordinate
// @Tags Cubes
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version (major.minor.patch)"
// @Param status path string true "SNAPSHOT or RELEASE"
// @Param branch path string true "Branch, HEAD for the shared head"
// @Param pattern query string false "Glob over cube names"
// @Param filter query string false "active (default), deleted or all"
// @Success 200 {array} ncube.CubeInfo
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch} [get]
func (h *CubeHandler) ListCubes(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	filter, err := parseFilter(c.Query("filter"))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}

	infos, err := h.Manager.GetCubeInfos(c.UserContext(), appID, c.Query("pattern"), filter)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, infos, fiber.StatusOK)
}

// GetCube handles GET /api/cubes/:tenant/:app/:version/:status/:branch/:cube
// @Summary Get a cube
// @Description Get the current cube definition, or a past revision with ?revision=
// @Tags Cubes
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT or RELEASE"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name"
// @Param revision query string false "Revision number, negative counts back from the newest"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube} [get]
func (h *CubeHandler) GetCube(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	name := c.Params("cube")

	if rev := c.Query("revision"); rev != "" {
		revision, err := types.ParseFlexInt64(rev)
		if err != nil {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "cube.validation.revision")
		}
		cube, _, err := h.Manager.LoadCubeRevision(c.UserContext(), appID, name, revision.Int64())
		if err != nil {
			return utils.StoreErrorResponse(c, err)
		}
		return utils.SuccessResponse(c, cube, fiber.StatusOK)
	}

	cube, err := h.Manager.GetCube(c.UserContext(), appID, name)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	c.Set("ETag", `"`+cube.SHA1()+`"`)
	return utils.SuccessResponse(c, cube, fiber.StatusOK)
}

// GetCell handles POST /api/cubes/:tenant/:app/:version/:status/:branch/:cube/cell
// @Summary Look up a cell
// @Description Bind the JSON coordinate in the body and evaluate the cell, running registered advice
// @Tags Cubes
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT or RELEASE"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name"
// @Param body body object true "Coordinate, axis name to value"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube}/cell [post]
func (h *CubeHandler) GetCell(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	input, err := decodeInput(c.Body())
	if err != nil {
		return err
	}

	output := make(map[string]any)
	value, executed, err := h.Manager.Execute(c.UserContext(), appID, c.Params("cube"), input, output)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"value":    value,
		"executed": executed,
		"output":   output,
	})
}

// GetHistory handles GET /api/cubes/:tenant/:app/:version/:status/:branch/:cube/history
// @Summary Revision history
// @Description Every revision record of a cube, newest first
// @Tags Cubes
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT or RELEASE"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name"
// @Success 200 {array} ncube.CubeInfo
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube}/history [get]
func (h *CubeHandler) GetHistory(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	history, err := h.Manager.GetRevisionHistory(c.UserContext(), appID, c.Params("cube"))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, history, fiber.StatusOK)
}

// SaveCube handles POST /api/cubes/:tenant/:app/:version/:status/:branch/:cube
// @Summary Create or update a cube
// @Description Store the cube definition in the body as a new revision. With ?create=true an existing cube is an error.
// @Tags Cubes
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name, must match the body"
// @Param create query bool false "Fail if the cube exists"
// @Param body body object true "Cube definition"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube} [post]
func (h *CubeHandler) SaveCube(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}

	cube, err := ncube.FromJSON(c.Body())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "cube.validation.input")
	}
	if !strings.EqualFold(cube.Name(), c.Params("cube")) {
		return utils.ErrorResponse(c, "cube name in body does not match the path", fiber.StatusBadRequest, "cube.validation.input")
	}

	var info *ncube.CubeInfo
	if c.QueryBool("create") {
		info, err = h.Manager.CreateCube(c.UserContext(), appID, cube, middleware.Author(c))
	} else {
		info, err = h.Manager.UpdateCube(c.UserContext(), appID, cube, middleware.Author(c))
	}
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, info)
}

// DeleteCube handles DELETE /api/cubes/:tenant/:app/:version/:status/:branch/:cube
// @Summary Delete a cube
// @Description Append a deleted revision; the history is kept and the cube can be restored
// @Tags Cubes
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube} [delete]
func (h *CubeHandler) DeleteCube(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	info, err := h.Manager.DeleteCube(c.UserContext(), appID, c.Params("cube"), middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, info)
}

// RestoreCube handles POST /api/cubes/:tenant/:app/:version/:status/:branch/:cube/restore
// @Summary Restore a deleted cube
// @Tags Cubes
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube}/restore [post]
func (h *CubeHandler) RestoreCube(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	info, err := h.Manager.RestoreCube(c.UserContext(), appID, c.Params("cube"), middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, info)
}

// RenameCube handles POST /api/cubes/:tenant/:app/:version/:status/:branch/:cube/rename
// @Summary Rename a cube
// @Tags Cubes
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param cube path string true "Current cube name"
// @Param body body object true "{\"newName\": \"...\"}"
// @Success 200 {array} ncube.CubeInfo
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube}/rename [post]
func (h *CubeHandler) RenameCube(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	var body struct {
		NewName string `json:"newName"`
	}
	if err := c.BodyParser(&body); err != nil || body.NewName == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "cube.validation.input")
	}

	infos, err := h.Manager.RenameCube(c.UserContext(), appID, c.Params("cube"), body.NewName, middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, infos, fiber.StatusOK)
}

// DuplicateCube handles POST /api/cubes/:tenant/:app/:version/:status/:branch/:cube/duplicate
// @Summary Duplicate a cube
// @Description Copy a cube to a new name, or to another app, version or branch of the same tenant
// @Tags Cubes
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT or RELEASE"
// @Param branch path string true "Branch"
// @Param cube path string true "Source cube name"
// @Param body body object true "{\"newName\", \"app\", \"version\", \"branch\"}; omitted fields keep the source's"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube}/duplicate [post]
func (h *CubeHandler) DuplicateCube(c *fiber.Ctx) error {
	src, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	var body struct {
		NewName string `json:"newName"`
		App     string `json:"app"`
		Version string `json:"version"`
		Branch  string `json:"branch"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "cube.validation.input")
	}

	name := c.Params("cube")
	dstName := orDefault(body.NewName, name)
	dst, err := ncube.NewApplicationID(
		src.Tenant(),
		orDefault(body.App, src.App()),
		orDefault(body.Version, src.Version()),
		ncube.StatusSnapshot,
		orDefault(body.Branch, src.Branch()),
	)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}

	info, err := h.Manager.DuplicateCube(c.UserContext(), src, dst, name, dstName, middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, info)
}

// UpdateNotes handles POST /api/cubes/:tenant/:app/:version/:status/:branch/:cube/notes
// @Summary Annotate the current revision
// @Tags Cubes
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name"
// @Param body body object true "{\"notes\": \"...\"}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube}/notes [post]
func (h *CubeHandler) UpdateNotes(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "cube.validation.input")
	}
	if err := h.Manager.UpdateNotes(c.UserContext(), appID, c.Params("cube"), body.Notes); err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.CountResponse(c, 1)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
