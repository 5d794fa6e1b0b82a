// branches.go
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

// BranchHandler handles branch, merge and release routes
type BranchHandler struct {
	Manager *services.Manager
}

// ListBranches handles GET /api/cubes/:tenant/:app/:version/:status/:branch/branches
// @Summary List branches
// @Description Every branch of the coordinate's version and status, HEAD included
// @Tags Branches
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT or RELEASE"
// @Param branch path string true "Any branch of the version"
// @Success 200 {array} string
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/branches [get]
func (h *BranchHandler) ListBranches(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	branches, err := h.Manager.GetBranches(c.UserContext(), appID)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, branches, fiber.StatusOK)
}

// GetChanges handles GET /api/cubes/:tenant/:app/:version/:status/:branch/changes
// @Summary Branch changes
// @Description Cubes that differ from HEAD, each classified as created, updated, deleted or restored
// @Tags Branches
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Success 200 {array} ncube.CubeInfo
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/changes [get]
func (h *BranchHandler) GetChanges(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	changes, err := h.Manager.GetBranchChanges(c.UserContext(), appID)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, changes, fiber.StatusOK)
}

// CreateBranch handles POST /api/cubes/:tenant/:app/:version/:status/:branch/branch
// @Summary Create a branch
// @Description Create the path's branch from HEAD, or from another branch named in the body
// @Tags Branches
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "New branch"
// @Param body body object false "{\"from\": \"sourceBranch\"}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/branch [post]
func (h *BranchHandler) CreateBranch(c *fiber.Ctx) error {
	target, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	var body struct {
		From string `json:"from"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "cube.validation.input")
		}
	}

	var n int
	if body.From == "" {
		n, err = h.Manager.CreateBranch(c.UserContext(), target)
	} else {
		var src *ncube.ApplicationID
		if src, err = target.AsBranch(body.From); err == nil {
			n, err = h.Manager.CopyBranch(c.UserContext(), src, target)
		}
	}
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.CountResponse(c, int64(n))
}

// DeleteBranch handles DELETE /api/cubes/:tenant/:app/:version/:status/:branch
// @Summary Delete a branch
// @Description Remove every revision of a non-HEAD branch
// @Tags Branches
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch} [delete]
func (h *BranchHandler) DeleteBranch(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	if err := h.Manager.DeleteBranch(c.UserContext(), appID); err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.CountResponse(c, 1)
}

// Commit handles POST /api/cubes/:tenant/:app/:version/:status/:branch/commit
// @Summary Commit branch changes to HEAD
// @Description Commit the named cubes, or every change when no names are given. Conflicting cubes are reported with 409 and not committed.
// @Tags Branches
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param names query string false "Comma-separated cube names"
// @Param body body object false "{\"names\": [\"...\"]}"
// @Success 200 {array} ncube.CubeInfo
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/commit [post]
func (h *BranchHandler) Commit(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	names, err := namesFromRequest(c)
	if err != nil {
		return err
	}
	committed, err := h.Manager.CommitBranch(c.UserContext(), appID, names, middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, committed, fiber.StatusOK)
}

// Update handles POST /api/cubes/:tenant/:app/:version/:status/:branch/update
// @Summary Pull HEAD into a branch
// @Description Take every HEAD change the branch has not modified. Cubes changed on both sides are reported with 409.
// @Tags Branches
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Success 200 {array} ncube.CubeInfo
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/update [post]
func (h *BranchHandler) Update(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	pulled, err := h.Manager.UpdateBranch(c.UserContext(), appID, middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, pulled, fiber.StatusOK)
}

// Rollback handles POST /api/cubes/:tenant/:app/:version/:status/:branch/rollback
// @Summary Roll back branch changes
// @Description Return the named cubes to the HEAD state they were last synced with
// @Tags Branches
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param names query string false "Comma-separated cube names"
// @Param body body object false "{\"names\": [\"...\"]}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/rollback [post]
func (h *BranchHandler) Rollback(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	names, err := namesFromRequest(c)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return utils.ErrorResponse(c, "no cube names given", fiber.StatusBadRequest, "cube.validation.input")
	}
	n, err := h.Manager.RollbackBranch(c.UserContext(), appID, names, middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.CountResponse(c, int64(n))
}

type overwriteBody struct {
	Sha1 string `json:"sha1"`
}

// OverwriteHead handles POST /api/cubes/:tenant/:app/:version/:status/:branch/:cube/overwrite-head
// @Summary Resolve a conflict with the branch's cube
// @Description Replace HEAD's cube with the branch's, provided HEAD still has the SHA-1 in the body
// @Tags Branches
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name"
// @Param body body object true "{\"sha1\": \"expected HEAD sha1\"}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube}/overwrite-head [post]
func (h *BranchHandler) OverwriteHead(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	var body overwriteBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "cube.validation.input")
	}
	info, err := h.Manager.MergeOverwriteHeadCube(c.UserContext(), appID, c.Params("cube"), body.Sha1, middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, info)
}

// OverwriteBranch handles POST /api/cubes/:tenant/:app/:version/:status/:branch/:cube/overwrite-branch
// @Summary Resolve a conflict with HEAD's cube
// @Description Replace the branch's cube with HEAD's, provided the branch still has the SHA-1 in the body
// @Tags Branches
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Branch"
// @Param cube path string true "Cube name"
// @Param body body object true "{\"sha1\": \"expected branch sha1\"}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/{cube}/overwrite-branch [post]
func (h *BranchHandler) OverwriteBranch(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	var body overwriteBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "cube.validation.input")
	}
	info, err := h.Manager.MergeOverwriteBranchCube(c.UserContext(), appID, c.Params("cube"), body.Sha1, middleware.Author(c))
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.MutationSuccessResponse(c, info)
}

type versionBody struct {
	NewVersion string `json:"newVersion"`
}

// Release handles POST /api/cubes/:tenant/:app/:version/:status/:branch/release
// @Summary Release a version
// @Description Freeze the SNAPSHOT HEAD as RELEASE and open newVersion as the next SNAPSHOT
// @Tags Branches
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Any branch of the version"
// @Param body body object true "{\"newVersion\": \"1.1.0\"}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/release [post]
func (h *BranchHandler) Release(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	var body versionBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "cube.validation.input")
	}
	n, err := h.Manager.ReleaseCubes(c.UserContext(), appID, body.NewVersion)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.CountResponse(c, n)
}

// ChangeVersion handles POST /api/cubes/:tenant/:app/:version/:status/:branch/version
// @Summary Renumber a SNAPSHOT version
// @Tags Branches
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant"
// @Param app path string true "Application"
// @Param version path string true "Version"
// @Param status path string true "SNAPSHOT"
// @Param branch path string true "Any branch of the version"
// @Param body body object true "{\"newVersion\": \"1.0.1\"}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /cubes/{tenant}/{app}/{version}/{status}/{branch}/version [post]
func (h *BranchHandler) ChangeVersion(c *fiber.Ctx) error {
	appID, err := appIDFromParams(c)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	var body versionBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "cube.validation.input")
	}
	n, err := h.Manager.ChangeVersionValue(c.UserContext(), appID, body.NewVersion)
	if err != nil {
		return utils.StoreErrorResponse(c, err)
	}
	return utils.CountResponse(c, n)
}
