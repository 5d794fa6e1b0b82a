package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/middleware"
	"github.com/localnerve/cubedb/internal/services"
)

// Register mounts the cube API on api (normally the /api group). Reads are public;
// mutations need an admin session.
func Register(api fiber.Router, manager *services.Manager, sessions middleware.SessionValidator) {
	cubeHandler := &CubeHandler{Manager: manager}
	branchHandler := &BranchHandler{Manager: manager}
	metaHandler := &MetaHandler{Manager: manager}
	admin := middleware.AuthAdmin(sessions)

	api.Get("/apps/:tenant", metaHandler.ListApps)
	api.Get("/apps/:tenant/:app/versions", metaHandler.ListVersions)
	api.Post("/cache/clear", admin, metaHandler.ClearCache)
	api.Get("/session", middleware.AuthUser(sessions), metaHandler.Session)

	coord := api.Group("/cubes/:tenant/:app/:version/:status/:branch")

	// Fixed segments come before /:cube so they are not taken for cube names
	coord.Get("/", cubeHandler.ListCubes)
	coord.Get("/changes", branchHandler.GetChanges)
	coord.Get("/branches", branchHandler.ListBranches)
	coord.Post("/classpath", metaHandler.GetClasspath)
	coord.Post("/branch", admin, branchHandler.CreateBranch)
	coord.Post("/commit", admin, branchHandler.Commit)
	coord.Post("/update", admin, branchHandler.Update)
	coord.Post("/rollback", admin, branchHandler.Rollback)
	coord.Post("/release", admin, branchHandler.Release)
	coord.Post("/version", admin, branchHandler.ChangeVersion)
	coord.Delete("/", admin, branchHandler.DeleteBranch)

	coord.Get("/:cube", cubeHandler.GetCube)
	coord.Get("/:cube/history", cubeHandler.GetHistory)
	coord.Post("/:cube/cell", cubeHandler.GetCell)
	coord.Post("/:cube", admin, cubeHandler.SaveCube)
	coord.Delete("/:cube", admin, cubeHandler.DeleteCube)
	coord.Post("/:cube/restore", admin, cubeHandler.RestoreCube)
	coord.Post("/:cube/rename", admin, cubeHandler.RenameCube)
	coord.Post("/:cube/duplicate", admin, cubeHandler.DuplicateCube)
	coord.Post("/:cube/notes", admin, cubeHandler.UpdateNotes)
	coord.Post("/:cube/overwrite-head", admin, branchHandler.OverwriteHead)
	coord.Post("/:cube/overwrite-branch", admin, branchHandler.OverwriteBranch)
}
