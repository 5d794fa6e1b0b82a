// main.go
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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/localnerve/cubedb/internal/config"
	"github.com/localnerve/cubedb/internal/database"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/persister"
	"github.com/localnerve/cubedb/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	db      *gorm.DB
	manager *services.Manager

	envFile string
	tenant  string
	app     string
	version string
	status  string
	branch  string
	author  string
)

// appID builds the coordinate from the persistent flags.
func appID() (*ncube.ApplicationID, error) {
	return ncube.NewApplicationID(tenant, app, version, ncube.ReleaseStatus(status), branch)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var rootCmd = &cobra.Command{
	Use:           "cubectl",
	Short:         "Administer versioned cubes, branches and releases",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
		cfg, err := config.LoadDatabase()
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

		db, err = database.Connect(cfg)
		if err != nil {
			return err
		}
		if cmd.Name() == "migrate" || cfg.IsSQLite() {
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
		}
		manager = services.NewManager(
			persister.NewGormPersister(db, persister.WithLogger(slog.Default())),
			services.WithLogger(slog.Default()),
			services.WithCache(false),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			_ = database.Close(db)
		}
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the cube_revisions table",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Schema is up to date.")
		return nil
	},
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List the applications of the tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := manager.GetAppNames(cmd.Context(), tenant)
		if err != nil {
			return err
		}
		return printJSON(names)
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the versions of the application",
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := manager.GetAppVersions(cmd.Context(), tenant, app)
		if err != nil {
			return err
		}
		return printJSON(versions)
	},
}

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List cube records at the coordinate",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}
		filter := persister.FilterActive
		if deleted, _ := cmd.Flags().GetBool("deleted"); deleted {
			filter = persister.FilterDeleted
		}
		infos, err := manager.GetCubeInfos(cmd.Context(), id, pattern, filter)
		if err != nil {
			return err
		}
		return printJSON(infos)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <cube>",
	Short: "Print a cube as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		revision, _ := cmd.Flags().GetInt64("revision")
		var cube *ncube.Cube
		if cmd.Flags().Changed("revision") {
			cube, _, err = manager.LoadCubeRevision(cmd.Context(), id, args[0], revision)
		} else {
			cube, err = manager.GetCube(cmd.Context(), id, args[0])
		}
		if err != nil {
			return err
		}
		return printJSON(cube)
	},
}

var putCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Create or update a cube from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		cube, err := ncube.FromJSON(data)
		if err != nil {
			return err
		}
		// UpdateCube creates the cube when the coordinate has no record of it
		info, err := manager.UpdateCube(cmd.Context(), id, cube, author)
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <cube>",
	Short: "Show the revision history of a cube",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		infos, err := manager.GetRevisionHistory(cmd.Context(), id, args[0])
		if err != nil {
			return err
		}
		return printJSON(infos)
	},
}

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List the branches of the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		names, err := manager.GetBranches(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(names)
	},
}

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "List the cubes of the branch that differ from HEAD",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		infos, err := manager.GetBranchChanges(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(infos)
	},
}

var createBranchCmd = &cobra.Command{
	Use:   "create-branch",
	Short: "Create the branch from HEAD, or from another branch with --from",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		from, _ := cmd.Flags().GetString("from")
		var n int
		if from == "" || strings.EqualFold(from, ncube.HeadBranch) {
			n, err = manager.CreateBranch(cmd.Context(), id)
		} else {
			src, serr := id.AsBranch(from)
			if serr != nil {
				return serr
			}
			n, err = manager.CopyBranch(cmd.Context(), src, id)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Branch %s created with %d cube(s).\n", id.Branch(), n)
		return nil
	},
}

var deleteBranchCmd = &cobra.Command{
	Use:   "delete-branch",
	Short: "Remove every revision of the branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		if err := manager.DeleteBranch(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Branch %s deleted.\n", id.Branch())
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit [cube...]",
	Short: "Commit branch changes to HEAD",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		infos, err := manager.CommitBranch(cmd.Context(), id, args, author)
		if err != nil {
			return describeConflict(err)
		}
		return printJSON(infos)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Bring HEAD changes into the branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		infos, err := manager.UpdateBranch(cmd.Context(), id, author)
		if err != nil {
			return describeConflict(err)
		}
		return printJSON(infos)
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <cube...>",
	Short: "Discard branch changes to the named cubes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		n, err := manager.RollbackBranch(cmd.Context(), id, args, author)
		if err != nil {
			return err
		}
		fmt.Printf("Rolled back %d cube(s).\n", n)
		return nil
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release <next-version>",
	Short: "Release the SNAPSHOT version and open the next one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := appID()
		if err != nil {
			return err
		}
		n, err := manager.ReleaseCubes(cmd.Context(), id, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Released %s with %d cube(s); new SNAPSHOT %s.\n", id.Version(), n, args[0])
		return nil
	},
}

// describeConflict lists per-cube merge conflicts before returning the error.
func describeConflict(err error) error {
	var conflict *ncube.MergeConflictError
	if errors.As(err, &conflict) {
		for _, c := range conflict.Conflicts {
			fmt.Fprintf(os.Stderr, "conflict: %s: %s\n", c.Name, c.Reason)
		}
	}
	return err
}

func main() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&envFile, "env", "f", "", "path to an optional .env file")
	pf.StringVar(&tenant, "tenant", ncube.DefaultTenant, "tenant")
	pf.StringVar(&app, "app", "", "application name")
	pf.StringVar(&version, "version", "1.0.0", "application version")
	pf.StringVar(&status, "status", string(ncube.StatusSnapshot), "SNAPSHOT or RELEASE")
	pf.StringVar(&branch, "branch", ncube.HeadBranch, "branch name")
	pf.StringVar(&author, "author", os.Getenv("USER"), "author recorded on new revisions")

	listCmd.Flags().Bool("deleted", false, "list deleted cubes instead of active ones")
	getCmd.Flags().Int64("revision", 0, "revision number, negative counts back from the newest")
	createBranchCmd.Flags().String("from", "", "source branch, defaults to HEAD")

	rootCmd.AddCommand(migrateCmd, appsCmd, versionsCmd, listCmd, getCmd, putCmd, historyCmd)
	rootCmd.AddCommand(branchesCmd, changesCmd, createBranchCmd, deleteBranchCmd)
	rootCmd.AddCommand(commitCmd, updateCmd, rollbackCmd, releaseCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
