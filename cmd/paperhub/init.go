package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/config"
	"github.com/paperhub/paperhub/internal/storage"
)

var (
	initStorage     string
	initDatabaseURL string
)

func init() {
	initCmd.Flags().StringVar(&initStorage, "storage", "sqlite", "Storage backend (sqlite or postgres)")
	initCmd.Flags().StringVar(&initDatabaseURL, "database-url", "", "Postgres connection string (postgres backend)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a paper library in the current directory",
	Long: `Initialize a paper library in the current directory.

Creates:
  .paperhub/
  ├── config.json     # Local config
  └── library.db      # SQLite database (sqlite backend, on first use)

With --storage postgres the database lives in Postgres instead; pass the
connection string via --database-url or the DATABASE_URL environment
variable.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsLibrary(root) {
		exitWithError(ExitError, "directory already contains a paperhub library")
	}

	if initStorage != storage.BackendSQLite && initStorage != storage.BackendPostgres {
		exitWithError(ExitError, "unknown storage backend %q (sqlite or postgres)", initStorage)
	}
	if initStorage == storage.BackendPostgres && initDatabaseURL == "" && os.Getenv(config.EnvDatabaseURL) == "" {
		exitWithError(ExitConfigError, "postgres backend needs --database-url or DATABASE_URL")
	}

	if err := os.MkdirAll(config.LibraryPath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s directory: %v", config.LibraryDirName, err)
	}

	cfg := &config.Config{}
	if initStorage != storage.BackendSQLite {
		cfg.Storage = initStorage
	}
	if initDatabaseURL != "" {
		cfg.DatabaseURL = initDatabaseURL
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating config.json: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized paperhub library in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}

	return nil
}
