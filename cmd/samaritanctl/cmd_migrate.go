package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/database"
)

// migrateCmd applies the embedded schema migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	if err := database.RunMigrations(sqlDB, e.logger); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
