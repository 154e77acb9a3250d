package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitecrew/api/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return migrations.NewRunner(db.DB).Up(cmd.Context())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return migrations.NewRunner(db.DB).Down(cmd.Context())
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runner := migrations.NewRunner(db.DB)
		if err := runner.EnsureMigrationTable(cmd.Context()); err != nil {
			return err
		}

		applied, err := runner.Applied(cmd.Context())
		if err != nil {
			return err
		}
		for _, rec := range applied {
			fmt.Printf("applied  %s  %s\n", rec.Version, rec.AppliedAt.Format("2006-01-02 15:04:05"))
		}

		pending, err := runner.Pending(cmd.Context())
		if err != nil {
			return err
		}
		for _, version := range pending {
			fmt.Printf("pending  %s\n", version)
		}
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
