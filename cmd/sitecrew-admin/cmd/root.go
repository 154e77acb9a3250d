// Package cmd implements the sitecrew-admin subcommands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sitecrew/api/internal/config"
	"github.com/sitecrew/api/internal/infra/postgres"
)

var rootCmd = &cobra.Command{
	Use:   "sitecrew-admin",
	Short: "SiteCrew membership administration CLI",
	Long: `sitecrew-admin manages companies, invites and join requests
directly against the database.

Connection settings come from the same environment variables the
server uses (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(inviteCmd)
}

// openDB connects using the server's database environment variables.
func openDB() (*postgres.DB, error) {
	return postgres.New(config.LoadDatabase())
}
