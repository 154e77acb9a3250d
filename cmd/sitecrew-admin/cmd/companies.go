package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sitecrew/api/internal/infra/postgres"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		companies, err := postgres.NewCompanyRepository(db).List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tINVITE CODE\tCREATED")
		for _, c := range companies {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				c.ID(), c.Name(), c.InviteCode(), c.CreatedAt().Format("2006-01-02"))
		}
		return w.Flush()
	},
}
