package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sitecrew/api/internal/infra/postgres"
	"github.com/sitecrew/api/pkg/domain/shared"
)

var requestsCompanyID string

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List pending join requests for a company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		companyID, err := shared.IDFromString(requestsCompanyID)
		if err != nil {
			return fmt.Errorf("invalid company id: %w", err)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pending, err := postgres.NewJoinRequestRepository(db).ListPendingByCompany(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSER\tEMAIL\tREQUESTED")
		for _, p := range pending {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				p.ID, p.UserName, p.UserEmail, p.RequestedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	requestsCmd.Flags().StringVar(&requestsCompanyID, "company", "", "Company ID (required)")
	_ = requestsCmd.MarkFlagRequired("company")
}
