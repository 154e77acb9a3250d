package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitecrew/api/internal/infra/postgres"
	"github.com/sitecrew/api/pkg/domain/shared"
)

var inviteCompanyID string

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Inspect and rotate company invite credentials",
}

var inviteShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a company's invite code and token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		companyID, err := shared.IDFromString(inviteCompanyID)
		if err != nil {
			return fmt.Errorf("invalid company id: %w", err)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		c, err := postgres.NewCompanyRepository(db).GetByID(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		fmt.Printf("code:   %s\n", c.InviteCode())
		fmt.Printf("token:  %s\n", c.InviteToken())
		if exp := c.InviteTokenExpiresAt(); exp != nil {
			fmt.Printf("expiry: %s\n", exp.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Println("expiry: none (never rotated)")
		}
		return nil
	},
}

var inviteRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate a company's invite token",
	Long: `Rotate replaces the invite token and restarts its expiry
window. The six-digit invite code is untouched; outstanding copies of
the old token stop resolving immediately.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		companyID, err := shared.IDFromString(inviteCompanyID)
		if err != nil {
			return fmt.Errorf("invalid company id: %w", err)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		repo := postgres.NewCompanyRepository(db)
		c, err := repo.GetByID(cmd.Context(), companyID)
		if err != nil {
			return err
		}
		if err := c.RotateInviteToken(); err != nil {
			return err
		}
		if err := repo.UpdateInvite(cmd.Context(), c); err != nil {
			return err
		}

		fmt.Printf("token:  %s\n", c.InviteToken())
		fmt.Printf("expiry: %s\n", c.InviteTokenExpiresAt().Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

func init() {
	inviteCmd.PersistentFlags().StringVar(&inviteCompanyID, "company", "", "Company ID (required)")
	_ = inviteCmd.MarkPersistentFlagRequired("company")

	inviteCmd.AddCommand(inviteShowCmd)
	inviteCmd.AddCommand(inviteRotateCmd)
}
