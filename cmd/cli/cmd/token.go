package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/auth"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
)

var (
	tokenRole    string
	tokenPartner string
)

// tokenCmd mints a bearer token for local testing
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token signed with the configured secret",
	Long: `Issue an API token for local development.

Examples:
  biznes token --role admin
  biznes token --role partner --partner 6f1c...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := auth.ParseRole(tokenRole)
		if err != nil {
			return err
		}
		token, err := auth.NewTokens(config.Get().Auth).Issue(role, tokenPartner)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", "admin", "token role (admin, partner)")
	tokenCmd.Flags().StringVar(&tokenPartner, "partner", "", "partner id for partner tokens")
}
