package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aeonsync/core/internal/adminapi"
)

var (
	tokenSecret  string
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for aeonsyncd's mutating admin routes",
	Long: `Mints a JWT accepted by aeonsyncd's admin API, signed with the
same secret the server was configured with (admin_api.jwt_secret).`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Signing secret matching aeonsyncd's admin_api.jwt_secret (required)")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("secret")
}

func runToken(cmd *cobra.Command, args []string) error {
	token, err := adminapi.IssueToken(tokenSecret, tokenSubject, tokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Println(token)
	return nil
}
