package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aeonsync/core/internal/cliutil"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check aeonsyncd liveness",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := cliutil.Client().Health()
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Printf("%s: %s\n", cliutil.Flags.ServerURL, status["status"])
		return nil
	},
}
