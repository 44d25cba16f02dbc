// Package commands implements aeonsyncctl's cobra command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/aeonsync/core/internal/cliutil"
)

var (
	// Version information injected at build time by main.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "aeonsyncctl",
	Short: "aeonsyncctl - aeonsyncd operator client",
	Long: `aeonsyncctl is the command-line client for a running aeonsyncd.

Use it to inspect and resolve retained conflicts, mint admin API
tokens, and dump the JSON schema for the operation and config types.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cliutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cliutil.Flags.Token, _ = cmd.Flags().GetString("token")
		cliutil.Flags.Output, _ = cmd.Flags().GetString("output")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8090", "aeonsyncd admin API URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for mutating routes")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(tokenCmd)
}
