package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aeonsync/core/internal/adminclient"
	"github.com/aeonsync/core/internal/cliutil"
	"github.com/aeonsync/core/pkg/operation"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Inspect and resolve retained conflicts",
}

var conflictsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every currently unresolved conflict",
	RunE:  runConflictsList,
}

var conflictsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the resolver's lifetime conflict counters",
	RunE:  runConflictsStats,
}

var resolveStrategy string
var resolveInteractive bool

var conflictsResolveCmd = &cobra.Command{
	Use:   "resolve <conflict-id>",
	Short: "Resolve a retained conflict",
	Args:  cobra.ExactArgs(1),
	RunE:  runConflictsResolve,
}

func init() {
	conflictsCmd.AddCommand(conflictsListCmd, conflictsStatsCmd, conflictsResolveCmd)
	conflictsResolveCmd.Flags().StringVar(&resolveStrategy, "strategy", "", "Resolution strategy (local-wins|remote-wins|last-modified|merge)")
	conflictsResolveCmd.Flags().BoolVarP(&resolveInteractive, "interactive", "i", false, "Prompt for the resolution strategy")
}

func runConflictsList(cmd *cobra.Command, args []string) error {
	conflicts, err := cliutil.Client().ListConflicts()
	if err != nil {
		return fmt.Errorf("list conflicts: %w", err)
	}

	if cliutil.Flags.Output == "json" {
		return json.NewEncoder(os.Stdout).Encode(conflicts)
	}

	if len(conflicts) == 0 {
		fmt.Println("No unresolved conflicts.")
		return nil
	}

	table := cliutil.NewTableData("ID", "OPERATION", "TYPE", "SEVERITY", "DETECTED_AT")
	for _, c := range conflicts {
		table.AddRow(c.ID, c.OperationID, string(c.Type), string(c.Severity), strconv.FormatInt(c.DetectedAt, 10))
	}
	return cliutil.PrintTable(os.Stdout, table)
}

func runConflictsStats(cmd *cobra.Command, args []string) error {
	stats, err := cliutil.Client().ConflictStats()
	if err != nil {
		return fmt.Errorf("conflict stats: %w", err)
	}

	if cliutil.Flags.Output == "json" {
		return json.NewEncoder(os.Stdout).Encode(stats)
	}

	table := cliutil.NewTableData("METRIC", "VALUE")
	table.AddRow("resolved", strconv.Itoa(stats.Resolved))
	table.AddRow("unresolved", strconv.Itoa(stats.Unresolved))
	table.AddRow("avg_resolution_time_ms", fmt.Sprintf("%.1f", stats.AvgResolutionTimeMs))
	for t, n := range stats.ByType {
		table.AddRow("type:"+string(t), strconv.Itoa(n))
	}
	for s, n := range stats.ByStrategy {
		table.AddRow("strategy:"+string(s), strconv.Itoa(n))
	}
	return cliutil.PrintTable(os.Stdout, table)
}

var resolveStrategyChoices = []string{
	string(operation.StrategyLocalWins),
	string(operation.StrategyRemoteWins),
	string(operation.StrategyLastModified),
	string(operation.StrategyMerge),
}

func runConflictsResolve(cmd *cobra.Command, args []string) error {
	id := args[0]
	strategy := resolveStrategy

	if resolveInteractive || strategy == "" {
		choice, err := cliutil.SelectString(fmt.Sprintf("Strategy for conflict %s", id), resolveStrategyChoices)
		if err != nil {
			if err == cliutil.ErrAborted {
				fmt.Println("Aborted.")
				return nil
			}
			return err
		}
		strategy = choice
	}

	resolved, err := cliutil.Client().ResolveConflict(id, adminclient.ResolveRequest{
		Strategy: operation.Strategy(strategy),
	})
	if err != nil {
		return fmt.Errorf("resolve conflict: %w", err)
	}

	if cliutil.Flags.Output == "json" {
		return json.NewEncoder(os.Stdout).Encode(resolved)
	}
	fmt.Printf("Conflict %s resolved with strategy %s\n", resolved.ID, resolved.Resolution.Strategy)
	return nil
}
