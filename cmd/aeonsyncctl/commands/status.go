package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aeonsync/core/internal/cliutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show combined queue, sync, and conflict counters",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusReport struct {
	Queue     any `json:"queue"`
	Sync      any `json:"sync"`
	Conflicts any `json:"conflicts"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := cliutil.Client()

	queueStats, err := client.QueueStats()
	if err != nil {
		return fmt.Errorf("queue stats: %w", err)
	}
	syncStats, err := client.SyncStats()
	if err != nil {
		return fmt.Errorf("sync stats: %w", err)
	}
	conflictStats, err := client.ConflictStats()
	if err != nil {
		return fmt.Errorf("conflict stats: %w", err)
	}

	if cliutil.Flags.Output == "json" {
		return json.NewEncoder(os.Stdout).Encode(statusReport{
			Queue:     queueStats,
			Sync:      syncStats,
			Conflicts: conflictStats,
		})
	}

	table := cliutil.NewTableData("COMPONENT", "METRIC", "VALUE")
	table.AddRow("queue", "total_operations", strconv.Itoa(queueStats.TotalOperations))
	table.AddRow("queue", "total_bytes", strconv.Itoa(queueStats.TotalBytes))
	for status, n := range queueStats.CountByStatus {
		table.AddRow("queue", "status:"+string(status), strconv.Itoa(n))
	}
	for priority, n := range queueStats.CountByPriority {
		table.AddRow("queue", "priority:"+string(priority), strconv.Itoa(n))
	}

	table.AddRow("sync", "total_attempted", strconv.Itoa(syncStats.TotalAttempted))
	table.AddRow("sync", "total_succeeded", strconv.Itoa(syncStats.TotalSucceeded))
	table.AddRow("sync", "total_failed", strconv.Itoa(syncStats.TotalFailed))
	table.AddRow("sync", "in_progress", strconv.FormatBool(syncStats.InProgress))

	table.AddRow("conflicts", "resolved", strconv.Itoa(conflictStats.Resolved))
	table.AddRow("conflicts", "unresolved", strconv.Itoa(conflictStats.Unresolved))

	return cliutil.PrintTable(os.Stdout, table)
}
