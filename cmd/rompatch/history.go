package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/rompatch/pkg/rompatch/manifest"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past patch runs",
	Long: `View the history of apply and create runs.

Each batch records every file it touched, the per-file outcome, and the
totals. Use 'rompatch history show <id>' for the full record of one run.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific run",
	Long:  `Display the full per-file record of one batch run by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	m, err := manifest.New(historyDir())
	if err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'rompatch apply' or 'rompatch create' to record one.")
		return nil
	}

	fmt.Printf("\n%-32s  %-8s  %-6s  %-6s  %-6s\n", "ID", "TYPE", "FILES", "OK", "FAILED")
	fmt.Println(strings.Repeat("-", 70))

	for _, entry := range entries {
		fmt.Printf("%-32s  %-8s  %-6d  %-6d  %-6d\n",
			entry.ID,
			entry.Operation,
			entry.Summary.TotalFiles,
			entry.Summary.Succeeded,
			entry.Summary.Failed,
		)
	}

	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'rompatch history show <id>' for details on a specific run.")

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, err := manifest.New(historyDir())
	if err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("getting entry: %w", err)
	}

	fmt.Println("\nRun Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:        %s\n", entry.ID)
	fmt.Printf("Time:      %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Operation: %s\n", entry.Operation)
	fmt.Printf("Base ROM:  %s\n", entry.BasePath)
	fmt.Printf("Files:     %d (%d succeeded, %d skipped, %d failed)\n",
		entry.Summary.TotalFiles,
		entry.Summary.Succeeded,
		entry.Summary.Skipped,
		entry.Summary.Failed,
	)

	fmt.Println("\nOutcomes:")
	fmt.Println(strings.Repeat("-", 60))
	for _, outcome := range entry.Outcomes {
		fmt.Printf("%-24s  %s\n", outcome.Status, outcome.Path)
		if outcome.Output != "" {
			fmt.Printf("%-24s  -> %s\n", "", outcome.Output)
		}
		if outcome.Detail != "" {
			fmt.Printf("%-24s     %s\n", "", outcome.Detail)
		}
	}

	return nil
}
