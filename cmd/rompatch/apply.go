package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/rompatch/pkg/rompatch/engine"
	"github.com/jamesainslie/rompatch/pkg/rompatch/manifest"
)

var applyCmd = &cobra.Command{
	Use:   "apply <base-rom> <patch>...",
	Short: "Apply patches to a base ROM",
	Long: `Apply one or more BPS or IPS patches to a base ROM.

Each patch's declared source CRC-32 is checked against the base ROM before
patching. Mismatching patches are skipped unless --force is given, which
passes the checksum bypass to flips. With a search scope of directory or
recursive, patches found next to the selected ones are applied too.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	basePath := args[0]

	patches, err := expandSelection(args[1:], patchExtensions, basePath)
	if err != nil {
		return fmt.Errorf("expanding patch selection: %w", err)
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	batch := engine.ApplyBatch{
		BasePath:     basePath,
		PatchPaths:   patches,
		AppendSuffix: viper.GetBool("suffix"),
		Force:        viper.GetBool("force"),
	}

	summary, err := eng.Apply(cmd.Context(), batch)
	if err != nil {
		return err
	}

	recordRun(manifest.OpApply, summary)
	printSummary(summary)
	return nil
}

// printSummary prints per-status totals after a batch.
func printSummary(summary *engine.Summary) {
	failed := summary.Count(engine.StatusFailed)
	skipped := 0
	for _, outcome := range summary.Outcomes {
		if outcome.Status.Skipped() {
			skipped++
		}
	}

	printInfo("%d succeeded, %d skipped, %d failed.",
		summary.Succeeded(), skipped, failed)
}
