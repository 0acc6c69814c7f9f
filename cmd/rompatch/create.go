package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/rompatch/pkg/rompatch/engine"
	"github.com/jamesainslie/rompatch/pkg/rompatch/manifest"
)

var createCmd = &cobra.Command{
	Use:   "create <base-rom> <modified-rom>...",
	Short: "Create patches from modified ROMs",
	Long: `Create a BPS or IPS patch for each modified ROM against the base ROM.

Modified copies identical to the base are skipped, as is the base ROM itself
if it appears in the selection. With a search scope of directory or
recursive, ROMs found next to the selected ones are included too.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	basePath := args[0]

	modified, err := expandSelection(args[1:], romExtensions, basePath)
	if err != nil {
		return fmt.Errorf("expanding ROM selection: %w", err)
	}

	format, err := patchFormat()
	if err != nil {
		return err
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	batch := engine.CreateBatch{
		BasePath:      basePath,
		ModifiedPaths: modified,
		Format:        format,
		AppendSuffix:  viper.GetBool("suffix"),
	}

	summary, err := eng.Create(cmd.Context(), batch)
	if err != nil {
		return err
	}

	recordRun(manifest.OpCreate, summary)
	printSummary(summary)
	return nil
}
