package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/rompatch/pkg/rompatch/output"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>...",
	Short: "Show digests and patch metadata for files",
	Long: `Compute CRC-32, MD5 and SHA-1 digests for each file. Patch files
additionally show the source and target CRC-32 values declared in their
trailer. Use --output to select plain, pretty, json or yaml output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	report := &output.Report{}

	for _, path := range args {
		fileReport, err := output.BuildFileReport(path)
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", path, err)
		}
		report.Files = append(report.Files, fileReport)
	}

	formatter, err := output.Get(viper.GetString("output"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}

	_, err = buf.WriteTo(os.Stdout)
	return err
}
