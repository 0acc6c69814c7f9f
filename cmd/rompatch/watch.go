package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/rompatch/pkg/rompatch/engine"
	"github.com/jamesainslie/rompatch/pkg/rompatch/manifest"
	"github.com/jamesainslie/rompatch/pkg/rompatch/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory and apply incoming patches",
	Long: `Watch a directory for new BPS and IPS patch files and apply each one to
the base ROM as it arrives. Files are applied once they stop changing, so
patches still being downloaded are left alone until complete.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchBase string

func init() {
	watchCmd.Flags().StringVarP(&watchBase, "base", "b", "", "base ROM to apply incoming patches to (required)")
	_ = watchCmd.MarkFlagRequired("base")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	w, err := watcher.New(patchExtensions)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Watch(args[0]); err != nil {
		return fmt.Errorf("watching %s: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printInfo("Watching %s for patch files. Press Ctrl+C to stop.", args[0])

	w.Run(ctx, func(patchPath string) {
		printInfo("New patch detected: %s", patchPath)

		batch := engine.ApplyBatch{
			BasePath:     watchBase,
			PatchPaths:   []string{patchPath},
			AppendSuffix: viper.GetBool("suffix"),
			Force:        viper.GetBool("force"),
		}

		summary, err := eng.Apply(ctx, batch)
		if err != nil {
			printError("Failed to apply %s: %v", patchPath, err)
			return
		}
		recordRun(manifest.OpApply, summary)
	})

	printInfo("Stopped watching.")
	return nil
}
