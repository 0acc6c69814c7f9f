package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/rompatch/pkg/rompatch/config"
	"github.com/jamesainslie/rompatch/pkg/rompatch/engine"
	"github.com/jamesainslie/rompatch/pkg/rompatch/flips"
	"github.com/jamesainslie/rompatch/pkg/rompatch/logging"
	"github.com/jamesainslie/rompatch/pkg/rompatch/manifest"
)

var (
	cfgFile  string
	settings config.Settings

	rootCmd = &cobra.Command{
		Use:   "rompatch",
		Short: "Create and apply ROM patches with flips",
		Long: `Rompatch wraps the flips patching tool to create and apply BPS and IPS
patches in batches, with CRC-32 compatibility checks before each apply.

Examples:
  rompatch apply game.sfc hack.bps        # Apply one patch
  rompatch apply -s directory game.sfc hack.bps
                                          # Apply every patch next to hack.bps
  rompatch create game.sfc modified.sfc   # Create a patch from a modified copy
  rompatch info hack.bps                  # Show digests and trailer metadata
  rompatch open hack.bps                  # Interactive flow for one file
  rompatch history                        # Review past runs`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/rompatch/config.json)")
	rootCmd.PersistentFlags().StringP("format", "f", "", "patch format for creation: bps or ips")
	rootCmd.PersistentFlags().Bool("force", false, "apply patches despite CRC-32 mismatches")
	rootCmd.PersistentFlags().Bool("suffix", false, "append _patched to output filenames")
	rootCmd.PersistentFlags().StringP("scope", "s", "", "search scope: none, directory, or recursive")
	rootCmd.PersistentFlags().String("tool", "", "path to the flips executable")
	rootCmd.PersistentFlags().StringP("output", "o", "plain", "output format for info: plain, pretty, json, yaml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("force", rootCmd.PersistentFlags().Lookup("force"))
	_ = viper.BindPFlag("suffix", rootCmd.PersistentFlags().Lookup("suffix"))
	_ = viper.BindPFlag("scope", rootCmd.PersistentFlags().Lookup("scope"))
	_ = viper.BindPFlag("tool", rootCmd.PersistentFlags().Lookup("tool"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// initConfig loads the JSON settings file and seeds viper defaults from it.
// Precedence ends up as flags > environment > config file > built-ins.
func initConfig() {
	settings = config.Default()

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}

	loaded, err := config.Load(path, settings)
	if err != nil {
		printError("Failed to load configuration: %v", err)
	} else {
		settings = loaded
	}

	viper.SetEnvPrefix("ROMPATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("format", settings.Format)
	viper.SetDefault("force", settings.ForcePatch)
	viper.SetDefault("suffix", settings.AppendSuffix)
	viper.SetDefault("scope", settings.SearchScope)

	level := "info"
	switch {
	case viper.GetBool("verbose"):
		level = "debug"
	case viper.GetBool("quiet"):
		level = "error"
	}
	if err := logging.Init(logging.Config{Level: level}); err != nil {
		printError("Failed to initialize logging: %v", err)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// configPath returns the active config file location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// newTool resolves the flips executable from the --tool flag or by searching
// the usual locations.
func newTool() (flips.Tool, error) {
	path := viper.GetString("tool")
	if path == "" {
		located, err := flips.Locate()
		if err != nil {
			return nil, err
		}
		path = located
	}
	return flips.NewShellTool(path)
}

// newEngine builds an engine whose progress lines go to stdout unless quiet.
func newEngine() (*engine.Engine, error) {
	tool, err := newTool()
	if err != nil {
		return nil, err
	}
	return engine.New(tool, engine.ReporterFunc(printInfo)), nil
}

// historyDir is where batch runs are recorded.
func historyDir() string {
	return filepath.Join(xdg.DataHome, "rompatch", "history")
}

// recordRun logs a batch to the manifest. Recording failures are reported
// but never fail the batch itself.
func recordRun(op manifest.OperationType, summary *engine.Summary) {
	m, err := manifest.New(historyDir())
	if err != nil {
		printVerbose("history disabled: %v", err)
		return
	}
	if _, err := m.Record(op, summary); err != nil {
		printError("Failed to record history: %v", err)
	}
}

// patchFormat resolves the creation format from viper.
func patchFormat() (engine.Format, error) {
	switch strings.ToLower(strings.TrimSpace(viper.GetString("format"))) {
	case "bps", ".bps", "":
		return engine.FormatBPS, nil
	case "ips", ".ips":
		return engine.FormatIPS, nil
	default:
		return engine.FormatBPS, fmt.Errorf("invalid patch format %q", viper.GetString("format"))
	}
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// printInfo prints a message unless quiet mode is enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
