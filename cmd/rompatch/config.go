package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/rompatch/pkg/rompatch/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage rompatch configuration settings.

Configuration is stored as JSON at:
  $XDG_CONFIG_HOME/rompatch/config.json (typically ~/.config/rompatch/config.json)

Environment variables can override settings using the ROMPATCH_ prefix:
  ROMPATCH_FORMAT=ips
  ROMPATCH_SCOPE=recursive
  ROMPATCH_FORCE=true`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file: %s\n\n", path)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("patch_method:   %s\n", settings.Mode)
	fmt.Printf("bps_ips_type:   %s\n", settings.Format)
	fmt.Printf("force_patch:    %t\n", settings.ForcePatch)
	fmt.Printf("append_suffix:  %t\n", settings.AppendSuffix)
	fmt.Printf("search_scope:   %s\n", settings.SearchScope)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil {
		printInfo("Config file already exists: %s", path)
		return nil
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	printInfo("Created config file: %s", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Println(configPath())
	return nil
}
