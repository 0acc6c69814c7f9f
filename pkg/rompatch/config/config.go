// Package config persists rompatch settings as a JSON document.
//
// The on-disk format keeps the key names of the original tool
// (patch_method, bps_ips_type, force_patch, append_suffix, search_scope) so
// existing config files keep working. Unknown keys are ignored on load and
// missing keys leave the in-memory settings unchanged.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Modes for the default operation.
const (
	ModeApply  = "apply"
	ModeCreate = "create"
)

// Formats for generated patches.
const (
	FormatBPS = "bps"
	FormatIPS = "ips"
)

// Settings is the persisted configuration tuple.
type Settings struct {
	// Mode is the default operation: "apply" or "create".
	Mode string `json:"patch_method"`

	// Format is the patch format: "bps" or "ips".
	Format string `json:"bps_ips_type"`

	// ForcePatch applies patches despite CRC-32 mismatches.
	ForcePatch bool `json:"force_patch"`

	// AppendSuffix inserts "_patched" into output filenames.
	AppendSuffix bool `json:"append_suffix"`

	// SearchScope is the file-search expansion scope:
	// "none", "directory", or "recursive".
	SearchScope string `json:"search_scope"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	return Settings{
		Mode:         ModeApply,
		Format:       FormatBPS,
		ForcePatch:   false,
		AppendSuffix: false,
		SearchScope:  "none",
	}
}

// Dir returns the configuration directory, honoring XDG_CONFIG_HOME.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "rompatch")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.json")
}

// EnsureDir creates the config directory if it doesn't exist.
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return nil
}

// Load reads the settings document at path and merges it over current.
// Keys absent from the document keep their current values; unknown keys are
// ignored. A missing file returns current unchanged.
func Load(path string, current Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return current, nil
		}
		return current, fmt.Errorf("reading config %s: %w", path, err)
	}

	merged := current
	if err := json.Unmarshal(data, &merged); err != nil {
		return current, fmt.Errorf("parsing config %s: %w", path, err)
	}

	merged.normalize(current)
	return merged, nil
}

// Save writes the settings document atomically via a temp file and rename.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming config into place: %w", err)
	}
	return nil
}

// normalize maps legacy values from older config files onto the current
// vocabulary and falls back to the previous value for anything unrecognized.
func (s *Settings) normalize(previous Settings) {
	switch strings.TrimSpace(s.Mode) {
	case ModeApply, ModeCreate:
	case "Auto Patch Files":
		s.Mode = ModeApply
	case "Auto Create Patches":
		s.Mode = ModeCreate
	default:
		s.Mode = previous.Mode
	}

	switch strings.ToLower(strings.TrimSpace(s.Format)) {
	case FormatBPS, FormatIPS:
		s.Format = strings.ToLower(strings.TrimSpace(s.Format))
	case ".bps":
		s.Format = FormatBPS
	case ".ips":
		s.Format = FormatIPS
	default:
		s.Format = previous.Format
	}

	switch strings.ToLower(strings.TrimSpace(s.SearchScope)) {
	case "none", "directory", "recursive":
		s.SearchScope = strings.ToLower(strings.TrimSpace(s.SearchScope))
	case "disable":
		s.SearchScope = "none"
	case "enable":
		s.SearchScope = "recursive"
	default:
		s.SearchScope = previous.SearchScope
	}
}
