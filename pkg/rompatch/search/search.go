// Package search expands an explicit file selection with additional
// candidates from the filesystem, according to a user-selected scope.
//
// Expansion never reorders or removes the user's explicit picks: discovered
// files are appended after them, de-duplicated by absolute path.
package search

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// Scope selects how far beyond the explicit selection expansion reaches.
type Scope string

// Expansion scopes.
const (
	// ScopeNone disables expansion; only the explicit selection is used.
	ScopeNone Scope = "none"

	// ScopeDirectory adds files from the first selection's directory,
	// without descending into subdirectories.
	ScopeDirectory Scope = "directory"

	// ScopeRecursive adds files from the first selection's directory and
	// all of its subdirectories.
	ScopeRecursive Scope = "recursive"
)

// ParseScope parses a scope string, accepting the legacy configuration
// values "disable" and "enable" from older config files.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "disable", "":
		return ScopeNone, nil
	case "directory":
		return ScopeDirectory, nil
	case "recursive", "enable":
		return ScopeRecursive, nil
	default:
		return ScopeNone, fmt.Errorf("invalid search scope %q", s)
	}
}

// Options control one expansion pass.
type Options struct {
	// Scope selects the expansion reach.
	Scope Scope

	// Extensions are the candidate file extensions, with dots, compared
	// case-insensitively (e.g. ".bps", ".sfc").
	Extensions []string

	// ExcludePath is never added by expansion, compared by absolute path.
	// Used to keep the base file out of a modified-file selection.
	ExcludePath string
}

// Expand returns the selection plus any files discovered under the first
// selection's directory, in deterministic order: explicit picks first in
// their original order, discovered files after, duplicates dropped by
// absolute path.
func Expand(selection []string, opts Options) ([]string, error) {
	if len(selection) == 0 || opts.Scope == ScopeNone {
		return dedupe(selection, "")
	}

	firstAbs, err := filepath.Abs(selection[0])
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", selection[0], err)
	}
	dir := filepath.Dir(firstAbs)

	var discovered []string
	switch opts.Scope {
	case ScopeDirectory:
		discovered, err = listDirectory(dir, opts.Extensions)
	case ScopeRecursive:
		discovered, err = walkTree(dir, opts.Extensions)
	}
	if err != nil {
		return nil, err
	}

	excludeAbs := ""
	if opts.ExcludePath != "" {
		if excludeAbs, err = filepath.Abs(opts.ExcludePath); err != nil {
			return nil, fmt.Errorf("resolving %s: %w", opts.ExcludePath, err)
		}
	}

	return dedupe(append(append([]string{}, selection...), discovered...), excludeAbs)
}

// listDirectory returns matching files directly inside dir.
func listDirectory(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matchesExt(entry.Name(), exts) {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	return matches, nil
}

// walkTree returns matching files under dir and all subdirectories.
func walkTree(dir string, exts []string) ([]string, error) {
	var (
		mu      sync.Mutex
		matches []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if matchesExt(d.Name(), exts) {
			mu.Lock()
			matches = append(matches, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	// fastwalk visits concurrently; sort for a deterministic append order.
	sort.Strings(matches)
	return matches, nil
}

// matchesExt reports whether name ends in one of the extensions.
func matchesExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// dedupe drops duplicate and excluded entries by absolute path, keeping the
// first occurrence and the original order.
func dedupe(paths []string, excludeAbs string) ([]string, error) {
	seen := make(map[string]struct{}, len(paths))
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		if abs == excludeAbs {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		result = append(result, p)
	}
	return result, nil
}
