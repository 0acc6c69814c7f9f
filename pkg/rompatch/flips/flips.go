// Package flips invokes the external flips binary-diffing utility.
//
// The patching algorithm itself lives in the external tool; this package only
// builds argument vectors, runs the binary synchronously, and captures its
// output for diagnostics.
package flips

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jamesainslie/rompatch/pkg/rompatch/logging"
)

// identicalMessage is printed by flips when asked to diff two equal files.
// Callers treat this exit as a skip, not a failure.
const identicalMessage = "The files are identical"

// ErrToolNotFound indicates the flips executable could not be located.
var ErrToolNotFound = errors.New("flips executable not found")

// Result captures one tool invocation for diagnostics. The command line,
// stdout, and stderr are surfaced verbatim on failure since the tool is the
// only source of detail about what went wrong.
type Result struct {
	// Command is the full argument vector that was executed.
	Command []string

	// Stdout is the captured standard output, trimmed.
	Stdout string

	// Stderr is the captured standard error, trimmed.
	Stderr string

	// ExitCode is the tool's exit status. Zero means success.
	ExitCode int
}

// Ok reports whether the invocation exited cleanly.
func (r Result) Ok() bool {
	return r.ExitCode == 0
}

// Identical reports whether the tool refused because the inputs were equal.
func (r Result) Identical() bool {
	return strings.Contains(r.Stdout, identicalMessage) ||
		strings.Contains(r.Stderr, identicalMessage)
}

// CommandLine renders the executed command for error reports.
func (r Result) CommandLine() string {
	return strings.Join(r.Command, " ")
}

// Tool abstracts the external patching utility so the engine can be
// exercised without a flips binary on the machine.
type Tool interface {
	// Create produces a patch at outPath describing base -> modified.
	Create(ctx context.Context, basePath, modifiedPath, outPath string) (Result, error)

	// Apply applies the patch to base, writing the result to outPath.
	// ignoreChecksum threads the checksum-bypass flag for forced applies.
	Apply(ctx context.Context, patchPath, basePath, outPath string, ignoreChecksum bool) (Result, error)
}

// ShellTool implements Tool by shelling out to the flips command.
type ShellTool struct {
	execPath string
	logger   *log.Logger
}

// NewShellTool returns a ShellTool for the executable at execPath.
// An empty execPath triggers discovery via Locate.
func NewShellTool(execPath string) (*ShellTool, error) {
	if execPath == "" {
		located, err := Locate()
		if err != nil {
			return nil, err
		}
		execPath = located
	} else if _, err := os.Stat(execPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, execPath)
	}

	return &ShellTool{
		execPath: execPath,
		logger:   logging.Get("flips"),
	}, nil
}

// Path returns the resolved executable path.
func (t *ShellTool) Path() string {
	return t.execPath
}

// Create runs `flips --create base modified out`.
func (t *ShellTool) Create(ctx context.Context, basePath, modifiedPath, outPath string) (Result, error) {
	return t.run(ctx, "--create", basePath, modifiedPath, outPath)
}

// Apply runs `flips --apply [--ignore-checksum] patch base out`.
func (t *ShellTool) Apply(ctx context.Context, patchPath, basePath, outPath string, ignoreChecksum bool) (Result, error) {
	args := []string{"--apply"}
	if ignoreChecksum {
		args = append(args, "--ignore-checksum")
	}
	args = append(args, patchPath, basePath, outPath)
	return t.run(ctx, args...)
}

// run executes the tool synchronously and captures its output. A non-zero
// exit is reported through Result, not through the error return; the error
// return is reserved for failures to start the process at all.
func (t *ShellTool) run(ctx context.Context, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, t.execPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := Result{Command: append([]string{t.execPath}, args...)}
	t.logger.Debug("running tool", "command", result.CommandLine())

	err := cmd.Run()
	result.Stdout = strings.TrimSpace(stdout.String())
	result.Stderr = strings.TrimSpace(stderr.String())

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("running %s: %w", t.execPath, err)
	}
	return result, nil
}

// Locate finds the flips executable, checking in order: next to the rompatch
// binary, a flips/ subdirectory next to the binary, then $PATH.
func Locate() (string, error) {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		for _, candidate := range []string{
			filepath.Join(dir, toolName()),
			filepath.Join(dir, "flips", toolName()),
		} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}

	if path, err := exec.LookPath("flips"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: place it next to rompatch, in a flips/ subdirectory, or on $PATH", ErrToolNotFound)
}
