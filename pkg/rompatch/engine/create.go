package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/rompatch/pkg/rompatch/digest"
	"github.com/jamesainslie/rompatch/pkg/rompatch/flips"
)

// Errors returned before any external tool invocation when a batch's
// preconditions are not met.
var (
	ErrNoBaseFile      = errors.New("no base file selected")
	ErrNoModifiedFiles = errors.New("no modified files selected")
	ErrNoPatchFiles    = errors.New("no patch files selected")
)

// CreateBatch describes one create-patches run. It is constructed once all
// inputs are collected and passed by value; the engine never mutates it.
type CreateBatch struct {
	// BasePath is the unmodified reference file.
	BasePath string

	// ModifiedPaths are the changed files to diff against the base,
	// in processing order.
	ModifiedPaths []string

	// Format selects .bps or .ips output.
	Format Format

	// AppendSuffix inserts "_patched" before the output extension.
	AppendSuffix bool
}

// OutputPath returns the patch path for one modified file: same directory
// and base name, with the configured extension.
func (b CreateBatch) OutputPath(modifiedPath string) string {
	stem := strings.TrimSuffix(modifiedPath, filepath.Ext(modifiedPath))
	if b.AppendSuffix {
		stem += patchedSuffix
	}
	return stem + b.Format.Extension()
}

// Create generates one patch per modified file, skipping identical files and
// self-comparisons. The returned Summary lists every outcome in order; the
// batch continues past per-file failures. Hashing I/O errors propagate and
// abort the batch.
func (e *Engine) Create(ctx context.Context, batch CreateBatch) (*Summary, error) {
	if batch.BasePath == "" {
		return nil, ErrNoBaseFile
	}
	if len(batch.ModifiedPaths) == 0 {
		return nil, ErrNoModifiedFiles
	}

	baseAbs, err := filepath.Abs(batch.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolving base file: %w", err)
	}
	baseCRC, err := digest.CRC32File(batch.BasePath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Operation: "create", BasePath: batch.BasePath}
	e.logger.Info("create batch started", "base", batch.BasePath, "files", len(batch.ModifiedPaths))

	for _, modified := range batch.ModifiedPaths {
		outcome, err := e.createOne(ctx, batch, baseAbs, baseCRC, modified)
		if err != nil {
			return nil, err
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	e.reportf("Patch creation process is complete.")
	return summary, nil
}

// createOne handles a single modified file within a create batch.
func (e *Engine) createOne(ctx context.Context, batch CreateBatch, baseAbs string, baseCRC uint32, modified string) (Outcome, error) {
	name := filepath.Base(modified)

	modAbs, err := filepath.Abs(modified)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolving %s: %w", modified, err)
	}
	if modAbs == baseAbs {
		e.reportf("Error: base and modified file cannot be the same file; ignoring %s.", name)
		return Outcome{
			Path:   modified,
			Status: StatusSkippedSelf,
			Detail: "cannot patch a file against itself",
		}, nil
	}

	modCRC, err := digest.CRC32File(modified)
	if err != nil {
		return Outcome{}, err
	}
	if modCRC == baseCRC {
		e.reportf("Skipping %s: base and modified are identical (no patch needed).", name)
		return Outcome{
			Path:   modified,
			Status: StatusSkippedIdentical,
			Detail: "files are identical, no patch needed",
		}, nil
	}

	outPath := batch.OutputPath(modified)
	result, err := e.tool.Create(ctx, batch.BasePath, modified, outPath)
	if err != nil {
		return Outcome{}, err
	}

	switch {
	case result.Ok():
		e.reportf("Successfully created patch: %s", filepath.Base(outPath))
		return Outcome{Path: modified, Output: outPath, Status: StatusCreated}, nil
	case result.Identical():
		// The tool's own identical-files refusal is the same skip, not an error.
		e.reportf("Skipping %s: files are identical.", name)
		return Outcome{
			Path:   modified,
			Status: StatusSkippedIdentical,
			Detail: "files are identical, no patch needed",
		}, nil
	default:
		e.reportFailure("creating patch for "+name, result)
		return Outcome{
			Path:   modified,
			Status: StatusFailed,
			Detail: failureDetail(result),
		}, nil
	}
}

// reportFailure surfaces a tool failure verbatim: command line, stdout, and
// stderr are the only diagnostics available from the opaque tool.
func (e *Engine) reportFailure(action string, result flips.Result) {
	e.reportf("Error %s:", action)
	e.reportf("  Command: %s", result.CommandLine())
	e.reportf("  Stdout: %s", orDefault(result.Stdout, "No output"))
	e.reportf("  Stderr: %s", orDefault(result.Stderr, "Unknown error occurred."))
}

// failureDetail condenses a failed invocation for the run summary.
func failureDetail(result flips.Result) string {
	if result.Stderr != "" {
		return result.Stderr
	}
	if result.Stdout != "" {
		return result.Stdout
	}
	return fmt.Sprintf("tool exited with status %d", result.ExitCode)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
