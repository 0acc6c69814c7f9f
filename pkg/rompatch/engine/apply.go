package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/rompatch/pkg/rompatch/digest"
	"github.com/jamesainslie/rompatch/pkg/rompatch/patchfile"
)

// ApplyBatch describes one apply-patches run. Like CreateBatch it is an
// immutable descriptor constructed once all inputs are collected.
type ApplyBatch struct {
	// BasePath is the file the patches are applied to.
	BasePath string

	// PatchPaths are the patch files to apply, in processing order.
	PatchPaths []string

	// AppendSuffix inserts "_patched" before the output extension.
	AppendSuffix bool

	// Force applies patches whose declared source CRC-32 does not match the
	// base file, threading the checksum bypass to the external tool.
	Force bool
}

// OutputPath returns the patched file path for one patch: same directory and
// base name as the patch, with the base file's extension substituted.
func (b ApplyBatch) OutputPath(patchPath string) string {
	stem := strings.TrimSuffix(patchPath, filepath.Ext(patchPath))
	if b.AppendSuffix {
		stem += patchedSuffix
	}
	return stem + filepath.Ext(b.BasePath)
}

// Apply applies each patch in the batch to the base file. Per-file CRC
// mismatches and tool failures are reported and do not abort the remaining
// patches. Hashing I/O errors on the base file propagate and abort the run.
func (e *Engine) Apply(ctx context.Context, batch ApplyBatch) (*Summary, error) {
	if batch.BasePath == "" {
		return nil, ErrNoBaseFile
	}
	if len(batch.PatchPaths) == 0 {
		return nil, ErrNoPatchFiles
	}

	baseCRC, err := digest.CRC32File(batch.BasePath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Operation: "apply", BasePath: batch.BasePath}
	e.logger.Info("apply batch started", "base", batch.BasePath, "patches", len(batch.PatchPaths))

	for _, patch := range batch.PatchPaths {
		outcome, err := e.applyOne(ctx, batch, baseCRC, patch)
		if err != nil {
			return nil, err
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	e.reportf("Patching process is complete.")
	return summary, nil
}

// applyOne handles a single patch file within an apply batch.
func (e *Engine) applyOne(ctx context.Context, batch ApplyBatch, baseCRC uint32, patch string) (Outcome, error) {
	name := filepath.Base(patch)
	outPath := batch.OutputPath(patch)

	meta, metaErr := patchfile.Read(patch)
	if metaErr != nil {
		// Expected for IPS and truncated files: proceed without a CRC check.
		e.logger.Debug("metadata unavailable", "patch", patch, "err", metaErr)
		e.reportf("No metadata available for %s; applying without CRC check.", name)
	}

	decision := Decide(baseCRC, meta, batch.Force)
	switch decision {
	case DecisionSkip:
		e.reportf("Skipping patching for %s due to CRC32 mismatch.", name)
		return Outcome{
			Path:   patch,
			Status: StatusSkippedMismatch,
			Detail: fmt.Sprintf("patch expects source %s, base file is %s",
				meta.SourceCRC32Hex(), digest.FormatCRC32(baseCRC)),
		}, nil
	case DecisionProceedOverride:
		e.reportf("Force to Patch enabled. Applying patch for %s despite CRC32 mismatch.", name)
	case DecisionProceed:
		if meta != nil {
			e.reportf("CRC32 match for %s. Proceeding with patch.", name)
		}
	}

	result, err := e.tool.Apply(ctx, patch, batch.BasePath, outPath, decision == DecisionProceedOverride)
	if err != nil {
		return Outcome{}, err
	}

	switch {
	case result.Ok() && decision == DecisionProceedOverride:
		e.reportf("Successfully applied patch despite errors: %s", filepath.Base(outPath))
		return Outcome{Path: patch, Output: outPath, Status: StatusAppliedOverride}, nil
	case result.Ok():
		e.reportf("Successfully applied patch: %s", filepath.Base(outPath))
		return Outcome{Path: patch, Output: outPath, Status: StatusApplied}, nil
	default:
		// An output file produced despite the non-zero exit is a soft success.
		if _, statErr := os.Stat(outPath); statErr == nil {
			e.reportf("Successfully applied patch despite errors: %s", filepath.Base(outPath))
			e.reportf("Output file location: %s", outPath)
			return Outcome{Path: patch, Output: outPath, Status: StatusAppliedDespiteErrors}, nil
		}
		e.reportFailure("applying patch ["+name+"]", result)
		return Outcome{
			Path:   patch,
			Status: StatusFailed,
			Detail: failureDetail(result),
		}, nil
	}
}
