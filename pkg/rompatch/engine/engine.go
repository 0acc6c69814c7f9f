// Package engine implements the patch compatibility decision logic and the
// batch create/apply operations built on it.
//
// The engine owns no UI: progress and per-file outcomes flow through a
// Reporter (the user-visible append-only log) and a Summary returned to the
// caller. The external diffing tool is injected behind flips.Tool.
package engine

import (
	"github.com/jamesainslie/rompatch/pkg/rompatch/flips"
	"github.com/jamesainslie/rompatch/pkg/rompatch/logging"
	"github.com/jamesainslie/rompatch/pkg/rompatch/patchfile"

	"github.com/charmbracelet/log"
)

// patchedSuffix is inserted before the extension of output filenames when
// the append-suffix option is enabled.
const patchedSuffix = "_patched"

// Format selects the patch file format handed to the external tool.
type Format string

// Supported patch formats.
const (
	FormatBPS Format = "bps"
	FormatIPS Format = "ips"
)

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatIPS {
		return ".ips"
	}
	return ".bps"
}

// Decision is the outcome of the compatibility check for one patch.
type Decision int

const (
	// DecisionProceed applies the patch normally: either the checksums are
	// consistent or no metadata exists to compare against.
	DecisionProceed Decision = iota

	// DecisionProceedOverride applies despite a checksum mismatch, threading
	// the checksum-bypass flag to the external tool.
	DecisionProceedOverride

	// DecisionSkip skips the patch because its declared source CRC-32 does
	// not match the base file and no override was requested.
	DecisionSkip
)

// Decide evaluates one patch against the base file's CRC-32.
//
// Nil metadata means no comparison is possible and the patch proceeds
// unchecked. Each patch in a batch is decided independently; a mismatch
// never aborts the remaining files.
func Decide(baseCRC32 uint32, meta *patchfile.Metadata, force bool) Decision {
	if meta == nil {
		return DecisionProceed
	}
	if meta.SourceCRC32 == baseCRC32 {
		return DecisionProceed
	}
	if force {
		return DecisionProceedOverride
	}
	return DecisionSkip
}

// Reporter receives the user-visible append-only log of a batch run.
// Every skip, failure, and success is reported; nothing is silently dropped.
type Reporter interface {
	Reportf(format string, args ...interface{})
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(format string, args ...interface{})

// Reportf calls the underlying function.
func (f ReporterFunc) Reportf(format string, args ...interface{}) {
	f(format, args...)
}

// Engine runs create and apply batches against an external patching tool.
type Engine struct {
	tool     flips.Tool
	reporter Reporter
	logger   *log.Logger
}

// New returns an Engine using the given tool and reporter.
func New(tool flips.Tool, reporter Reporter) *Engine {
	return &Engine{
		tool:     tool,
		reporter: reporter,
		logger:   logging.Get("engine"),
	}
}

// reportf forwards to the reporter, tolerating a nil reporter in tests.
func (e *Engine) reportf(format string, args ...interface{}) {
	if e.reporter != nil {
		e.reporter.Reportf(format, args...)
	}
}
