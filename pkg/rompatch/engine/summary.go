package engine

// Status classifies the outcome of one file within a batch.
type Status string

// Per-file batch outcomes.
const (
	// StatusCreated means a patch was generated for the file.
	StatusCreated Status = "created"

	// StatusApplied means the patch applied cleanly.
	StatusApplied Status = "applied"

	// StatusAppliedOverride means the patch applied with the checksum
	// bypass after a CRC-32 mismatch.
	StatusAppliedOverride Status = "applied-override"

	// StatusAppliedDespiteErrors means the tool exited non-zero but still
	// produced the output file, which is treated as a soft success.
	StatusAppliedDespiteErrors Status = "applied-despite-errors"

	// StatusSkippedIdentical means base and modified files were equal and
	// no patch was needed.
	StatusSkippedIdentical Status = "skipped-identical"

	// StatusSkippedMismatch means the patch's declared source CRC-32 did
	// not match the base file and no override was requested.
	StatusSkippedMismatch Status = "skipped-mismatch"

	// StatusSkippedSelf means a file was compared against itself.
	StatusSkippedSelf Status = "skipped-self"

	// StatusFailed means the external tool failed without producing output.
	StatusFailed Status = "failed"
)

// Skipped reports whether the status describes a skip rather than a tool run.
func (s Status) Skipped() bool {
	switch s {
	case StatusSkippedIdentical, StatusSkippedMismatch, StatusSkippedSelf:
		return true
	default:
		return false
	}
}

// Outcome records what happened to a single file in a batch.
type Outcome struct {
	// Path is the patch file (apply) or modified file (create).
	Path string `json:"path"`

	// Output is the produced file path, empty when nothing was written.
	Output string `json:"output,omitempty"`

	// Status classifies the result.
	Status Status `json:"status"`

	// Detail carries the diagnostic text for skips and failures.
	Detail string `json:"detail,omitempty"`
}

// Summary aggregates the outcomes of one batch run.
type Summary struct {
	// Operation is "apply" or "create".
	Operation string `json:"operation"`

	// BasePath is the base file the batch ran against.
	BasePath string `json:"base_path"`

	// Outcomes lists per-file results in processing order.
	Outcomes []Outcome `json:"outcomes"`
}

// Count returns the number of outcomes with the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Succeeded returns the number of outcomes that produced an output file.
func (s *Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusCreated, StatusApplied, StatusAppliedOverride, StatusAppliedDespiteErrors:
			n++
		}
	}
	return n
}
