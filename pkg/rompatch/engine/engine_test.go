package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/rompatch/pkg/rompatch/flips"
	"github.com/jamesainslie/rompatch/pkg/rompatch/patchfile"
)

// fakeTool records invocations and plays back canned results.
type fakeTool struct {
	createCalls [][3]string
	applyCalls  []applyCall

	// next result returned by any invocation; per-path overrides win.
	result    flips.Result
	resultFor map[string]flips.Result

	// createOutput, when true, writes the output file on each call,
	// simulating the tool producing output even while exiting non-zero.
	createOutput bool
}

type applyCall struct {
	patch, base, out string
	ignoreChecksum   bool
}

func (f *fakeTool) Create(_ context.Context, base, modified, out string) (flips.Result, error) {
	f.createCalls = append(f.createCalls, [3]string{base, modified, out})
	return f.resolve(modified, out), nil
}

func (f *fakeTool) Apply(_ context.Context, patch, base, out string, ignoreChecksum bool) (flips.Result, error) {
	f.applyCalls = append(f.applyCalls, applyCall{patch: patch, base: base, out: out, ignoreChecksum: ignoreChecksum})
	return f.resolve(patch, out), nil
}

func (f *fakeTool) resolve(key, out string) flips.Result {
	result := f.result
	if r, ok := f.resultFor[key]; ok {
		result = r
	}
	if f.createOutput {
		_ = os.WriteFile(out, []byte("patched"), 0o644)
	}
	return result
}

// recorder collects report lines for assertions.
type recorder struct {
	lines []string
}

func (r *recorder) Reportf(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recorder) joined() string {
	return strings.Join(r.lines, "\n")
}

// writeFile creates a file under dir with the given content.
func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

// writePatch writes a fake patch whose trailer declares the given source and
// target CRC-32 values.
func writePatch(t *testing.T, dir, name string, sourceCRC, targetCRC uint32) string {
	t.Helper()
	body := []byte("BPS1 fake body ")
	trailer := make([]byte, 12)
	binary.LittleEndian.PutUint32(trailer[0:4], sourceCRC)
	binary.LittleEndian.PutUint32(trailer[4:8], targetCRC)
	return writeFile(t, dir, name, append(body, trailer...))
}

func crcOf(content []byte) uint32 {
	return crc32.ChecksumIEEE(content)
}

func TestDecide(t *testing.T) {
	withSource := func(crc uint32) *patchfile.Metadata {
		return &patchfile.Metadata{SourceCRC32: crc}
	}

	tests := []struct {
		name  string
		base  uint32
		meta  *patchfile.Metadata
		force bool
		want  Decision
	}{
		{name: "no metadata", base: 0xAAAAAAAA, meta: nil, force: false, want: DecisionProceed},
		{name: "no metadata forced", base: 0xAAAAAAAA, meta: nil, force: true, want: DecisionProceed},
		{name: "match", base: 0xAAAAAAAA, meta: withSource(0xAAAAAAAA), force: false, want: DecisionProceed},
		{name: "match forced", base: 0xAAAAAAAA, meta: withSource(0xAAAAAAAA), force: true, want: DecisionProceed},
		{name: "mismatch", base: 0xAAAAAAAA, meta: withSource(0xBBBBBBBB), force: false, want: DecisionSkip},
		{name: "mismatch forced", base: 0xAAAAAAAA, meta: withSource(0xBBBBBBBB), force: true, want: DecisionProceedOverride},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.base, tt.meta, tt.force))
		})
	}
}

func TestCreate_SkipsIdenticalWithoutToolInvocation(t *testing.T) {
	dir := t.TempDir()
	content := []byte("identical rom content")
	base := writeFile(t, dir, "base.sfc", content)
	modified := writeFile(t, dir, "hack.sfc", content)

	tool := &fakeTool{}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Create(context.Background(), CreateBatch{
		BasePath:      base,
		ModifiedPaths: []string{modified},
		Format:        FormatBPS,
	})
	require.NoError(t, err)

	assert.Empty(t, tool.createCalls, "identical files must not invoke the tool")
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, StatusSkippedIdentical, summary.Outcomes[0].Status)
	assert.Contains(t, rec.joined(), "identical")
}

func TestCreate_SelfComparisonSkippedRestProcessed(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.sfc", []byte("base content"))
	hack := writeFile(t, dir, "hack.sfc", []byte("changed content"))

	tool := &fakeTool{}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Create(context.Background(), CreateBatch{
		BasePath:      base,
		ModifiedPaths: []string{base, hack},
		Format:        FormatBPS,
	})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, StatusSkippedSelf, summary.Outcomes[0].Status)
	assert.Equal(t, StatusCreated, summary.Outcomes[1].Status)
	require.Len(t, tool.createCalls, 1)
	assert.Equal(t, hack, tool.createCalls[0][1])
	assert.Contains(t, rec.joined(), "cannot be the same file")
}

func TestCreate_ToolIdenticalMessageIsSkipNotError(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.sfc", []byte("base content"))
	hack := writeFile(t, dir, "hack.sfc", []byte("other content"))

	tool := &fakeTool{result: flips.Result{Stdout: "The files are identical!", ExitCode: 1}}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Create(context.Background(), CreateBatch{
		BasePath:      base,
		ModifiedPaths: []string{hack},
		Format:        FormatIPS,
	})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, StatusSkippedIdentical, summary.Outcomes[0].Status)
	assert.NotContains(t, rec.joined(), "Error")
}

func TestCreate_FailureReportsCommandVerbatim(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.sfc", []byte("base content"))
	hack := writeFile(t, dir, "hack.sfc", []byte("other content"))

	tool := &fakeTool{result: flips.Result{
		Command:  []string{"flips", "--create", base, hack, "out.bps"},
		Stderr:   "bust",
		ExitCode: 2,
	}}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Create(context.Background(), CreateBatch{
		BasePath:      base,
		ModifiedPaths: []string{hack},
		Format:        FormatBPS,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, summary.Outcomes[0].Status)
	out := rec.joined()
	assert.Contains(t, out, "flips --create")
	assert.Contains(t, out, "bust")
	assert.Contains(t, out, "Patch creation process is complete.")
}

func TestCreate_OutputPath(t *testing.T) {
	tests := []struct {
		name  string
		batch CreateBatch
		mod   string
		want  string
	}{
		{
			name:  "bps no suffix",
			batch: CreateBatch{Format: FormatBPS},
			mod:   "/roms/hack.sfc",
			want:  "/roms/hack.bps",
		},
		{
			name:  "ips with suffix",
			batch: CreateBatch{Format: FormatIPS, AppendSuffix: true},
			mod:   "/roms/hack.sfc",
			want:  "/roms/hack_patched.ips",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.batch.OutputPath(tt.mod))
		})
	}
}

func TestCreate_Preconditions(t *testing.T) {
	eng := New(&fakeTool{}, nil)

	_, err := eng.Create(context.Background(), CreateBatch{ModifiedPaths: []string{"a"}})
	assert.ErrorIs(t, err, ErrNoBaseFile)

	_, err = eng.Create(context.Background(), CreateBatch{BasePath: "base.sfc"})
	assert.ErrorIs(t, err, ErrNoModifiedFiles)
}

func TestApply_MismatchSkipsExactlyOnePatch(t *testing.T) {
	dir := t.TempDir()
	baseContent := []byte("base rom content")
	base := writeFile(t, dir, "base.sfc", baseContent)
	baseCRC := crcOf(baseContent)

	good1 := writePatch(t, dir, "good1.bps", baseCRC, 0x11111111)
	bad := writePatch(t, dir, "bad.bps", baseCRC+1, 0x22222222)
	good2 := writePatch(t, dir, "good2.bps", baseCRC, 0x33333333)

	tool := &fakeTool{}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Apply(context.Background(), ApplyBatch{
		BasePath:   base,
		PatchPaths: []string{good1, bad, good2},
	})
	require.NoError(t, err)

	// N=3 with one mismatch: exactly N-1 tool invocations.
	require.Len(t, tool.applyCalls, 2)
	assert.Equal(t, good1, tool.applyCalls[0].patch)
	assert.Equal(t, good2, tool.applyCalls[1].patch)

	require.Len(t, summary.Outcomes, 3)
	assert.Equal(t, StatusApplied, summary.Outcomes[0].Status)
	assert.Equal(t, StatusSkippedMismatch, summary.Outcomes[1].Status)
	assert.Equal(t, StatusApplied, summary.Outcomes[2].Status)

	// The skip message names the mismatched patch.
	assert.Contains(t, rec.joined(), "Skipping patching for bad.bps")
}

func TestApply_ForceUsesChecksumBypass(t *testing.T) {
	dir := t.TempDir()
	baseContent := []byte("base rom content")
	base := writeFile(t, dir, "base.sfc", baseContent)
	bad := writePatch(t, dir, "bad.bps", crcOf(baseContent)+1, 0)

	tool := &fakeTool{}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Apply(context.Background(), ApplyBatch{
		BasePath:   base,
		PatchPaths: []string{bad},
		Force:      true,
	})
	require.NoError(t, err)

	require.Len(t, tool.applyCalls, 1)
	assert.True(t, tool.applyCalls[0].ignoreChecksum)
	assert.Equal(t, StatusAppliedOverride, summary.Outcomes[0].Status)
	assert.Contains(t, rec.joined(), "despite CRC32 mismatch")
}

func TestApply_NoMetadataProceedsUnchecked(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.sfc", []byte("base rom content"))
	stub := writeFile(t, dir, "tiny.ips", []byte{0x01})

	tool := &fakeTool{}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Apply(context.Background(), ApplyBatch{
		BasePath:   base,
		PatchPaths: []string{stub},
	})
	require.NoError(t, err)

	require.Len(t, tool.applyCalls, 1)
	assert.False(t, tool.applyCalls[0].ignoreChecksum)
	assert.Equal(t, StatusApplied, summary.Outcomes[0].Status)
	assert.Contains(t, rec.joined(), "No metadata available for tiny.ips")
}

func TestApply_SoftSuccessWhenOutputExists(t *testing.T) {
	dir := t.TempDir()
	baseContent := []byte("base rom content")
	base := writeFile(t, dir, "base.sfc", baseContent)
	patch := writePatch(t, dir, "hack.bps", crcOf(baseContent), 0)

	tool := &fakeTool{
		result:       flips.Result{Stderr: "warning: something", ExitCode: 1},
		createOutput: true,
	}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Apply(context.Background(), ApplyBatch{
		BasePath:   base,
		PatchPaths: []string{patch},
	})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, StatusAppliedDespiteErrors, summary.Outcomes[0].Status)
	assert.Contains(t, rec.joined(), "despite errors")
	assert.Contains(t, rec.joined(), "Output file location")
}

func TestApply_FailureWithoutOutputReportsVerbatim(t *testing.T) {
	dir := t.TempDir()
	baseContent := []byte("base rom content")
	base := writeFile(t, dir, "base.sfc", baseContent)
	patch := writePatch(t, dir, "hack.bps", crcOf(baseContent), 0)

	tool := &fakeTool{result: flips.Result{
		Command:  []string{"flips", "--apply", patch, base, "out"},
		Stdout:   "nope",
		ExitCode: 1,
	}}
	rec := &recorder{}
	eng := New(tool, rec)

	summary, err := eng.Apply(context.Background(), ApplyBatch{
		BasePath:   base,
		PatchPaths: []string{patch},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, summary.Outcomes[0].Status)
	out := rec.joined()
	assert.Contains(t, out, "flips --apply")
	assert.Contains(t, out, "nope")
	assert.Contains(t, out, "Patching process is complete.")
}

func TestApply_OutputPathUsesBaseExtension(t *testing.T) {
	batch := ApplyBatch{BasePath: "/roms/base.smc"}
	assert.Equal(t, "/patches/hack.smc", batch.OutputPath("/patches/hack.bps"))

	batch.AppendSuffix = true
	assert.Equal(t, "/patches/hack_patched.smc", batch.OutputPath("/patches/hack.bps"))
}

func TestApply_Preconditions(t *testing.T) {
	eng := New(&fakeTool{}, nil)

	_, err := eng.Apply(context.Background(), ApplyBatch{PatchPaths: []string{"a.bps"}})
	assert.ErrorIs(t, err, ErrNoBaseFile)

	_, err = eng.Apply(context.Background(), ApplyBatch{BasePath: "base.sfc"})
	assert.ErrorIs(t, err, ErrNoPatchFiles)
}

func TestSummary_Counts(t *testing.T) {
	s := &Summary{Outcomes: []Outcome{
		{Status: StatusApplied},
		{Status: StatusApplied},
		{Status: StatusSkippedMismatch},
		{Status: StatusFailed},
		{Status: StatusAppliedDespiteErrors},
	}}

	assert.Equal(t, 2, s.Count(StatusApplied))
	assert.Equal(t, 3, s.Succeeded())
	assert.True(t, StatusSkippedMismatch.Skipped())
	assert.False(t, StatusFailed.Skipped())
}
