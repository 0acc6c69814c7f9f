// Package flow routes files handed to the application by the operating
// system, for example through an "open with" association. It decides whether
// the file starts a patch-apply or patch-create session and gathers the
// remaining inputs through a Host.
package flow

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/rompatch/pkg/rompatch/digest"
	"github.com/jamesainslie/rompatch/pkg/rompatch/engine"
	"github.com/jamesainslie/rompatch/pkg/rompatch/patchfile"
)

// Kind classifies an entry file with an unrecognized extension.
type Kind int

const (
	// KindCancel aborts the flow.
	KindCancel Kind = iota
	// KindROM treats the file as a ROM image.
	KindROM
	// KindPatch treats the file as a patch file.
	KindPatch
)

// Role is the part a ROM plays in a create session.
type Role int

const (
	// RoleCancel aborts the flow.
	RoleCancel Role = iota
	// RoleBase marks the ROM as the unmodified original.
	RoleBase
	// RoleModified marks the ROM as the changed copy.
	RoleModified
)

// Host supplies the interactive capabilities a flow needs. Each method maps
// to one question or display step; hosts that cannot answer return false or
// a cancel value and the flow stops cleanly.
type Host interface {
	// SelectBaseROM asks for the path of the unmodified ROM.
	SelectBaseROM() (string, bool)

	// SelectModifiedROMs asks for one or more modified ROM paths.
	SelectModifiedROMs() ([]string, bool)

	// ChooseKind asks whether an unrecognized file is a ROM or a patch.
	ChooseKind(path string) Kind

	// ChooseRole asks whether a ROM is the base or a modified copy.
	ChooseRole(path string) Role

	// ShowROMDigests displays the digests computed for a ROM.
	ShowROMDigests(path string, set digest.Set)

	// ShowPatchMetadata displays trailer metadata for a patch, or the
	// fact that none is available when meta is nil.
	ShowPatchMetadata(path string, meta *patchfile.Metadata)

	// Logf reports flow progress.
	Logf(format string, args ...any)

	// RunApply executes an apply batch.
	RunApply(batch engine.ApplyBatch) error

	// RunCreate executes a create batch.
	RunCreate(batch engine.CreateBatch) error
}

// ErrCancelled is returned when the host declines to provide an input.
var ErrCancelled = errors.New("flow cancelled")

var patchExts = map[string]bool{
	".bps": true,
	".ips": true,
}

var romExts = map[string]bool{
	".nes": true,
	".sfc": true,
	".smc": true,
	".gba": true,
	".gbc": true,
	".gen": true,
	".md":  true,
	".bin": true,
	".rom": true,
	".z64": true,
	".n64": true,
	".v64": true,
	".sms": true,
	".pce": true,
}

// Controller drives an open-with session. Format, AppendSuffix and Force
// carry the user's configured defaults into the batches it builds.
type Controller struct {
	host         Host
	format       engine.Format
	appendSuffix bool
	force        bool
}

// NewController returns a controller that gathers inputs through host.
func NewController(host Host, format engine.Format, appendSuffix, force bool) *Controller {
	return &Controller{host: host, format: format, appendSuffix: appendSuffix, force: force}
}

// Route inspects path and runs the matching flow. Patch extensions start an
// apply session, ROM extensions start a create session, and anything else is
// classified by the host first.
func (c *Controller) Route(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case patchExts[ext]:
		return c.applyFlow(path)
	case romExts[ext]:
		return c.romFlow(path)
	default:
		switch c.host.ChooseKind(path) {
		case KindPatch:
			return c.applyFlow(path)
		case KindROM:
			return c.romFlow(path)
		default:
			return ErrCancelled
		}
	}
}

func (c *Controller) applyFlow(patchPath string) error {
	meta, err := patchfile.Read(patchPath)
	if err != nil {
		if !errors.Is(err, patchfile.ErrNoMetadata) {
			return fmt.Errorf("read patch %s: %w", patchPath, err)
		}
		meta = nil
	}
	c.host.ShowPatchMetadata(patchPath, meta)

	base, ok := c.host.SelectBaseROM()
	if !ok {
		return ErrCancelled
	}

	c.host.Logf("Applying %s to %s.", filepath.Base(patchPath), filepath.Base(base))
	return c.host.RunApply(engine.ApplyBatch{
		BasePath:     base,
		PatchPaths:   []string{patchPath},
		AppendSuffix: c.appendSuffix,
		Force:        c.force,
	})
}

func (c *Controller) romFlow(romPath string) error {
	set, err := digest.Compute(romPath)
	if err != nil {
		return fmt.Errorf("digest %s: %w", romPath, err)
	}
	c.host.ShowROMDigests(romPath, set)

	switch c.host.ChooseRole(romPath) {
	case RoleBase:
		modified, ok := c.host.SelectModifiedROMs()
		if !ok || len(modified) == 0 {
			return ErrCancelled
		}
		return c.createFlow(romPath, modified)
	case RoleModified:
		base, ok := c.host.SelectBaseROM()
		if !ok {
			return ErrCancelled
		}
		return c.createFlow(base, []string{romPath})
	default:
		return ErrCancelled
	}
}

func (c *Controller) createFlow(base string, modified []string) error {
	c.host.Logf("Creating %d patch(es) against %s.", len(modified), filepath.Base(base))
	return c.host.RunCreate(engine.CreateBatch{
		BasePath:      base,
		ModifiedPaths: modified,
		Format:        c.format,
		AppendSuffix:  c.appendSuffix,
	})
}
