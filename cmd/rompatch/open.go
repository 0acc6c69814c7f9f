package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/rompatch/pkg/rompatch/digest"
	"github.com/jamesainslie/rompatch/pkg/rompatch/engine"
	"github.com/jamesainslie/rompatch/pkg/rompatch/flow"
	"github.com/jamesainslie/rompatch/pkg/rompatch/manifest"
	"github.com/jamesainslie/rompatch/pkg/rompatch/patchfile"
)

var openCmd = &cobra.Command{
	Use:   "open <file>",
	Short: "Start an interactive flow for a single file",
	Long: `Open a file the way a file-manager association would: patch files start
an apply session, ROM files start a create session, and anything else is
classified first. Remaining inputs are gathered through prompts.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	format, err := patchFormat()
	if err != nil {
		return err
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	host := &consoleHost{
		engine: eng,
		ctx:    cmd.Context(),
		in:     bufio.NewReader(os.Stdin),
	}

	ctrl := flow.NewController(host, format,
		viper.GetBool("suffix"), viper.GetBool("force"))

	if err := ctrl.Route(args[0]); err != nil {
		if errors.Is(err, flow.ErrCancelled) {
			printInfo("Cancelled.")
			return nil
		}
		return err
	}
	return nil
}

// consoleHost answers flow questions over stdin and runs batches through the
// engine.
type consoleHost struct {
	engine *engine.Engine
	ctx    context.Context
	in     *bufio.Reader
}

func (h *consoleHost) prompt(question string) string {
	fmt.Print(question)
	line, err := h.in.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (h *consoleHost) SelectBaseROM() (string, bool) {
	path := h.prompt("Base ROM path: ")
	if path == "" {
		return "", false
	}
	return path, true
}

func (h *consoleHost) SelectModifiedROMs() ([]string, bool) {
	line := h.prompt("Modified ROM path(s), space separated: ")
	if line == "" {
		return nil, false
	}
	return strings.Fields(line), true
}

func (h *consoleHost) ChooseKind(path string) flow.Kind {
	switch strings.ToLower(h.prompt(fmt.Sprintf("Treat %s as (r)om or (p)atch? ", path))) {
	case "r", "rom":
		return flow.KindROM
	case "p", "patch":
		return flow.KindPatch
	default:
		return flow.KindCancel
	}
}

func (h *consoleHost) ChooseRole(path string) flow.Role {
	switch strings.ToLower(h.prompt(fmt.Sprintf("Is %s the (b)ase or a (m)odified copy? ", path))) {
	case "b", "base":
		return flow.RoleBase
	case "m", "modified":
		return flow.RoleModified
	default:
		return flow.RoleCancel
	}
}

func (h *consoleHost) ShowROMDigests(path string, set digest.Set) {
	printInfo("File: %s", path)
	printInfo("  CRC32: %s", set.CRC32Hex())
	printInfo("  MD5:   %s", set.MD5)
	printInfo("  SHA1:  %s", set.SHA1)
	if set.HeaderSlice != "" {
		printInfo("  ZLE:   %s", set.HeaderSlice)
	}
}

func (h *consoleHost) ShowPatchMetadata(path string, meta *patchfile.Metadata) {
	printInfo("Patch: %s", path)
	if meta == nil {
		printInfo("  No patch metadata available.")
		return
	}
	printInfo("  Source CRC32: %s", meta.SourceCRC32Hex())
	printInfo("  Target CRC32: %s", meta.TargetCRC32Hex())
}

func (h *consoleHost) Logf(format string, args ...any) {
	printInfo(format, args...)
}

func (h *consoleHost) RunApply(batch engine.ApplyBatch) error {
	summary, err := h.engine.Apply(h.ctx, batch)
	if err != nil {
		return err
	}
	recordRun(manifest.OpApply, summary)
	printSummary(summary)
	return nil
}

func (h *consoleHost) RunCreate(batch engine.CreateBatch) error {
	summary, err := h.engine.Create(h.ctx, batch)
	if err != nil {
		return err
	}
	recordRun(manifest.OpCreate, summary)
	printSummary(summary)
	return nil
}
