package output

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color constants using the ANSI 256-color palette.
const (
	// ColorPrimary is used for headers and file names (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for patch metadata values (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for notes and diagnostics (orange/yellow).
	ColorWarning = lipgloss.Color("214")

	// ColorMuted is used for labels and secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

// Styles for pretty report rendering.
var (
	fileStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	metaStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	noteStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)

// PrettyFormatter renders the report with lipgloss styling for terminals.
type PrettyFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	for i, file := range r.Files {
		if i > 0 {
			w.WriteByte('\n')
		}
		fmt.Fprintf(w, "%s %s\n",
			fileStyle.Render(file.Name),
			labelStyle.Render("("+file.SizeHuman+")"))

		f.row(w, "CRC32", file.CRC32)
		f.row(w, "MD5", file.MD5)
		f.row(w, "SHA-1", file.SHA1)
		if file.ZLE != "" {
			f.row(w, "ZLE", file.ZLE)
		}
		if file.IsPatch() {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Source CRC32:"), metaStyle.Render(file.SourceCRC32))
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Target CRC32:"), metaStyle.Render(file.TargetCRC32))
		}
		if file.Note != "" {
			fmt.Fprintf(w, "  %s\n", noteStyle.Render(file.Note))
		}
	}
	return nil
}

// row writes one labeled digest line.
func (f *PrettyFormatter) row(w *bytes.Buffer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label+":"), value)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
