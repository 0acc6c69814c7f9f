package output

import (
	"bytes"
	"fmt"
)

// PlainFormatter writes one labeled block per file with no styling,
// suitable for scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	for i, file := range r.Files {
		if i > 0 {
			w.WriteByte('\n')
		}
		fmt.Fprintf(w, "%s (%s)\n", file.Name, file.SizeHuman)
		fmt.Fprintf(w, "  CRC32: %s\n", file.CRC32)
		fmt.Fprintf(w, "  MD5:   %s\n", file.MD5)
		fmt.Fprintf(w, "  SHA-1: %s\n", file.SHA1)
		if file.ZLE != "" {
			fmt.Fprintf(w, "  ZLE:   %s\n", file.ZLE)
		}
		if file.IsPatch() {
			fmt.Fprintf(w, "  Source CRC32: %s\n", file.SourceCRC32)
			fmt.Fprintf(w, "  Target CRC32: %s\n", file.TargetCRC32)
		}
		if file.Note != "" {
			fmt.Fprintf(w, "  Note: %s\n", file.Note)
		}
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
