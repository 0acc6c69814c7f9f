package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/rompatch/pkg/rompatch/digest"
	"github.com/jamesainslie/rompatch/pkg/rompatch/patchfile"
)

// patchExtensions are the file extensions treated as patch files when
// building reports.
var patchExtensions = map[string]bool{
	".bps": true,
	".ips": true,
}

// BuildFileReport inspects one file and returns its report: digests for any
// file, plus trailer metadata for patch-extension files. Digest I/O errors
// propagate; metadata unavailability is recorded as a note instead.
func BuildFileReport(path string) (FileReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileReport{}, fmt.Errorf("stat %s: %w", path, err)
	}

	set, err := digest.Compute(path)
	if err != nil {
		return FileReport{}, err
	}

	report := FileReport{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      info.Size(),
		SizeHuman: humanize.IBytes(uint64(info.Size())),
		CRC32:     set.CRC32Hex(),
		MD5:       set.MD5,
		SHA1:      set.SHA1,
		ZLE:       set.HeaderSlice,
	}

	if patchExtensions[strings.ToLower(filepath.Ext(path))] {
		meta, metaErr := patchfile.Read(path)
		switch {
		case metaErr == nil:
			report.SourceCRC32 = meta.SourceCRC32Hex()
			report.TargetCRC32 = meta.TargetCRC32Hex()
		case errors.Is(metaErr, patchfile.ErrNoMetadata):
			report.Note = "no patch metadata available"
		default:
			return FileReport{}, metaErr
		}
	}

	return report, nil
}
