// Package patchfile reads embedded metadata from binary patch files.
//
// BPS patches end with three trailing 4-byte fields: the CRC-32 of the
// intended source file, the CRC-32 of the intended target file, and the
// CRC-32 of the patch file itself. Only the first two are consumed here;
// they drive the compatibility check before a patch is applied.
package patchfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/rompatch/pkg/rompatch/digest"
)

// trailerSize is the number of bytes occupied by the three trailing CRC
// fields; the source/target pair sits in the 8 bytes before the final 4.
const trailerSize = 12

// ErrNoMetadata indicates the file does not carry a readable patch trailer.
// This is the expected outcome for IPS patches, truncated files, and
// arbitrary non-patch inputs; callers must treat it as "metadata
// unavailable", not as a fatal condition.
var ErrNoMetadata = errors.New("no patch metadata available")

// Metadata describes a patch file: its own digests plus the CRC-32 values it
// declares for the files it patches between. Read-only; recomputed on every
// read and never persisted.
type Metadata struct {
	// Digest holds the digests of the patch file bytes themselves.
	Digest digest.Set

	// SourceCRC32 is the declared CRC-32 of the base file the patch expects.
	SourceCRC32 uint32

	// TargetCRC32 is the declared CRC-32 of the file the patch produces.
	TargetCRC32 uint32
}

// SourceCRC32Hex renders the declared source CRC-32 for display and for
// comparison against a base file's computed CRC-32.
func (m *Metadata) SourceCRC32Hex() string {
	return digest.FormatCRC32(m.SourceCRC32)
}

// TargetCRC32Hex renders the declared target CRC-32 for display.
func (m *Metadata) TargetCRC32Hex() string {
	return digest.FormatCRC32(m.TargetCRC32)
}

// Read returns the metadata embedded in the patch file at path.
//
// Any failure (unopenable file, file shorter than the trailer, short read)
// returns an error wrapping ErrNoMetadata. Unlike digest.Compute, the error
// is an expected result for non-patch inputs and must not abort the caller.
func Read(path string) (*Metadata, error) {
	set, err := digest.Compute(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}
	defer f.Close()

	if _, err := f.Seek(-trailerSize, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("%w: %s is too short for a patch trailer", ErrNoMetadata, path)
	}

	var fields [8]byte
	if _, err := io.ReadFull(f, fields[:]); err != nil {
		return nil, fmt.Errorf("%w: reading trailer of %s: %v", ErrNoMetadata, path, err)
	}

	return &Metadata{
		Digest:      set,
		SourceCRC32: binary.LittleEndian.Uint32(fields[0:4]),
		TargetCRC32: binary.LittleEndian.Uint32(fields[4:8]),
	}, nil
}
