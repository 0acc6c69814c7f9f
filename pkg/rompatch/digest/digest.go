// Package digest computes verification checksums over ROM and patch files.
//
// A single streaming pass over the file feeds CRC-32, MD5, and SHA-1
// simultaneously. The package also extracts the "ZLE" header slice, a short
// hex rendering of the ROM header region shown to users for reference.
package digest

import (
	"crypto/md5"  //nolint:gosec // File identity fingerprint, not a security boundary.
	"crypto/sha1" //nolint:gosec // Same as above; the patch format mandates these digests.
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"strings"
)

// chunkSize is the read size for streaming hash computation.
const chunkSize = 64 * 1024

// Header slice boundaries. Bytes 16..27 of a ROM are rendered as the ZLE
// reference value.
const (
	headerSliceStart = 16
	headerSliceEnd   = 28
)

// Set holds the digests computed over a single file. A Set is computed fresh
// on demand and never cached; values are immutable once produced.
type Set struct {
	// CRC32 is the standard-polynomial CRC-32 of the entire file.
	CRC32 uint32

	// MD5 is the lowercase hex MD5 digest of the entire file.
	MD5 string

	// SHA1 is the lowercase hex SHA-1 digest of the entire file.
	SHA1 string

	// HeaderSlice is the ZLE header rendering: bytes 16..27 hex-encoded with
	// trailing '0' characters stripped. Advisory only; files shorter than 28
	// bytes yield a short or empty string.
	HeaderSlice string
}

// CRC32Hex renders the CRC-32 as "0x" followed by 8 lowercase hex digits,
// the form used for display and for comparison against patch metadata.
func (s Set) CRC32Hex() string {
	return FormatCRC32(s.CRC32)
}

// FormatCRC32 renders a CRC-32 value as "0x" followed by exactly 8
// zero-padded lowercase hex digits.
func FormatCRC32(crc uint32) string {
	return fmt.Sprintf("0x%08x", crc)
}

// Compute streams the file at path and returns its digest Set.
// I/O failures propagate to the caller; nothing is masked here.
func Compute(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	crc := crc32.NewIEEE()
	md := md5.New()  //nolint:gosec
	sha := sha1.New() //nolint:gosec

	var header []byte
	buf := make([]byte, chunkSize)
	offset := 0
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			crc.Write(chunk)
			md.Write(chunk)
			sha.Write(chunk)
			header = appendHeaderSlice(header, chunk, offset)
			offset += n
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return Set{}, fmt.Errorf("reading %s: %w", path, readErr)
		}
	}

	return Set{
		CRC32:       crc.Sum32(),
		MD5:         hex.EncodeToString(md.Sum(nil)),
		SHA1:        hex.EncodeToString(sha.Sum(nil)),
		HeaderSlice: renderHeaderSlice(header),
	}, nil
}

// CRC32File computes only the CRC-32 of the file at path. Used by the
// identical-files fast path, where the full Set would be wasted work.
func CRC32File(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	crc := crc32.NewIEEE()
	if _, err := io.CopyBuffer(crc, f, make([]byte, chunkSize)); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return crc.Sum32(), nil
}

// appendHeaderSlice collects the bytes of chunk that fall inside the header
// slice window, given the chunk's starting offset within the file.
func appendHeaderSlice(header, chunk []byte, offset int) []byte {
	end := offset + len(chunk)
	if end <= headerSliceStart || offset >= headerSliceEnd {
		return header
	}
	lo := headerSliceStart - offset
	if lo < 0 {
		lo = 0
	}
	hi := headerSliceEnd - offset
	if hi > len(chunk) {
		hi = len(chunk)
	}
	return append(header, chunk[lo:hi]...)
}

// renderHeaderSlice hex-encodes the header bytes and strips trailing '0'
// characters from the rendering. The trim operates on hex digits, not bytes,
// so a trailing low nibble can be truncated asymmetrically.
func renderHeaderSlice(header []byte) string {
	return strings.TrimRight(hex.EncodeToString(header), "0")
}
