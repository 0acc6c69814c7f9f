package digest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file with the given content in a temp dir.
func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestCompute_KnownVectors(t *testing.T) {
	// "123456789" is the standard CRC-32 check input.
	path := writeFile(t, "check.bin", []byte("123456789"))

	set, err := Compute(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(0xcbf43926), set.CRC32)
	assert.Equal(t, "0xcbf43926", set.CRC32Hex())
	assert.Equal(t, "25f9e794323b453885f5181f1b624d0b", set.MD5)
	assert.Equal(t, "f7c3bc1d808e04732adf679965ccc34ca7ae3441", set.SHA1)
}

func TestCompute_Deterministic(t *testing.T) {
	content := bytes.Repeat([]byte{0xAB, 0x00, 0x42}, 50000) // spans multiple chunks
	path := writeFile(t, "rom.sfc", content)

	first, err := Compute(path)
	require.NoError(t, err)
	second, err := Compute(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_HeaderSlice(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{
			name:    "full window",
			content: append(bytes.Repeat([]byte{0xFF}, 16), []byte{0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49, 0x4A, 0x4B, 0x4C, 0xFF, 0xFF}...),
			want:    "4142434445464748494a4b4c",
		},
		{
			name:    "trailing zero digits stripped",
			content: append(bytes.Repeat([]byte{0x00}, 16), []byte{0x12, 0x34, 0x50, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}...),
			want:    "12345",
		},
		{
			name:    "file shorter than window",
			content: append(bytes.Repeat([]byte{0x00}, 16), 0x1F, 0x2F),
			want:    "1f2f",
		},
		{
			name:    "file shorter than 16 bytes",
			content: []byte{0x01, 0x02, 0x03},
			want:    "",
		},
		{
			name:    "empty file",
			content: nil,
			want:    "",
		},
		{
			name:    "all zero window",
			content: bytes.Repeat([]byte{0x00}, 64),
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "rom.bin", tt.content)
			set, err := Compute(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.HeaderSlice)
			assert.LessOrEqual(t, len(set.HeaderSlice), 24)
		})
	}
}

func TestCompute_MissingFilePropagates(t *testing.T) {
	_, err := Compute(filepath.Join(t.TempDir(), "does-not-exist.bin"))
	require.Error(t, err)
}

func TestCRC32File_MatchesCompute(t *testing.T) {
	path := writeFile(t, "rom.gba", bytes.Repeat([]byte("rompatch"), 20000))

	set, err := Compute(path)
	require.NoError(t, err)

	crc, err := CRC32File(path)
	require.NoError(t, err)
	assert.Equal(t, set.CRC32, crc)
}

func TestFormatCRC32(t *testing.T) {
	tests := []struct {
		crc  uint32
		want string
	}{
		{0xDEADBEEF, "0xdeadbeef"},
		{0x0000002A, "0x0000002a"},
		{0, "0x00000000"},
	}

	for _, tt := range tests {
		got := FormatCRC32(tt.crc)
		assert.Equal(t, tt.want, got)
		assert.Len(t, got, 10, "0x prefix plus exactly 8 digits")
	}
}
