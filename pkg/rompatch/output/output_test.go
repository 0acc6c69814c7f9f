package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *Report {
	return &Report{Files: []FileReport{
		{
			Path:      "/roms/base.sfc",
			Name:      "base.sfc",
			Size:      524288,
			SizeHuman: "512 KiB",
			CRC32:     "0xdeadbeef",
			MD5:       "9e107d9d372bb6826bd81d3542a419d6",
			SHA1:      "2fd4e1c67a2d28fced849ee1bb76e7391b93eb12",
			ZLE:       "4142434445",
		},
		{
			Path:        "/patches/hack.bps",
			Name:        "hack.bps",
			Size:        2048,
			SizeHuman:   "2.0 KiB",
			CRC32:       "0x12345678",
			MD5:         "aaaa",
			SHA1:        "bbbb",
			SourceCRC32: "0xdeadbeef",
			TargetCRC32: "0xcafebabe",
		},
		{
			Path:      "/patches/odd.ips",
			Name:      "odd.ips",
			Size:      16,
			SizeHuman: "16 B",
			CRC32:     "0x00000001",
			MD5:       "cccc",
			SHA1:      "dddd",
			Note:      "no patch metadata available",
		},
	}}
}

func TestRegistry_KnownFormatters(t *testing.T) {
	for _, name := range []string{"pretty", "plain", "json", "yaml"} {
		t.Run(name, func(t *testing.T) {
			formatter, err := Get(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, formatter.Format(&buf, sampleReport()))
			assert.NotEmpty(t, buf.String())
		})
	}
}

func TestRegistry_UnknownFormatter(t *testing.T) {
	_, err := Get("carrier-pigeon")
	require.Error(t, err)
}

func TestRegistry_Available(t *testing.T) {
	names := DefaultRegistry.Available()
	assert.Contains(t, names, "json")
	assert.Contains(t, names, "pretty")
	assert.IsNonDecreasing(t, names)
}

func TestJSONFormatter_ValidAndComplete(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	files := parsed["files"].([]interface{})
	require.Len(t, files, 3)

	patch := files[1].(map[string]interface{})
	assert.Equal(t, "0xdeadbeef", patch["source_crc32"])
	assert.Equal(t, "0xcafebabe", patch["target_crc32"])

	rom := files[0].(map[string]interface{})
	_, hasSource := rom["source_crc32"]
	assert.False(t, hasSource, "non-patch files omit patch metadata")
}

func TestYAMLFormatter_RoundTrips(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	var parsed Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, sampleReport().Files, parsed.Files)
}

func TestPlainFormatter_Content(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "base.sfc")
	assert.Contains(t, out, "CRC32: 0xdeadbeef")
	assert.Contains(t, out, "Source CRC32: 0xdeadbeef")
	assert.Contains(t, out, "Note: no patch metadata available")
	// ZLE line only appears when a slice exists.
	assert.Contains(t, out, "ZLE:   4142434445")
}

func TestPrettyFormatter_Content(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "base.sfc")
	assert.Contains(t, out, "0xdeadbeef")
	assert.Contains(t, out, "no patch metadata available")
}
