// Package output provides formatters for rendering file digest and patch
// metadata reports in various output formats (pretty, plain, json, yaml).
//
// The package uses a registry pattern so formatters can be selected at
// runtime:
//
//	formatter, err := output.Get("pretty")
//	var buf bytes.Buffer
//	err = formatter.Format(&buf, report)
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
)

// FileReport describes one inspected file: its digests plus, for patch
// files, the declared source/target CRC-32 values.
type FileReport struct {
	// Path is the inspected file path.
	Path string `json:"path" yaml:"path"`

	// Name is the base name of the file.
	Name string `json:"name" yaml:"name"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable file size.
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// CRC32 is the file's CRC-32 rendered as 0x + 8 hex digits.
	CRC32 string `json:"crc32" yaml:"crc32"`

	// MD5 is the lowercase hex MD5 digest.
	MD5 string `json:"md5" yaml:"md5"`

	// SHA1 is the lowercase hex SHA-1 digest.
	SHA1 string `json:"sha1" yaml:"sha1"`

	// ZLE is the header-slice rendering, empty for short files.
	ZLE string `json:"zle,omitempty" yaml:"zle,omitempty"`

	// SourceCRC32 is the patch's declared source CRC-32, when present.
	SourceCRC32 string `json:"source_crc32,omitempty" yaml:"source_crc32,omitempty"`

	// TargetCRC32 is the patch's declared target CRC-32, when present.
	TargetCRC32 string `json:"target_crc32,omitempty" yaml:"target_crc32,omitempty"`

	// Note carries diagnostics, e.g. when patch metadata is unavailable.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// IsPatch reports whether the file carried patch trailer metadata.
func (f *FileReport) IsPatch() bool {
	return f.SourceCRC32 != ""
}

// Report is the complete output data for formatting.
type Report struct {
	// Files lists the inspected files in input order.
	Files []FileReport `json:"files" yaml:"files"`
}

// Formatter is the interface that all output formatters implement.
type Formatter interface {
	// Format writes the formatted report to the buffer.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory, replacing any existing one of the
// same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}
