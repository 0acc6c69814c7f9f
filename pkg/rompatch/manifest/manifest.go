// Package manifest records patch runs to the filesystem, one JSON document
// per batch, so users can review what was applied or created and when.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/rompatch/pkg/rompatch/engine"
)

// OperationType represents the type of operation.
type OperationType string

const (
	// OpApply represents an apply-patches run.
	OpApply OperationType = "apply"
	// OpCreate represents a create-patches run.
	OpCreate OperationType = "create"
)

// Entry represents a single recorded batch run.
type Entry struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Operation OperationType    `json:"operation"`
	BasePath  string           `json:"base_path"`
	Outcomes  []engine.Outcome `json:"outcomes"`
	Summary   Totals           `json:"summary"`
}

// Totals aggregates an entry's outcomes.
type Totals struct {
	TotalFiles int `json:"total_files"`
	Succeeded  int `json:"succeeded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Manifest manages run logging to a directory of JSON files.
type Manifest struct {
	dir string
	mu  sync.Mutex
}

// New creates a Manifest rooted at dir. The directory is not created until
// the first run is recorded.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir}, nil
}

// Record persists one batch summary and returns the created entry.
func (m *Manifest) Record(op OperationType, summary *engine.Summary) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	now := time.Now().UTC()
	entry := &Entry{
		ID:        fmt.Sprintf("%s-%s-%s", now.Format("20060102-150405"), op, uuid.NewString()[:8]),
		Timestamp: now,
		Operation: op,
		BasePath:  summary.BasePath,
		Outcomes:  summary.Outcomes,
		Summary:   totalsOf(summary),
	}

	if err := m.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("writing manifest entry: %w", err)
	}
	return entry, nil
}

// totalsOf aggregates a batch summary into entry totals.
func totalsOf(summary *engine.Summary) Totals {
	t := Totals{TotalFiles: len(summary.Outcomes), Succeeded: summary.Succeeded()}
	for _, o := range summary.Outcomes {
		switch {
		case o.Status.Skipped():
			t.Skipped++
		case o.Status == engine.StatusFailed:
			t.Failed++
		}
	}
	return t
}

// writeEntry writes an entry atomically using a temp file and rename.
func (m *Manifest) writeEntry(entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	filePath := filepath.Join(m.dir, entry.ID+".json")
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// List returns entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := m.readEntryFile(f.Name())
		if err != nil {
			continue // unparsable entries are skipped
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves a specific entry by ID.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.readEntryFile(id + ".json")
	if err != nil {
		return nil, fmt.Errorf("entry not found: %s", id)
	}
	return entry, nil
}

// readEntryFile reads and parses one manifest entry.
func (m *Manifest) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("reading entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling entry: %w", err)
	}
	return &entry, nil
}
