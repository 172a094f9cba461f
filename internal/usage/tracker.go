// tracker.go - Per-day free-tier usage counters persisted as a flat JSON file

package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Tracker counts recognition calls per model for the current local day.
// Counters live in a single usage.json; a stored date other than today means
// the counts are stale and read as zero. Reads never rewrite the file, so a
// stale record survives until the next increment resets it.
//
// Last-writer-wins across processes: the host serializes recognition calls,
// so only an in-process mutex is held.
type Tracker struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

type usageFile struct {
	Date   string         `json:"date"`
	Models map[string]int `json:"models"`
}

// NewTracker creates a tracker storing its counters under dataDir.
func NewTracker(dataDir string) *Tracker {
	return &Tracker{
		path: filepath.Join(dataDir, "usage.json"),
		now:  time.Now,
	}
}

// UsageToday returns how many calls the model has consumed today. A record
// from another day reads as zero without being touched.
func (t *Tracker) UsageToday(modelID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := t.load()
	if record.Date != t.today() {
		return 0
	}
	return record.Models[modelID]
}

// Increment adds one call for the model. A record from another day is reset
// to a fresh record for today before counting.
func (t *Tracker) Increment(modelID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := t.load()
	if record.Date != t.today() {
		record = usageFile{Date: t.today(), Models: map[string]int{}}
	}
	if record.Models == nil {
		record.Models = map[string]int{}
	}
	record.Models[modelID]++
	record.Date = t.today()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(t.path, data, 0644)
}

// load reads the counter file; a missing or corrupt file reads as empty.
func (t *Tracker) load() usageFile {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return usageFile{}
	}
	var record usageFile
	if err := json.Unmarshal(data, &record); err != nil {
		return usageFile{}
	}
	return record
}

// today formats the current local date; counters reset at local midnight.
func (t *Tracker) today() string {
	return t.now().Format("2006-01-02")
}
