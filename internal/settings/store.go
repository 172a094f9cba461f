// store.go - Flat JSON key/value store for credentials and preferences

package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store keys.
const (
	KeySimpleTexToken = "simpletex_token"
	KeySiliconFlowKey = "siliconflow_key"
	KeySimpleTexModel = "simpletex_model"
	KeyVoucherModels  = "voucher_models"
)

// Store persists settings as a single config.json under the data directory.
// Values are written through on every set; concurrent commands race as
// last-writer-wins, which is acceptable for a single-user host.
type Store struct {
	path   string
	mu     sync.Mutex
	values map[string]interface{}
}

// NewStore opens the store, default-initializing an empty configuration on
// first run.
func NewStore(dataDir string) (*Store, error) {
	s := &Store{
		path: filepath.Join(dataDir, "config.json"),
		values: map[string]interface{}{
			KeySimpleTexToken: "",
			KeySiliconFlowKey: "",
			KeySimpleTexModel: "",
			KeyVoucherModels:  []interface{}{},
		},
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var stored map[string]interface{}
	if err := json.Unmarshal(data, &stored); err == nil {
		for key, value := range stored {
			s.values[key] = value
		}
	}
	return s, nil
}

// GetString returns the stored string for key, or "" when absent.
func (s *Store) GetString(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, _ := s.values[key].(string)
	return value
}

// SetString stores a string value and writes the file through.
func (s *Store) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flush()
}

// GetStringList returns the stored string list for key, or nil when absent.
func (s *Store) GetStringList(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.values[key].([]interface{})
	if !ok {
		return nil
	}
	list := make([]string, 0, len(raw))
	for _, item := range raw {
		if value, ok := item.(string); ok {
			list = append(list, value)
		}
	}
	return list
}

// SetStringList stores a string list and writes the file through.
func (s *Store) SetStringList(key string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make([]interface{}, len(values))
	for i, value := range values {
		raw[i] = value
	}
	s.values[key] = raw
	return s.flush()
}

// flush writes the whole value map; callers hold the mutex.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// ParseVoucherModels parses the voucher-model textarea: one model id per
// line; blank lines and lines without a "/" (not a model id) are dropped.
func ParseVoucherModels(text string) []string {
	ids := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(line, "/") {
			ids = append(ids, line)
		}
	}
	return ids
}
