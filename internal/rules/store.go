// Package rules persists automation rules on disk. Rules are a client-side
// feature: they never leave the machine and survive restarts in the state dir.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lichen129/iotdeck/pkg/domain"
)

// Store reads and writes the rule list as a JSON file.
type Store struct {
	path string
}

// NewStore creates a rule store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted rules. A missing file yields an empty list.
func (s *Store) Load() ([]domain.Rule, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var rules []domain.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return rules, nil
}

// Save replaces the persisted rule list.
func (s *Store) Save(rules []domain.Rule) error {
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}
