package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"greenlaunch/pkg/domain"
)

// LocalStore is the per-user fallback for tools with no backing project.
// One JSON file per (uid, toolKey) under the base directory; writes fully
// replace the prior entry.
type LocalStore struct {
	dir string
	mu  sync.Mutex
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local answer dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local answer dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func (s *LocalStore) path(uid, toolKey string) string {
	if uid == "" {
		uid = "anonymous"
	}
	uid = unsafePathChars.ReplaceAllString(uid, "_")
	toolKey = unsafePathChars.ReplaceAllString(toolKey, "_")
	return filepath.Join(s.dir, uid, toolKey+".json")
}

// Read returns the stored forms map, empty when nothing was saved yet. A
// corrupt file reads as empty rather than failing the caller.
func (s *LocalStore) Read(uid, toolKey string) domain.Forms {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path(uid, toolKey))
	if err != nil {
		return domain.Forms{}
	}
	var forms domain.Forms
	if err := json.Unmarshal(raw, &forms); err != nil || forms == nil {
		return domain.Forms{}
	}
	return forms
}

// Write replaces the entry for (uid, toolKey) with the given forms map.
func (s *LocalStore) Write(uid, toolKey string, forms domain.Forms) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.path(uid, toolKey)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create user answer dir: %w", err)
	}
	raw, err := json.Marshal(forms)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	if err := os.WriteFile(target, raw, 0o644); err != nil {
		return fmt.Errorf("write answers: %w", err)
	}
	return nil
}
