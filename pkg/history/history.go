package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"clipfetch/internal/datadir"
	"clipfetch/pkg/logger"
)

// DefaultLimit caps how many accounts the history file keeps
const DefaultLimit = 50

// Store persists the names of accounts that were queried successfully,
// most recent first. It is safe for concurrent use.
type Store struct {
	path   string
	limit  int
	logger logger.Logger

	mu      sync.Mutex
	entries []string
}

// NewStore opens the history store at path, creating an empty one when the
// file is missing or unreadable. An empty path resolves to history.json in
// the per-OS data directory; a limit of zero or less falls back to
// DefaultLimit.
func NewStore(path string, limit int) (*Store, error) {
	if path == "" {
		dataDir, err := datadir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		path = filepath.Join(dataDir, "history.json")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	s := &Store{
		path:   path,
		limit:  limit,
		logger: logger.GetLogger(),
	}
	s.entries = s.load()

	return s, nil
}

// load reads the history file. Missing, empty or corrupt files start the
// history fresh rather than failing a run over a convenience feature.
func (s *Store) load() []string {
	data, err := os.ReadFile(s.path)
	if err != nil || len(data) == 0 {
		return nil
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("History file unreadable, starting fresh")
		return nil
	}

	seen := make(map[string]struct{})
	var entries []string
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, name)
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	return entries
}

// Record moves name to the front of the history, replacing any previous
// entry for the same account regardless of casing, and persists the list.
func (s *Store) Record(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	entries := make([]string, 0, len(s.entries)+1)
	entries = append(entries, name)
	for _, existing := range s.entries {
		if strings.ToLower(existing) != key {
			entries = append(entries, existing)
		}
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	s.entries = entries

	if err := s.save(); err != nil {
		return err
	}

	s.logger.DebugWithFields("Account recorded in history", map[string]interface{}{
		"account": name,
		"size":    len(s.entries),
	})
	return nil
}

// Recent returns up to n of the most recently recorded accounts
func (s *Store) Recent(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]string, n)
	copy(out, s.entries[:n])
	return out
}

// All returns every recorded account, most recent first
func (s *Store) All() []string {
	return s.Recent(0)
}

// Clear empties the history and persists the empty list
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return s.save()
}

// save writes the history atomically: temp file, sync, rename.
func (s *Store) save() error {
	entries := s.entries
	if entries == nil {
		entries = []string{}
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary history file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync history file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close history file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}

	return nil
}
