// Package accounts stores the configured account targets batch runs work
// through: one account name plus its per-run download ceiling, unique by
// lower-cased name and kept sorted. The file format accepts the older
// layout where entries were bare account name strings and migrates them to
// targets with no download limit.
package accounts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"clipfetch/internal/datadir"
	errs "clipfetch/pkg/errors"
	"clipfetch/pkg/logger"
)

// namePattern is the account name shape the clip site accepts
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,25}$`)

// Target is one configured account. MaxDownloads zero means unlimited.
type Target struct {
	Name         string `json:"username"`
	MaxDownloads int    `json:"max_downloads"`
}

// Store persists the account target list as a JSON file. It is safe for
// concurrent use.
type Store struct {
	path   string
	logger logger.Logger

	mu      sync.Mutex
	targets []Target
}

// NewStore opens the account store at path, creating an empty one when the
// file is missing or unreadable. An empty path resolves to accounts.json in
// the per-OS data directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		dataDir, err := datadir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		path = filepath.Join(dataDir, "accounts.json")
	}

	s := &Store{
		path:   path,
		logger: logger.GetLogger(),
	}
	s.targets = s.load()

	return s, nil
}

// load reads the target list, migrating legacy bare-string entries and
// dropping duplicates or malformed items.
func (s *Store) load() []Target {
	data, err := os.ReadFile(s.path)
	if err != nil || len(data) == 0 {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("Account file unreadable, starting fresh")
		return nil
	}

	seen := make(map[string]struct{})
	var targets []Target
	add := func(name string, max int) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			s.logger.WithField("account", name).Warn("Ignoring duplicate account entry")
			return
		}
		if max < 0 {
			max = 0
		}
		seen[name] = struct{}{}
		targets = append(targets, Target{Name: name, MaxDownloads: max})
	}

	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			// Legacy layout: a bare account name.
			add(name, 0)
			continue
		}
		var t Target
		if err := json.Unmarshal(item, &t); err != nil {
			s.logger.WithField("entry", string(item)).Warn("Ignoring malformed account entry")
			continue
		}
		add(t.Name, t.MaxDownloads)
	}

	sortTargets(targets)
	return targets
}

// Add validates and stores a new target. The name is lower-cased; adding a
// name that already exists is an error.
func (s *Store) Add(name string, maxDownloads int) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !namePattern.MatchString(name) {
		return errs.NewInvalidInput(fmt.Sprintf("account name %q must be 3-25 letters, digits or underscores", name))
	}
	if maxDownloads < 0 {
		return errs.NewInvalidInput("max downloads cannot be negative, use 0 for unlimited")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.targets {
		if t.Name == name {
			return fmt.Errorf("account %q is already configured", name)
		}
	}

	s.targets = append(s.targets, Target{Name: name, MaxDownloads: maxDownloads})
	sortTargets(s.targets)

	if err := s.save(); err != nil {
		return err
	}

	s.logger.InfoWithFields("Account added", map[string]interface{}{
		"account":       name,
		"max_downloads": maxDownloads,
	})
	return nil
}

// Remove deletes a target by name, case-insensitively
func (s *Store) Remove(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.targets[:0]
	found := false
	for _, t := range s.targets {
		if t.Name == name {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("account %q is not configured", name)
	}
	s.targets = kept

	return s.save()
}

// List returns the configured targets sorted by name
func (s *Store) List() []Target {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Target, len(s.targets))
	copy(out, s.targets)
	return out
}

func sortTargets(targets []Target) {
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Name < targets[j].Name
	})
}

// save writes the target list atomically: temp file, sync, rename.
func (s *Store) save() error {
	targets := s.targets
	if targets == nil {
		targets = []Target{}
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary account file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(targets); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode account list: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync account file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close account file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace account file: %w", err)
	}

	return nil
}
