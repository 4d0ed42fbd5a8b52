package accounts

import (
	"os"
	"path/filepath"
	"testing"

	errs "clipfetch/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.json")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return store
}

func TestAddAndList(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add("zeta_channel", 5); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := store.Add("Alpha_Channel", 0); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	got := store.List()
	if len(got) != 2 {
		t.Fatalf("List() returned %d targets, want 2", len(got))
	}
	// Sorted by name, lower-cased on the way in.
	if got[0].Name != "alpha_channel" || got[1].Name != "zeta_channel" {
		t.Errorf("List() order = %q, %q; want alpha_channel, zeta_channel", got[0].Name, got[1].Name)
	}
	if got[1].MaxDownloads != 5 {
		t.Errorf("MaxDownloads = %d, want 5", got[1].MaxDownloads)
	}
}

func TestAddValidation(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name         string
		account      string
		maxDownloads int
	}{
		{"too short", "ab", 0},
		{"too long", "abcdefghijklmnopqrstuvwxyz", 0},
		{"bad characters", "some channel!", 0},
		{"empty", "", 0},
		{"negative limit", "validname", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Add(tt.account, tt.maxDownloads)
			if err == nil {
				t.Fatalf("Add(%q, %d) succeeded, want error", tt.account, tt.maxDownloads)
			}
			if errs.CategoryOf(err) != errs.CategoryInvalidInput {
				t.Errorf("error category = %q, want invalid_input", errs.CategoryOf(err))
			}
		})
	}
}

func TestAddDuplicate(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add("somechannel", 0); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := store.Add("SomeChannel", 3); err == nil {
		t.Error("expected duplicate add to fail regardless of casing")
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	store.Add("somechannel", 0)
	store.Add("otherchannel", 0)

	if err := store.Remove("SomeChannel"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	got := store.List()
	if len(got) != 1 || got[0].Name != "otherchannel" {
		t.Errorf("List() after remove = %v", got)
	}

	if err := store.Remove("somechannel"); err == nil {
		t.Error("expected removing a missing account to fail")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")

	first, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	first.Add("somechannel", 7)

	second, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() reopen error: %v", err)
	}

	got := second.List()
	if len(got) != 1 || got[0].Name != "somechannel" || got[0].MaxDownloads != 7 {
		t.Errorf("reopened store = %v", got)
	}
}

func TestLegacyFormatMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	legacy := `["SomeChannel", "otherchannel", "somechannel", "", 42]`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatalf("failed to write legacy file: %v", err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	got := store.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 migrated targets, got %d: %v", len(got), got)
	}
	for _, target := range got {
		if target.MaxDownloads != 0 {
			t.Errorf("legacy entry %q should migrate with no limit", target.Name)
		}
	}
	if got[0].Name != "otherchannel" || got[1].Name != "somechannel" {
		t.Errorf("migrated targets = %v, want sorted lower-cased names", got)
	}
}

func TestMixedFormatLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	mixed := `[
  "legacyname",
  {"username": "NewStyle", "max_downloads": 4},
  {"username": "negative", "max_downloads": -2}
]`
	if err := os.WriteFile(path, []byte(mixed), 0644); err != nil {
		t.Fatalf("failed to write mixed file: %v", err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	byName := make(map[string]Target)
	for _, target := range store.List() {
		byName[target.Name] = target
	}

	if len(byName) != 3 {
		t.Fatalf("expected 3 targets, got %v", byName)
	}
	if byName["newstyle"].MaxDownloads != 4 {
		t.Errorf("newstyle limit = %d, want 4", byName["newstyle"].MaxDownloads)
	}
	if byName["negative"].MaxDownloads != 0 {
		t.Errorf("negative limit should clamp to 0, got %d", byName["negative"].MaxDownloads)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() must tolerate corruption: %v", err)
	}
	if len(store.List()) != 0 {
		t.Error("corrupt account file must start empty")
	}
}
