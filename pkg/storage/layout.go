// Package storage decides where downloaded clips land on disk.
//
// The Layout type maps an account and a date to a clip directory under the
// configured base directory, one folder per account per day, so repeated
// runs for different days never mix files. Account folders can be disabled
// to drop everything directly into the base directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout computes clip output directories
type Layout struct {
	BaseDir        string
	AccountFolders bool
}

// NewLayout creates a layout rooted at baseDir
func NewLayout(baseDir string, accountFolders bool) *Layout {
	return &Layout{
		BaseDir:        baseDir,
		AccountFolders: accountFolders,
	}
}

// ClipDir returns the directory downloads for an account on a date belong
// in. It does not touch the filesystem.
func (l *Layout) ClipDir(account, date string) string {
	if !l.AccountFolders {
		return l.BaseDir
	}
	return filepath.Join(l.BaseDir, account, date)
}

// EnsureClipDir creates the clip directory for an account and date,
// including parents, and returns its path.
func (l *Layout) EnsureClipDir(account, date string) (string, error) {
	dir := l.ClipDir(account, date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}
