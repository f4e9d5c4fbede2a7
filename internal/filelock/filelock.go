// Package filelock provides the run lock that serializes fix-mode
// invocations and the atomic rewrite primitive used when corrected file
// content is written back to the working tree.
package filelock

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock guards a working tree against concurrent runs that may write.
// Only one process may hold it at a time.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// NewRunLock creates a run lock backed by a lock file at path. The parent
// directory is created on Acquire if needed.
func NewRunLock(path string) *RunLock {
	return &RunLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Acquire takes the lock without blocking. If another process holds it,
// an error naming the lock file is returned so the operator can tell which
// tree is contended.
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	if !acquired {
		return fmt.Errorf("another run holds %s; wait for it to finish", l.path)
	}
	return nil
}

// Release releases the lock. Safe to call after a failed Acquire.
func (l *RunLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// Rewrite replaces the file at path with data atomically using a temp file
// and rename in the same directory. A crash mid-write leaves the original
// file intact; readers never observe a partially written file under the
// original name.
//
// The target must already exist: the tool only ever rewrites files it was
// given, never creates new ones. The original file mode (including any
// executable bit) is preserved.
func Rewrite(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("refusing to rewrite directory %s", path)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".relint-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()&fs.ModePerm); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	// Rename is atomic within one filesystem; the temp file was created in
	// the target's directory to guarantee that.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tmp = nil
	return nil
}
