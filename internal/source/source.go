// Package source retrieves candidate file content for the lint engine.
//
// Two origins are supported: the working tree (plain filesystem reads) and
// the source control index (the staged blob for a path, read via go-git).
// The engine treats the returned bytes as opaque; it never interprets them
// beyond handing them to checkers.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	git "github.com/go-git/go-git/v5"
)

// Origin selects where file content is read from.
type Origin int

const (
	// WorkingTree reads the file as it currently exists on disk.
	WorkingTree Origin = iota
	// SourceControlIndex reads the staged blob for the path from the
	// repository index, ignoring unstaged working tree edits.
	SourceControlIndex
)

// String returns the string representation of Origin.
func (o Origin) String() string {
	switch o {
	case WorkingTree:
		return "working-tree"
	case SourceControlIndex:
		return "index"
	default:
		return "unknown"
	}
}

// FileRecord is one file's content snapshot for a single checker
// invocation. It is immutable once read.
type FileRecord struct {
	Path    string
	Content []byte
	Origin  Origin
}

// ContentSource retrieves file content for a path from a given origin.
type ContentSource interface {
	ReadContent(path string, origin Origin) ([]byte, error)
}

// TreeSource reads content from a working tree rooted at a directory,
// opening the enclosing git repository lazily when index reads are
// requested. It is safe for concurrent use.
type TreeSource struct {
	root string
	fs   fileReader

	openOnce sync.Once
	repo     *git.Repository
	wtRoot   string
	openErr  error
}

// fileReader isolates the plain filesystem read for testing.
type fileReader func(path string) ([]byte, error)

func defaultReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// NewTreeSource creates a content source rooted at root. Relative paths are
// resolved against root.
func NewTreeSource(root string) *TreeSource {
	return &TreeSource{
		root: root,
		fs:   defaultReadFile,
	}
}

// ReadContent implements ContentSource. WorkingTree reads never touch git;
// SourceControlIndex reads fail if root is not inside a git repository or
// the path has no staged entry.
func (s *TreeSource) ReadContent(path string, origin Origin) ([]byte, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, path)
	}

	switch origin {
	case WorkingTree:
		return s.fs(abs)
	case SourceControlIndex:
		return s.readIndexed(abs)
	default:
		return nil, fmt.Errorf("unknown content origin %d", origin)
	}
}

// readIndexed reads the staged blob for abs from the repository index.
func (s *TreeSource) readIndexed(abs string) ([]byte, error) {
	s.openOnce.Do(s.openRepo)
	if s.openErr != nil {
		return nil, s.openErr
	}

	rel, err := filepath.Rel(s.wtRoot, abs)
	if err != nil {
		return nil, fmt.Errorf("path %s is outside repository %s: %w", abs, s.wtRoot, err)
	}
	rel = filepath.ToSlash(rel)

	idx, err := s.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read repository index: %w", err)
	}
	entry, err := idx.Entry(rel)
	if err != nil {
		return nil, fmt.Errorf("path %s is not staged: %w", rel, err)
	}
	blob, err := s.repo.BlobObject(entry.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load blob for %s: %w", rel, err)
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open blob for %s: %w", rel, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *TreeSource) openRepo() {
	repo, err := git.PlainOpenWithOptions(s.root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		s.openErr = fmt.Errorf("failed to open repository at %s: %w", s.root, err)
		return
	}
	wt, err := repo.Worktree()
	if err != nil {
		s.openErr = fmt.Errorf("failed to resolve worktree: %w", err)
		return
	}
	s.repo = repo
	s.wtRoot = wt.Filesystem.Root()
}
