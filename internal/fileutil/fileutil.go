// Package fileutil expands command-line arguments into the candidate file
// list handed to the lint engine.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// defaultSkipDirs are directory names never descended into when a directory
// argument is expanded. Dot-directories are skipped unconditionally.
var defaultSkipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

// ExpandArgs turns a mix of file and directory arguments into a flat list
// of candidate file paths. File arguments pass through untouched, in the
// order given. Directory arguments are walked recursively; files found that
// way are appended in sorted order. Paths are returned relative to the
// current directory when the argument was relative.
func ExpandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		found, err := scanDir(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// scanDir collects every regular file under dir, skipping dot-directories
// and well-known dependency directories.
func scanDir(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", path, err)
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || defaultSkipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	// Sort for deterministic roster input regardless of directory order.
	sort.Strings(files)
	return files, nil
}
