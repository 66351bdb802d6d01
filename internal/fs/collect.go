// Package fs turns command-line paths into the list of files to stage.
package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Collector expands paths into regular files. Directories are expanded
// one level deep unless Recursive is set.
type Collector struct {
	Recursive bool
	// Patterns are applied in addition to each directory's ignore file.
	Patterns []string
}

// Collect resolves every path to an absolute regular file. Files named
// directly are never filtered by ignore patterns.
func (c Collector) Collect(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, raw := range paths {
		abs, info, err := resolve(raw)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		found, err := c.findFiles(abs)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

func resolve(rawPath string) (string, fs.FileInfo, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return "", nil, fmt.Errorf("symlinks not supported: %s", absPath)
	case mode&os.ModeDevice != 0:
		return "", nil, fmt.Errorf("device files not supported: %s", absPath)
	case mode&os.ModeNamedPipe != 0:
		return "", nil, fmt.Errorf("named pipes not supported: %s", absPath)
	case mode&os.ModeSocket != 0:
		return "", nil, fmt.Errorf("sockets not supported: %s", absPath)
	}
	return absPath, info, nil
}

func (c Collector) findFiles(dir string) ([]string, error) {
	matcher, err := LoadIgnoreMatcher(dir, c.Patterns)
	if err != nil {
		return nil, err
	}

	var files []string
	if c.Recursive {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			if d.IsDir() {
				if rel != "." && matcher.Skip(rel, true) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && !matcher.Skip(rel, false) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking directory: %w", err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() || matcher.Skip(entry.Name(), false) {
				continue
			}
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
