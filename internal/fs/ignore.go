package fs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// IgnoreFileName is read from the root of every directory passed to Collect.
const IgnoreFileName = ".recdocsignore"

// litter never belongs in a record: OS metadata and office lock files.
var litter = []string{
	IgnoreFileName,
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	"~$*",
	".~lock.*#",
}

type ignoreRule struct {
	glob     string
	anchored bool // matched against the path relative to the directory root
	dirOnly  bool
	negate   bool
}

// IgnoreMatcher decides which entries of an expanded directory are skipped.
// Rules are gitignore-like: a rule with a '/' is anchored to the directory
// root, a trailing '/' only matches directories and a leading '!' re-includes
// what an earlier rule skipped. The last matching rule wins.
type IgnoreMatcher struct {
	rules []ignoreRule
}

// LoadIgnoreMatcher builds the matcher for dir from the litter rules, extra,
// and the lines of dir's ignore file, in that order.
func LoadIgnoreMatcher(dir string, extra []string) (*IgnoreMatcher, error) {
	lines, err := readIgnoreFile(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	return newIgnoreMatcher(slices.Concat(litter, extra, lines)), nil
}

func newIgnoreMatcher(lines []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var r ignoreRule
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			r.negate = true
			line = rest
		}
		if strings.HasSuffix(line, "/") {
			r.dirOnly = true
			line = strings.TrimRight(line, "/")
		}
		r.anchored = strings.Contains(line, "/")
		r.glob = strings.TrimPrefix(line, "/")
		if r.glob == "" {
			continue
		}
		if _, err := path.Match(r.glob, ""); err != nil {
			continue
		}
		m.rules = append(m.rules, r)
	}
	return m
}

// Skip reports whether the entry at rel, relative to the directory root,
// is left out of the expansion.
func (m *IgnoreMatcher) Skip(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)

	skip := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		subject := base
		if r.anchored {
			subject = rel
		}
		if ok, _ := path.Match(r.glob, subject); ok {
			skip = !r.negate
		}
	}
	return skip
}

func readIgnoreFile(p string) ([]string, error) {
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
