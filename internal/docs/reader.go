package docs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds how many selected files are read at once.
const maxConcurrentReads = 8

// FileSource is a file the user selected.
type FileSource interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// PathSource reads a file from the local filesystem.
type PathSource string

func (p PathSource) Name() string { return filepath.Base(string(p)) }

func (p PathSource) Open() (io.ReadCloser, error) { return os.Open(string(p)) }

// readResult is the outcome of reading one selected file.
type readResult struct {
	file StagedFile
	err  error
}

// readSelection reads every source concurrently and returns the results in
// selection order. Index i of the result belongs to sources[i] and carries
// index first+i. A failed read does not cancel the others.
func readSelection(ctx context.Context, sources []FileSource, first int64) []readResult {
	results := make([]readResult, len(sources))

	var g errgroup.Group
	g.SetLimit(maxConcurrentReads)
	for i, src := range sources {
		g.Go(func() error {
			f := StagedFile{Index: first + int64(i), DisplayName: src.Name()}
			content, err := readBase64(ctx, src)
			if err != nil {
				results[i] = readResult{file: f, err: fmt.Errorf("reading %s: %w", src.Name(), err)}
				return nil
			}
			f.Content = content
			results[i] = readResult{file: f}
			return nil
		})
	}
	g.Wait()
	return results
}

func readBase64(ctx context.Context, src FileSource) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rc, err := src.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Selection tracks the content reads of one file-selection action.
type Selection struct {
	indices []int64
	done    chan struct{}

	mu     sync.Mutex
	staged []StagedFile
	err    error
}

func newSelection(first int64, n int) *Selection {
	s := &Selection{indices: make([]int64, n), done: make(chan struct{})}
	for i := range s.indices {
		s.indices[i] = first + int64(i)
	}
	return s
}

// Indices returns the indices assigned to the selected files, in selection order.
func (s *Selection) Indices() []int64 {
	return append([]int64(nil), s.indices...)
}

// Done is closed once every read finished and the files were staged.
func (s *Selection) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the selection is staged or ctx ends. It returns the
// staged files and the joined errors of the reads that failed.
func (s *Selection) Wait(ctx context.Context) ([]StagedFile, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StagedFile(nil), s.staged...), s.err
}

func (s *Selection) finish(staged []StagedFile, errs []error) {
	s.mu.Lock()
	s.staged = staged
	s.err = errors.Join(errs...)
	s.mu.Unlock()
	close(s.done)
}
