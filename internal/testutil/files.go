package testutil

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"recdocs/internal/docs"
)

// MemoryFile is an in-memory docs.FileSource. A file with Gate set blocks in
// Open until the gate is closed, letting tests control when a read finishes.
type MemoryFile struct {
	FileName string
	Data     []byte
	Err      error
	Gate     chan struct{}

	mu     sync.Mutex
	opened int
}

var _ docs.FileSource = (*MemoryFile)(nil)

// NewMemoryFile creates a file source with the given name and content.
func NewMemoryFile(name, content string) *MemoryFile {
	return &MemoryFile{FileName: name, Data: []byte(content)}
}

// NewFailingFile creates a file source whose Open fails.
func NewFailingFile(name string) *MemoryFile {
	return &MemoryFile{FileName: name, Err: errors.New("permission denied")}
}

// NewGatedFile creates a file source whose Open blocks until Release is called.
func NewGatedFile(name, content string) *MemoryFile {
	return &MemoryFile{FileName: name, Data: []byte(content), Gate: make(chan struct{})}
}

func (f *MemoryFile) Name() string { return f.FileName }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	if f.Gate != nil {
		<-f.Gate
	}
	f.mu.Lock()
	f.opened++
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return io.NopCloser(bytes.NewReader(f.Data)), nil
}

// Release unblocks a gated file.
func (f *MemoryFile) Release() {
	close(f.Gate)
}

// Opened returns how many times the file was opened.
func (f *MemoryFile) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

// Sources converts files to the slice type SelectFiles takes.
func Sources(files ...*MemoryFile) []docs.FileSource {
	out := make([]docs.FileSource, len(files))
	for i, f := range files {
		out[i] = f
	}
	return out
}
