package vault

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"recdocs/internal/drive"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryVault is an in-memory implementation of the Vault interface.
// It stores all folders and objects in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name    string
	folders map[string]bool
	objects map[string]memoryObject
	mu      sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:    name,
		folders: make(map[string]bool),
		objects: make(map[string]memoryObject),
	}
}

// CreateFolder records a folder path.
func (m *MemoryVault) CreateFolder(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[strings.Trim(path, "/")] = true
	return nil
}

// PutObject stores an object under key.
func (m *MemoryVault) PutObject(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

// DeleteObject removes the object at key.
func (m *MemoryVault) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Links returns memory:// addresses for the object at key.
func (m *MemoryVault) Links(_ context.Context, key, fileName string) (drive.Links, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.objects[key]; !ok {
		return drive.Links{}, fmt.Errorf("object not found: %s", key)
	}
	base := "memory://" + m.name + "/" + key
	return drive.Links{
		WebURL:      base,
		DownloadURL: base + "?download=" + url.QueryEscape(fileName),
	}, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup(context.Context) error {
	return nil
}

// Object returns the content and content type stored under key.
func (m *MemoryVault) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

// HasFolder reports whether a folder was created at path.
func (m *MemoryVault) HasFolder(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.folders[strings.Trim(path, "/")]
}

// ObjectCount returns the number of stored objects.
func (m *MemoryVault) ObjectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Compile-time check that MemoryVault implements drive.Vault interface
var _ drive.Vault = (*MemoryVault)(nil)
