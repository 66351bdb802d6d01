package docs

import "sync"

// Registry is the list of files already persisted remotely, in arrival order.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	files []UploadedFile
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Seed initialises the registry with files returned by the folder lookup.
// It does nothing when the registry already holds entries.
func (r *Registry) Seed(files []UploadedFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.files) > 0 {
		return
	}
	r.files = append([]UploadedFile(nil), files...)
}

// Merge appends files after the existing entries, preserving their order.
func (r *Registry) Merge(files []UploadedFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, files...)
}

// RemoveByID removes the file with the given id and reports whether it was present.
// Callers must only invoke it after the backend confirmed the delete.
func (r *Registry) RemoveByID(fileID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.files {
		if f.FileID == fileID {
			r.files = append(r.files[:i], r.files[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns the file with the given id.
func (r *Registry) FindByID(fileID string) (UploadedFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.files {
		if f.FileID == fileID {
			return f, true
		}
	}
	return UploadedFile{}, false
}

// List returns a copy of the registered files.
func (r *Registry) List() []UploadedFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]UploadedFile(nil), r.files...)
}

// Len returns the number of registered files.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}
