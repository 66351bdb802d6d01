package docs

import (
	"context"
	"fmt"
	"sync"
)

// FolderResolver finds or creates the folder hierarchy of an owner and
// remembers it. Once populated, the folder is never cleared.
type FolderResolver struct {
	backend Backend

	mu     sync.RWMutex
	folder FolderContext
}

// NewFolderResolver creates a resolver backed by backend.
func NewFolderResolver(backend Backend) *FolderResolver {
	return &FolderResolver{backend: backend}
}

// Resolve checks the backend for an existing hierarchy and stores it when found.
func (r *FolderResolver) Resolve(ctx context.Context, owner OwnerRef) (FolderLookup, error) {
	lookup, err := r.backend.CheckFolder(ctx, owner)
	if err != nil {
		return FolderLookup{}, fmt.Errorf("checking folder: %w", err)
	}
	folder, found := lookup.Folder()
	if !found {
		return lookup, nil
	}
	if !folder.Populated() {
		return FolderLookup{}, fmt.Errorf("checking folder: backend returned a folder without id")
	}
	r.mu.Lock()
	r.folder = folder.clone()
	r.mu.Unlock()
	return lookup, nil
}

// Create asks the backend to create the hierarchy. It refuses without
// contacting the backend when a folder is already known. On failure the
// resolver stays unpopulated so the caller may retry.
func (r *FolderResolver) Create(ctx context.Context, owner OwnerRef) (FolderContext, error) {
	if _, ok := r.Folder(); ok {
		return FolderContext{}, ErrFolderExists
	}
	folder, err := r.backend.CreateFolder(ctx, owner)
	if err != nil {
		return FolderContext{}, fmt.Errorf("creating folder: %w", err)
	}
	if !folder.Populated() {
		return FolderContext{}, fmt.Errorf("creating folder: backend returned a folder without id")
	}
	r.mu.Lock()
	r.folder = folder.clone()
	r.mu.Unlock()
	return folder.clone(), nil
}

// Folder returns the resolved folder, if any.
func (r *FolderResolver) Folder() (FolderContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.folder.clone(), r.folder.Populated()
}
