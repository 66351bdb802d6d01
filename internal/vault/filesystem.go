package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"recdocs/internal/drive"
)

// FileSystemVault is a filesystem-based implementation of the Vault interface.
// Keys map directly onto paths below the root:
//
//	<root>/
//	  records/
//	    <owner>/
//	      <category>/
//	        <document id>/<file name>
type FileSystemVault struct {
	name string
	root string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}

	return &FileSystemVault{
		name: name,
		root: absRoot,
	}, nil
}

// resolve maps a key onto a path below the root. Keys cannot escape it.
func (v *FileSystemVault) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return filepath.Join(v.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// CreateFolder creates the directory for path.
func (v *FileSystemVault) CreateFolder(_ context.Context, folderPath string) error {
	dir, err := v.resolve(folderPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

// PutObject writes an object atomically. The content type is not kept;
// it is derived from the file name when the file is opened.
func (v *FileSystemVault) PutObject(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	destPath, err := v.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	return v.writeFile(destPath, r, size)
}

// DeleteObject removes an object and its now empty document directory.
func (v *FileSystemVault) DeleteObject(_ context.Context, key string) error {
	objPath, err := v.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(objPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	// Only succeeds when empty.
	os.Remove(filepath.Dir(objPath))
	return nil
}

// Links returns file:// URLs for the object. Both point at the same file.
func (v *FileSystemVault) Links(_ context.Context, key, _ string) (drive.Links, error) {
	objPath, err := v.resolve(key)
	if err != nil {
		return drive.Links{}, err
	}
	u := (&url.URL{Scheme: "file", Path: filepath.ToSlash(objPath)}).String()
	return drive.Links{WebURL: u, DownloadURL: u}, nil
}

// ValidateSetup verifies that the vault root is an accessible directory.
func (v *FileSystemVault) ValidateSetup(context.Context) error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}
	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements drive.Vault interface
var _ drive.Vault = (*FileSystemVault)(nil)
