package drive

import (
	"context"
	"io"
)

// Links are the two addresses under which a stored document can be reached:
// WebURL renders it inline for preview, DownloadURL serves it as an attachment.
type Links struct {
	WebURL      string
	DownloadURL string
}

// Vault provides an interface for document storage backends.
// Keys are slash-separated paths such as "records/<owner>/<category>/<id>/<file>".
type Vault interface {
	// CreateFolder makes sure a folder exists at path. Creating an existing
	// folder is not an error.
	CreateFolder(ctx context.Context, path string) error

	// PutObject stores size bytes read from r under key.
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// DeleteObject removes the object at key. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, key string) error

	// Links returns preview and download addresses for the object at key.
	// fileName is the name offered to the browser on download.
	Links(ctx context.Context, key, fileName string) (Links, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup(ctx context.Context) error
}
