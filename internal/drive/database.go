package drive

import (
	"context"
	"time"
)

// Folder is a stored folder. A root folder has no ParentID and no Category;
// its category subfolders point back to it.
type Folder struct {
	ID        string
	ParentID  string
	OwnerRef  string
	Category  string
	Path      string
	CreatedAt time.Time
}

// Document is an uploaded file recorded against a folder.
type Document struct {
	ID          string
	FolderID    string
	FileName    string
	ObjectKey   string
	ContentType string
	Size        int64
	Checksum    string
	CreatedAt   time.Time
}

// Database provides an interface for folder and document metadata.
// Lookups return nil without error when nothing matches.
type Database interface {
	// FindRootFolder returns the root folder of an owner.
	FindRootFolder(ctx context.Context, ownerRef string) (*Folder, error)

	// FindFolderByID returns a folder by id.
	FindFolderByID(ctx context.Context, id string) (*Folder, error)

	// FindSubFolders returns the children of a folder, ordered by creation.
	FindSubFolders(ctx context.Context, parentID string) ([]*Folder, error)

	// CreateFolderTree records a root folder and its subfolders in one transaction.
	CreateFolderTree(ctx context.Context, root *Folder, subFolders []*Folder) error

	// CreateDocuments records documents in one transaction: all or none.
	CreateDocuments(ctx context.Context, documents []*Document) error

	// FindDocumentsInFolders returns the documents in any of the folders,
	// oldest first.
	FindDocumentsInFolders(ctx context.Context, folderIDs []string) ([]*Document, error)

	// FindDocumentByID returns a document by id.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// DeleteDocument removes a document record.
	DeleteDocument(ctx context.Context, id string) error

	// Close closes the database connection.
	Close() error
}
