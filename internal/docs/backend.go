package docs

import "context"

// Backend is the remote drive the workflow talks to.
// Every call may fail; none of the failures are retried by the workflow.
type Backend interface {
	// CheckFolder looks up the folder hierarchy of owner. A not-found result
	// means the folder must be created before anything can be uploaded.
	CheckFolder(ctx context.Context, owner OwnerRef) (FolderLookup, error)

	// CreateFolder creates the folder hierarchy of owner.
	// It is not idempotent; callers must invoke it at most once per owner.
	CreateFolder(ctx context.Context, owner OwnerRef) (FolderContext, error)

	// UploadFiles persists a batch of staged files. It is all-or-nothing and
	// returns the uploaded files in batch order.
	UploadFiles(ctx context.Context, files []StagedFile) ([]UploadedFile, error)

	// DeleteFile removes an uploaded file. It returns false when the backend
	// did not delete anything.
	DeleteFile(ctx context.Context, fileID string) (bool, error)
}
