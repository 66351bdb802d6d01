// Package api holds the request and response types shared by the HTTP
// server and its client.
package api

import "recdocs/internal/docs"

// Request DTOs

type CreateFolderRequest struct {
	Owner string `json:"owner" validate:"required"`
}

type UploadRequest struct {
	Files []StagedFile `json:"files" validate:"required,min=1,dive"`
}

// StagedFile is the wire form of docs.StagedFile.
type StagedFile struct {
	Index               int64  `json:"localIndex" validate:"gte=0"`
	DisplayName         string `json:"displayName" validate:"required"`
	Category            string `json:"category" validate:"required"`
	DestinationFolderID string `json:"destinationFolderId" validate:"required"`
	Content             string `json:"content" validate:"omitempty,base64"`
}

// Response DTOs

type FolderLookupResponse struct {
	Found     bool                `json:"found"`
	Folder    *docs.FolderContext `json:"folder,omitempty"`
	Documents []docs.UploadedFile `json:"documents"`
}

type FolderResponse struct {
	Folder docs.FolderContext `json:"folder"`
}

type UploadResponse struct {
	Files []docs.UploadedFile `json:"files"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewFolderLookupResponse converts a lookup result to its wire form.
func NewFolderLookupResponse(lookup docs.FolderLookup) FolderLookupResponse {
	folder, found := lookup.Folder()
	resp := FolderLookupResponse{Found: found, Documents: lookup.Documents()}
	if found {
		resp.Folder = &folder
	}
	if resp.Documents == nil {
		resp.Documents = []docs.UploadedFile{}
	}
	return resp
}

// Lookup converts the response back to a docs.FolderLookup.
func (r FolderLookupResponse) Lookup() docs.FolderLookup {
	if !r.Found || r.Folder == nil {
		return docs.FolderNotFound()
	}
	return docs.FolderFound(*r.Folder, r.Documents)
}

// NewUploadRequest converts a staged batch to its wire form.
func NewUploadRequest(batch []docs.StagedFile) UploadRequest {
	files := make([]StagedFile, len(batch))
	for i, f := range batch {
		files[i] = StagedFile(f)
	}
	return UploadRequest{Files: files}
}

// Batch converts the request back to staged files.
func (r UploadRequest) Batch() []docs.StagedFile {
	batch := make([]docs.StagedFile, len(r.Files))
	for i, f := range r.Files {
		batch[i] = docs.StagedFile(f)
	}
	return batch
}
