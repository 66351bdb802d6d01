package docs

// FolderContext identifies the remote folder hierarchy of one owning record.
// SubFolderIDs maps a category name to the id of its subfolder; it is empty
// for single-folder layouts.
type FolderContext struct {
	FolderID     string            `json:"folderId"`
	SubFolderIDs map[string]string `json:"subFolderIds,omitempty"`
}

// Populated reports whether the context refers to an existing folder.
func (f FolderContext) Populated() bool {
	return f.FolderID != ""
}

// clone returns a deep copy so callers cannot mutate the resolver's state.
func (f FolderContext) clone() FolderContext {
	c := FolderContext{FolderID: f.FolderID}
	if f.SubFolderIDs != nil {
		c.SubFolderIDs = make(map[string]string, len(f.SubFolderIDs))
		for k, v := range f.SubFolderIDs {
			c.SubFolderIDs[k] = v
		}
	}
	return c
}

// StagedFile is a selected file that has not been uploaded yet.
// Content holds the file bytes as standard base64.
// DestinationFolderID is a copied value, not a reference into FolderContext.
type StagedFile struct {
	Index               int64  `json:"localIndex"`
	DisplayName         string `json:"displayName"`
	Category            string `json:"category,omitempty"`
	DestinationFolderID string `json:"destinationFolderId,omitempty"`
	Content             string `json:"content,omitempty"`
}

// Categorized reports whether a category has been assigned.
func (f StagedFile) Categorized() bool {
	return f.Category != ""
}

// UploadedFile is a file persisted in the remote drive.
type UploadedFile struct {
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName"`
	WebURL      string `json:"webUrl"`
	DownloadURL string `json:"downloadUrl"`
}

// FolderLookup is the result of checking for an existing folder hierarchy.
// Build it with FolderFound or FolderNotFound.
type FolderLookup struct {
	found     bool
	folder    FolderContext
	documents []UploadedFile
}

// FolderFound returns a lookup result for an existing hierarchy together with
// the files previously uploaded under it.
func FolderFound(folder FolderContext, documents []UploadedFile) FolderLookup {
	return FolderLookup{found: true, folder: folder, documents: documents}
}

// FolderNotFound returns a lookup result signalling that the folder must be
// created before anything can be uploaded.
func FolderNotFound() FolderLookup {
	return FolderLookup{}
}

// Folder returns the resolved folder and whether one was found.
func (l FolderLookup) Folder() (FolderContext, bool) {
	return l.folder, l.found
}

// Documents returns the files already uploaded under the folder.
func (l FolderLookup) Documents() []UploadedFile {
	return l.documents
}

// AllCategorized reports whether every file in batch has a category.
func AllCategorized(batch []StagedFile) bool {
	for _, f := range batch {
		if !f.Categorized() {
			return false
		}
	}
	return true
}
