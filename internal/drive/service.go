package drive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"recdocs/internal/docs"
)

// ErrInvalidBatch is returned when an upload batch is rejected before any
// object is written.
var ErrInvalidBatch = errors.New("invalid upload batch")

// rootPrefix is the vault path under which every owner's folder lives.
const rootPrefix = "records"

// Service is the document backend: it keeps one folder tree per owner in a
// Vault and records folders and documents in a Database.
type Service struct {
	database Database
	vault    Vault
	layout   docs.Layout
	logger   docs.Logger
	clock    Clock
	idgen    IDGenerator
}

var _ docs.Backend = (*Service)(nil)

// NewService creates a new Service with the provided dependencies.
// layout decides which subfolders CreateFolder makes.
func NewService(database Database, vault Vault, layout docs.Layout, logger docs.Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		database: database,
		vault:    vault,
		layout:   layout,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// CheckFolder looks up the folder tree of owner together with every document
// stored in it.
func (s *Service) CheckFolder(ctx context.Context, owner docs.OwnerRef) (lookup docs.FolderLookup, err error) {
	defer func() { recordOperation("check_folder", err) }()

	root, err := s.database.FindRootFolder(ctx, owner.String())
	if err != nil {
		return docs.FolderLookup{}, fmt.Errorf("finding root folder: %w", err)
	}
	if root == nil {
		s.logger.Debug("no folder for owner", "owner", owner)
		return docs.FolderNotFound(), nil
	}

	subFolders, err := s.database.FindSubFolders(ctx, root.ID)
	if err != nil {
		return docs.FolderLookup{}, fmt.Errorf("finding subfolders: %w", err)
	}

	folder := docs.FolderContext{FolderID: root.ID, SubFolderIDs: make(map[string]string, len(subFolders))}
	folderIDs := []string{root.ID}
	for _, sub := range subFolders {
		folder.SubFolderIDs[sub.Category] = sub.ID
		folderIDs = append(folderIDs, sub.ID)
	}

	documents, err := s.database.FindDocumentsInFolders(ctx, folderIDs)
	if err != nil {
		return docs.FolderLookup{}, fmt.Errorf("finding documents: %w", err)
	}

	uploaded := make([]docs.UploadedFile, 0, len(documents))
	for _, d := range documents {
		f, err := s.uploadedFile(ctx, d)
		if err != nil {
			return docs.FolderLookup{}, err
		}
		uploaded = append(uploaded, f)
	}

	return docs.FolderFound(folder, uploaded), nil
}

// CreateFolder creates the folder tree of owner: a root folder plus one
// subfolder per category of the layout. It refuses when owner already has one.
func (s *Service) CreateFolder(ctx context.Context, owner docs.OwnerRef) (folder docs.FolderContext, err error) {
	defer func() { recordOperation("create_folder", err) }()

	existing, err := s.database.FindRootFolder(ctx, owner.String())
	if err != nil {
		return docs.FolderContext{}, fmt.Errorf("finding root folder: %w", err)
	}
	if existing != nil {
		return docs.FolderContext{}, fmt.Errorf("owner %s: %w", owner, docs.ErrFolderExists)
	}

	now := s.clock.Now()
	root := &Folder{
		ID:        s.idgen.New(),
		OwnerRef:  owner.String(),
		Path:      path.Join(rootPrefix, escapeSegment(owner.String())),
		CreatedAt: now,
	}
	if err := s.vault.CreateFolder(ctx, root.Path); err != nil {
		return docs.FolderContext{}, fmt.Errorf("creating root folder in vault: %w", err)
	}

	var subFolders []*Folder
	if !s.layout.Single() {
		for _, category := range s.layout.Categories {
			sub := &Folder{
				ID:        s.idgen.New(),
				ParentID:  root.ID,
				OwnerRef:  owner.String(),
				Category:  category,
				Path:      path.Join(root.Path, escapeSegment(category)),
				CreatedAt: now,
			}
			if err := s.vault.CreateFolder(ctx, sub.Path); err != nil {
				return docs.FolderContext{}, fmt.Errorf("creating %s folder in vault: %w", category, err)
			}
			subFolders = append(subFolders, sub)
		}
	}

	if err := s.database.CreateFolderTree(ctx, root, subFolders); err != nil {
		return docs.FolderContext{}, fmt.Errorf("recording folders: %w", err)
	}

	folder = docs.FolderContext{FolderID: root.ID, SubFolderIDs: make(map[string]string, len(subFolders))}
	for _, sub := range subFolders {
		folder.SubFolderIDs[sub.Category] = sub.ID
	}

	s.logger.Info("folder created", "owner", owner, "folder_id", root.ID, "subfolders", len(subFolders))
	return folder, nil
}

// pendingUpload is a validated batch entry ready to be written.
type pendingUpload struct {
	doc  *Document
	data []byte
}

// UploadFiles stores a batch of files. The batch is all-or-nothing: it is
// rejected up front if any entry is invalid, and objects already written are
// removed if a later write, link or the database insert fails.
func (s *Service) UploadFiles(ctx context.Context, batch []docs.StagedFile) (uploaded []docs.UploadedFile, err error) {
	defer func() { recordOperation("upload", err) }()

	pending, err := s.validateBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(pending))
	cleanup := func() {
		for _, key := range written {
			if derr := s.vault.DeleteObject(context.WithoutCancel(ctx), key); derr != nil {
				s.logger.Warn("failed to remove object after aborted upload", "key", key, "error", derr)
			}
		}
	}

	var total int64
	for _, p := range pending {
		if err := s.vault.PutObject(ctx, p.doc.ObjectKey, bytes.NewReader(p.data), p.doc.Size, p.doc.ContentType); err != nil {
			cleanup()
			return nil, fmt.Errorf("writing %q to vault: %w", p.doc.FileName, err)
		}
		written = append(written, p.doc.ObjectKey)
		total += p.doc.Size
	}

	// Nothing may fail once the rows are committed.
	documents := make([]*Document, len(pending))
	uploaded = make([]docs.UploadedFile, 0, len(pending))
	for i, p := range pending {
		documents[i] = p.doc
		f, err := s.uploadedFile(ctx, p.doc)
		if err != nil {
			cleanup()
			return nil, err
		}
		uploaded = append(uploaded, f)
	}
	if err := s.database.CreateDocuments(ctx, documents); err != nil {
		cleanup()
		return nil, fmt.Errorf("recording documents: %w", err)
	}

	uploadedFilesTotal.Add(float64(len(documents)))
	uploadedBytesTotal.Add(float64(total))
	s.logger.Info("files uploaded", "count", len(documents), "bytes", total)
	return uploaded, nil
}

func (s *Service) validateBatch(ctx context.Context, batch []docs.StagedFile) ([]pendingUpload, error) {
	folders := make(map[string]*Folder)
	pending := make([]pendingUpload, 0, len(batch))
	now := s.clock.Now()

	for _, f := range batch {
		if !f.Categorized() || f.DestinationFolderID == "" {
			return nil, fmt.Errorf("%q has no category or destination: %w", f.DisplayName, ErrInvalidBatch)
		}
		name := strings.TrimSpace(path.Base(strings.ReplaceAll(f.DisplayName, "\\", "/")))
		if name == "" || name == "." || name == "/" {
			return nil, fmt.Errorf("%q is not a valid file name: %w", f.DisplayName, ErrInvalidBatch)
		}

		folder, ok := folders[f.DestinationFolderID]
		if !ok {
			var err error
			folder, err = s.database.FindFolderByID(ctx, f.DestinationFolderID)
			if err != nil {
				return nil, fmt.Errorf("finding destination folder: %w", err)
			}
			if folder == nil {
				return nil, fmt.Errorf("destination %s of %q does not exist: %w", f.DestinationFolderID, f.DisplayName, ErrInvalidBatch)
			}
			folders[f.DestinationFolderID] = folder
		}

		data, err := base64.StdEncoding.DecodeString(f.Content)
		if err != nil {
			return nil, fmt.Errorf("content of %q is not valid base64: %w", f.DisplayName, ErrInvalidBatch)
		}

		id := s.idgen.New()
		sum := sha256.Sum256(data)
		pending = append(pending, pendingUpload{
			doc: &Document{
				ID:          id,
				FolderID:    folder.ID,
				FileName:    name,
				ObjectKey:   path.Join(folder.Path, id, escapeSegment(name)),
				ContentType: mimetype.Detect(data).String(),
				Size:        int64(len(data)),
				Checksum:    hex.EncodeToString(sum[:]),
				CreatedAt:   now,
			},
			data: data,
		})
	}
	return pending, nil
}

// DeleteFile removes a document and its stored object. It reports false when
// no document has the given id.
func (s *Service) DeleteFile(ctx context.Context, fileID string) (deleted bool, err error) {
	defer func() { recordOperation("delete", err) }()

	doc, err := s.database.FindDocumentByID(ctx, fileID)
	if err != nil {
		return false, fmt.Errorf("finding document: %w", err)
	}
	if doc == nil {
		s.logger.Warn("delete requested for unknown document", "file_id", fileID)
		return false, nil
	}

	if err := s.vault.DeleteObject(ctx, doc.ObjectKey); err != nil {
		return false, fmt.Errorf("deleting object: %w", err)
	}
	if err := s.database.DeleteDocument(ctx, doc.ID); err != nil {
		return false, fmt.Errorf("deleting document record: %w", err)
	}

	s.logger.Info("file deleted", "file_id", doc.ID, "name", doc.FileName)
	return true, nil
}

// ValidateSetup checks that the vault is reachable.
func (s *Service) ValidateSetup(ctx context.Context) error {
	return s.vault.ValidateSetup(ctx)
}

func (s *Service) uploadedFile(ctx context.Context, d *Document) (docs.UploadedFile, error) {
	links, err := s.vault.Links(ctx, d.ObjectKey, d.FileName)
	if err != nil {
		return docs.UploadedFile{}, fmt.Errorf("building links for %s: %w", d.ID, err)
	}
	return docs.UploadedFile{
		FileID:      d.ID,
		FileName:    d.FileName,
		WebURL:      links.WebURL,
		DownloadURL: links.DownloadURL,
	}, nil
}

// escapeSegment keeps a name usable as a single path segment.
func escapeSegment(s string) string {
	if s == "." || s == ".." {
		return strings.Repeat("_", len(s))
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}
