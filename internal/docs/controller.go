package docs

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the lifecycle state of a Controller.
type State int

const (
	StateInitializing State = iota
	StateNeedsFolder
	StateIdle
	StateStaging
	StateUploading
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateNeedsFolder:
		return "needs-folder"
	case StateIdle:
		return "idle"
	case StateStaging:
		return "staging"
	case StateUploading:
		return "uploading"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ready reports whether s is one of the sub-states reached once a folder is known.
func (s State) ready() bool {
	return s == StateIdle || s == StateStaging || s == StateUploading
}

// UploadFailurePolicy decides what happens to a batch the backend rejected.
type UploadFailurePolicy int

const (
	// DiscardBatch drops the failed batch; the user must select the files again.
	DiscardBatch UploadFailurePolicy = iota
	// RestoreBatch puts the failed batch back into the staging area.
	RestoreBatch
)

// ParseUploadFailurePolicy maps a configured name to a policy.
func ParseUploadFailurePolicy(name string) (UploadFailurePolicy, error) {
	switch name {
	case "discard", "":
		return DiscardBatch, nil
	case "restore":
		return RestoreBatch, nil
	default:
		return DiscardBatch, fmt.Errorf("unknown upload failure policy: %q", name)
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger failures are reported to.
func WithLogger(l Logger) Option { return func(c *Controller) { c.logger = l } }

// WithNotifier sets the user notification sink.
func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notifier = n } }

// WithComposer sets the compose view used to request more documents.
func WithComposer(cp Composer) Option { return func(c *Controller) { c.composer = cp } }

// WithLayout sets the folder layout. The default is CategorizedLayout(DefaultCategories).
func WithLayout(l Layout) Option { return func(c *Controller) { c.layout = l } }

// WithUploadFailurePolicy sets the upload failure policy. The default is DiscardBatch.
func WithUploadFailurePolicy(p UploadFailurePolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// Controller drives the document workflow of one owning record: folder
// resolution, staging, batch upload and deletion.
//
// Backend calls run without holding the controller lock. The busy flag keeps
// uploads and deletes mutually exclusive for one controller.
type Controller struct {
	owner    OwnerRef
	staging  StagingArea
	backend  Backend
	resolver *FolderResolver
	registry *Registry
	batcher  *UploadBatcher
	layout   Layout
	logger   Logger
	notifier Notifier
	composer Composer
	policy   UploadFailurePolicy

	mu       sync.Mutex
	state    State
	busy     bool
	deleting bool
}

// NewController creates a controller for owner. Call Activate before anything else.
func NewController(owner OwnerRef, backend Backend, staging StagingArea, opts ...Option) *Controller {
	registry := NewRegistry()
	c := &Controller{
		owner:    owner,
		staging:  staging,
		backend:  backend,
		resolver: NewFolderResolver(backend),
		registry: registry,
		batcher:  NewUploadBatcher(backend, registry),
		layout:   CategorizedLayout(DefaultCategories),
		logger:   NewNopLogger(),
		notifier: NopNotifier{},
		state:    StateInitializing,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Owner returns the owning record.
func (c *Controller) Owner() OwnerRef { return c.owner }

// Layout returns the folder layout.
func (c *Controller) Layout() Layout { return c.layout }

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate looks up the owner's folder. Without one the controller waits for
// CreateFolder; otherwise it seeds the registry with the files found.
// A failed lookup also leaves the create-folder action available.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateInitializing {
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.busy = true
	c.mu.Unlock()

	lookup, err := c.resolver.Resolve(ctx, c.owner)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		c.logger.Error("folder lookup failed", "owner", c.owner.String(), "error", err)
		c.setState(StateNeedsFolder)
		return opError(ResolutionFailure, "activate", err)
	}

	if _, found := lookup.Folder(); !found {
		c.setState(StateNeedsFolder)
		return nil
	}

	c.registry.Seed(lookup.Documents())
	c.setState(c.settledState())
	return nil
}

// CreateFolder creates the owner's folder hierarchy. It is only available
// while no folder is known, so the backend is asked at most once per owner
// unless the previous attempt failed.
func (c *Controller) CreateFolder(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateNeedsFolder {
		c.mu.Unlock()
		if _, ok := c.resolver.Folder(); ok {
			return ErrFolderExists
		}
		return ErrInvalidState
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	folder, err := c.resolver.Create(ctx, c.owner)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		c.logger.Error("folder creation failed", "owner", c.owner.String(), "error", err)
		return opError(ResolutionFailure, "create folder", err)
	}

	c.logger.Info("folder created", "owner", c.owner.String(), "folder", folder.FolderID)
	c.setState(c.settledState())
	return nil
}

// SelectFiles stages sources. Indices are assigned immediately in selection
// order; the contents are read concurrently and the files are appended to the
// staging area together, in selection order, once every read finished.
// Files that finish after an attach drained the buffer go to the next batch.
func (c *Controller) SelectFiles(ctx context.Context, sources []FileSource) (*Selection, error) {
	c.mu.Lock()
	if !c.state.ready() {
		c.mu.Unlock()
		return nil, ErrInvalidState
	}
	if len(sources) == 0 {
		c.mu.Unlock()
		sel := newSelection(0, 0)
		sel.finish(nil, nil)
		return sel, nil
	}
	first, err := c.staging.Reserve(len(sources))
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("reserving indices: %w", err)
	}

	sel := newSelection(first, len(sources))
	go c.completeSelection(ctx, sel, sources, first)
	return sel, nil
}

func (c *Controller) completeSelection(ctx context.Context, sel *Selection, sources []FileSource, first int64) {
	results := readSelection(ctx, sources, first)

	c.mu.Lock()
	folder, _ := c.resolver.Folder()
	var (
		files []StagedFile
		errs  []error
	)
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		f := r.file
		if c.layout.Single() {
			f.Category = c.layout.Categories[0]
			f.DestinationFolderID = folder.FolderID
		}
		files = append(files, f)
	}

	if len(files) > 0 {
		if err := c.staging.Add(files); err != nil {
			errs = append(errs, fmt.Errorf("staging files: %w", err))
			files = nil
		} else if c.state == StateIdle {
			c.setState(StateStaging)
		}
	}
	c.mu.Unlock()

	for _, err := range errs {
		c.logger.Error("file selection failed", "owner", c.owner.String(), "error", err)
	}
	for _, f := range files {
		c.logger.Debug("file staged", "index", f.Index, "name", f.DisplayName)
	}
	sel.finish(files, errs)
}

// AssignCategory sets the category of a staged file and copies the matching
// destination folder. A category without a folder leaves the destination unset.
func (c *Controller) AssignCategory(index int64, category string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.ready() {
		return ErrInvalidState
	}

	folder, _ := c.resolver.Folder()
	dest, ok := c.layout.Destination(folder, category)
	if !ok {
		c.logger.Warn("category has no destination folder", "category", category, "index", index)
		dest = ""
	}
	if err := c.staging.AssignCategory(index, category, dest); err != nil {
		return fmt.Errorf("assigning category: %w", err)
	}
	return nil
}

// RemoveStaged discards a staged file. Removing the last one returns to Idle.
func (c *Controller) RemoveStaged(index int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.ready() {
		return ErrInvalidState
	}

	remaining, err := c.staging.Remove(index)
	if err != nil {
		return fmt.Errorf("removing staged file: %w", err)
	}
	if remaining == 0 && c.state == StateStaging {
		c.setState(StateIdle)
	}
	return nil
}

// Attach uploads every staged file as one batch. If any staged file lacks a
// category nothing is sent and a ValidationFailure is returned.
func (c *Controller) Attach(ctx context.Context) ([]UploadedFile, error) {
	c.mu.Lock()
	if !c.state.ready() {
		c.mu.Unlock()
		return nil, ErrInvalidState
	}
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	count, err := c.staging.Count()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("counting staged files: %w", err)
	}
	if count == 0 {
		c.mu.Unlock()
		return nil, ErrNothingStaged
	}
	ok, err := c.staging.AllCategorized()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("checking categories: %w", err)
	}
	if !ok {
		c.mu.Unlock()
		c.notifier.Notify(notifyNoType)
		return nil, opError(ValidationFailure, "attach", ErrUncategorized)
	}

	batch, err := c.staging.Drain()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("draining staging area: %w", err)
	}
	// Only the first upload into an empty list is announced.
	firstUpload := c.registry.Len() == 0
	c.busy = true
	c.setState(StateUploading)
	c.mu.Unlock()

	uploaded, err := c.batcher.Submit(ctx, batch)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.logger.Error("upload failed", "owner", c.owner.String(), "files", len(batch), "error", err)
		if c.policy == RestoreBatch {
			if rerr := c.staging.Restore(batch); rerr != nil {
				c.logger.Error("restoring failed batch", "owner", c.owner.String(), "error", rerr)
				err = errors.Join(err, rerr)
			}
		}
		c.setState(StateStaging)
		c.mu.Unlock()
		return nil, err
	}
	c.setState(c.settledState())
	c.mu.Unlock()

	c.logger.Info("files uploaded", "owner", c.owner.String(), "count", len(uploaded))
	if firstUpload && len(uploaded) > 0 {
		c.notifier.Notify(notifyUploaded)
	}
	return uploaded, nil
}

// Delete removes an uploaded file. The registry only changes after the
// backend confirmed the delete.
func (c *Controller) Delete(ctx context.Context, fileID string) error {
	c.mu.Lock()
	if !c.state.ready() {
		c.mu.Unlock()
		return ErrInvalidState
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if _, ok := c.registry.FindByID(fileID); !ok {
		c.mu.Unlock()
		return ErrFileNotFound
	}
	c.busy = true
	c.deleting = true
	c.mu.Unlock()

	deleted, err := c.backend.DeleteFile(ctx, fileID)

	c.mu.Lock()
	c.busy = false
	c.deleting = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("delete failed", "owner", c.owner.String(), "file", fileID, "error", err)
		return opError(DeleteFailure, "delete", err)
	}
	if !deleted {
		c.mu.Unlock()
		c.logger.Warn("delete rejected", "owner", c.owner.String(), "file", fileID)
		return opError(DeleteFailure, "delete", ErrDeleteRejected)
	}
	c.registry.RemoveByID(fileID)
	c.mu.Unlock()

	c.logger.Info("file deleted", "owner", c.owner.String(), "file", fileID)
	c.notifier.Notify(notifyDeleted)
	return nil
}

// PreviewURL returns the web link of an uploaded file.
func (c *Controller) PreviewURL(fileID string) (string, error) {
	f, ok := c.registry.FindByID(fileID)
	if !ok {
		return "", ErrFileNotFound
	}
	return f.WebURL, nil
}

// DownloadURL returns the download link of an uploaded file.
func (c *Controller) DownloadURL(fileID string) (string, error) {
	f, ok := c.registry.FindByID(fileID)
	if !ok {
		return "", ErrFileNotFound
	}
	return f.DownloadURL, nil
}

// RequestAdditionalDocuments opens the compose view pre-filled for the owner.
func (c *Controller) RequestAdditionalDocuments(ctx context.Context) error {
	if c.composer == nil {
		return fmt.Errorf("no composer configured")
	}
	req := ComposeRequest{
		RecordID: c.owner,
		Subject:  AdditionalDocumentsSubject,
		HTMLBody: AdditionalDocumentsSubject,
	}
	if err := c.composer.Compose(ctx, req); err != nil {
		return fmt.Errorf("composing request: %w", err)
	}
	return nil
}

// View is a snapshot of everything a front end renders.
type View struct {
	Owner      OwnerRef
	State      State
	Busy       bool
	Deleting   bool
	Folder     FolderContext
	Categories []string

	ShowCreateFolder bool
	ShowStaged       bool
	ShowUploaded     bool
	AttachDisabled   bool

	Staged   []StagedFile
	Uploaded []UploadedFile
}

// View returns the current display state.
func (c *Controller) View() (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	staged, err := c.staging.List()
	if err != nil {
		return View{}, fmt.Errorf("listing staged files: %w", err)
	}
	folder, _ := c.resolver.Folder()
	uploaded := c.registry.List()

	return View{
		Owner:            c.owner,
		State:            c.state,
		Busy:             c.busy,
		Deleting:         c.deleting,
		Folder:           folder,
		Categories:       append([]string(nil), c.layout.Categories...),
		ShowCreateFolder: c.state == StateNeedsFolder && !c.busy,
		ShowStaged:       len(staged) > 0,
		ShowUploaded:     len(uploaded) > 0,
		AttachDisabled:   len(staged) == 0 || c.busy,
		Staged:           staged,
		Uploaded:         uploaded,
	}, nil
}

// settledState returns Staging when files wait in the staging area and Idle otherwise.
// Must be called with c.mu held.
func (c *Controller) settledState() State {
	n, err := c.staging.Count()
	if err != nil {
		c.logger.Warn("counting staged files", "error", err)
		return StateIdle
	}
	if n > 0 {
		return StateStaging
	}
	return StateIdle
}

// setState must be called with c.mu held.
func (c *Controller) setState(s State) {
	if c.state != s {
		c.logger.Debug("state changed", "owner", c.owner.String(), "from", c.state.String(), "to", s.String())
	}
	c.state = s
}
