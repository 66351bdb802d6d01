package testutil

import (
	"context"
	"fmt"
	"sync"

	"recdocs/internal/docs"
)

// FakeBackend is a scripted docs.Backend. Results are configured through
// the exported fields before use; calls are counted and recorded.
//
// Setting UploadGate (or DeleteGate) makes the matching call signal on
// UploadEntered (DeleteEntered) and then block until the gate is closed or
// the context is done.
type FakeBackend struct {
	mu sync.Mutex

	Lookup   docs.FolderLookup
	CheckErr error

	Created   docs.FolderContext
	CreateErr error

	// UploadResult overrides the default result of one UploadedFile per staged file.
	UploadResult []docs.UploadedFile
	UploadErr    error

	DeleteResult bool
	DeleteErr    error

	UploadGate    chan struct{}
	UploadEntered chan struct{}
	DeleteGate    chan struct{}
	DeleteEntered chan struct{}

	checkCalls  int
	createCalls int
	uploads     [][]docs.StagedFile
	deletes     []string
}

var _ docs.Backend = (*FakeBackend)(nil)

// NewFakeBackend returns a backend that knows no folder and confirms deletes.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Lookup:       docs.FolderNotFound(),
		Created:      TestFolder(),
		DeleteResult: true,
	}
}

// TestFolder returns a folder context with a subfolder per default category.
func TestFolder() docs.FolderContext {
	subs := make(map[string]string, len(docs.DefaultCategories))
	for i, c := range docs.DefaultCategories {
		subs[c] = fmt.Sprintf("sub-%d", i+1)
	}
	return docs.FolderContext{FolderID: "root-1", SubFolderIDs: subs}
}

// GateUploads makes UploadFiles block until the returned release func is called.
func (b *FakeBackend) GateUploads() (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.UploadGate = make(chan struct{})
	b.UploadEntered = make(chan struct{}, 8)
	gate := b.UploadGate
	return func() { close(gate) }
}

// GateDeletes makes DeleteFile block until the returned release func is called.
func (b *FakeBackend) GateDeletes() (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DeleteGate = make(chan struct{})
	b.DeleteEntered = make(chan struct{}, 8)
	gate := b.DeleteGate
	return func() { close(gate) }
}

func (b *FakeBackend) CheckFolder(context.Context, docs.OwnerRef) (docs.FolderLookup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkCalls++
	return b.Lookup, b.CheckErr
}

func (b *FakeBackend) CreateFolder(context.Context, docs.OwnerRef) (docs.FolderContext, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createCalls++
	if b.CreateErr != nil {
		return docs.FolderContext{}, b.CreateErr
	}
	return b.Created, nil
}

func (b *FakeBackend) UploadFiles(ctx context.Context, batch []docs.StagedFile) ([]docs.UploadedFile, error) {
	b.mu.Lock()
	b.uploads = append(b.uploads, append([]docs.StagedFile(nil), batch...))
	gate, entered := b.UploadGate, b.UploadEntered
	b.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.UploadErr != nil {
		return nil, b.UploadErr
	}
	if b.UploadResult != nil {
		return append([]docs.UploadedFile(nil), b.UploadResult...), nil
	}
	out := make([]docs.UploadedFile, len(batch))
	for i, f := range batch {
		out[i] = UploadedFor(f)
	}
	return out, nil
}

func (b *FakeBackend) DeleteFile(ctx context.Context, fileID string) (bool, error) {
	b.mu.Lock()
	b.deletes = append(b.deletes, fileID)
	gate, entered := b.DeleteGate, b.DeleteEntered
	b.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.DeleteResult, b.DeleteErr
}

// UploadedFor returns the UploadedFile the fake backend produces for f.
func UploadedFor(f docs.StagedFile) docs.UploadedFile {
	id := fmt.Sprintf("file-%d", f.Index)
	return docs.UploadedFile{
		FileID:      id,
		FileName:    f.DisplayName,
		WebURL:      "https://drive.example/view/" + id,
		DownloadURL: "https://drive.example/download/" + id,
	}
}

// CheckCalls returns how many times CheckFolder was called.
func (b *FakeBackend) CheckCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checkCalls
}

// CreateCalls returns how many times CreateFolder was called.
func (b *FakeBackend) CreateCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createCalls
}

// Uploads returns every batch passed to UploadFiles.
func (b *FakeBackend) Uploads() [][]docs.StagedFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]docs.StagedFile(nil), b.uploads...)
}

// Deletes returns every file id passed to DeleteFile.
func (b *FakeBackend) Deletes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.deletes...)
}

// SetLookup changes the CheckFolder result.
func (b *FakeBackend) SetLookup(lookup docs.FolderLookup, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Lookup, b.CheckErr = lookup, err
}

// SetUploadErr changes the UploadFiles error.
func (b *FakeBackend) SetUploadErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.UploadErr = err
}

// SetDelete changes the DeleteFile result.
func (b *FakeBackend) SetDelete(ok bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DeleteResult, b.DeleteErr = ok, err
}
