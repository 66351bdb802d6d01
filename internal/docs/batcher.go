package docs

import "context"

// UploadBatcher submits a staged batch to the backend as one call and merges
// the persisted files into the registry.
type UploadBatcher struct {
	backend  Backend
	registry *Registry
}

// NewUploadBatcher creates a batcher that records results in registry.
func NewUploadBatcher(backend Backend, registry *Registry) *UploadBatcher {
	return &UploadBatcher{backend: backend, registry: registry}
}

// Submit uploads batch. An uncategorized entry fails with a ValidationFailure
// before the backend is contacted. The batch is not re-staged on failure;
// that decision belongs to the caller.
func (b *UploadBatcher) Submit(ctx context.Context, batch []StagedFile) ([]UploadedFile, error) {
	if len(batch) == 0 {
		return nil, ErrNothingStaged
	}
	if !AllCategorized(batch) {
		return nil, opError(ValidationFailure, "upload", ErrUncategorized)
	}

	uploaded, err := b.backend.UploadFiles(ctx, batch)
	if err != nil {
		return nil, opError(UploadFailure, "upload", err)
	}
	b.registry.Merge(uploaded)
	return uploaded, nil
}
