package docs

// StagingArea holds the files selected but not yet uploaded, in selection order.
// Implementations must be safe for concurrent use: file reads complete on
// their own goroutines while the user keeps acting on the buffer.
type StagingArea interface {
	// Reserve allocates n consecutive indices and returns the first.
	// Indices increase monotonically and are never reused, even after Drain.
	Reserve(n int) (int64, error)

	// Add appends files in the given order. Their indices must come from Reserve.
	Add(files []StagedFile) error

	// AssignCategory sets the category and destination of a staged file.
	// An empty destination is stored as unset.
	AssignCategory(index int64, category, destinationFolderID string) error

	// Remove discards a staged file and returns how many remain.
	Remove(index int64) (int, error)

	// AllCategorized reports whether every staged file has a category.
	AllCategorized() (bool, error)

	// Drain returns every staged file, with content, and empties the buffer
	// in one step. Files added afterwards belong to the next batch.
	Drain() ([]StagedFile, error)

	// Restore puts a drained batch back ahead of anything staged since.
	Restore(files []StagedFile) error

	// List returns the staged files without their content.
	List() ([]StagedFile, error)

	// Count returns the number of staged files.
	Count() (int, error)
}
