package docs

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an upload or delete is already in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrInvalidState is returned when an action is not available in the current state.
	ErrInvalidState = errors.New("action not available in current state")
	// ErrFolderExists is returned when a folder has already been resolved or created.
	ErrFolderExists = errors.New("folder already exists")
	// ErrNotStaged is returned when no staged file has the given index.
	ErrNotStaged = errors.New("file is not staged")
	// ErrFileNotFound is returned when no uploaded file has the given id.
	ErrFileNotFound = errors.New("uploaded file not found")
	// ErrNothingStaged is returned when attach is requested with an empty buffer.
	ErrNothingStaged = errors.New("no files staged")
	// ErrUncategorized is returned when a staged file has no category.
	ErrUncategorized = errors.New("assign a category to every file")
	// ErrDeleteRejected is returned when the backend reports a delete as unsuccessful.
	ErrDeleteRejected = errors.New("delete rejected by backend")
)

// ErrorKind classifies workflow failures. None of them are fatal.
type ErrorKind int

const (
	// ResolutionFailure covers folder lookup and creation failures.
	ResolutionFailure ErrorKind = iota + 1
	// ValidationFailure covers attach attempts with uncategorized files.
	ValidationFailure
	// UploadFailure covers a rejected batch upload.
	UploadFailure
	// DeleteFailure covers a rejected or failed delete.
	DeleteFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ResolutionFailure:
		return "resolution failure"
	case ValidationFailure:
		return "validation failure"
	case UploadFailure:
		return "upload failure"
	case DeleteFailure:
		return "delete failure"
	default:
		return "unknown failure"
	}
}

// OpError reports a failed workflow operation.
type OpError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opError(kind ErrorKind, op string, err error) error {
	return &OpError{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err is an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Kind == kind
}
