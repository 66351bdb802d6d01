package testutil

import (
	"recdocs/internal/docs"
	"recdocs/internal/staging"
)

// NewTestStagingArea creates a new in-memory staging area for testing.
func NewTestStagingArea() docs.StagingArea {
	return staging.NewMemoryStagingArea()
}
