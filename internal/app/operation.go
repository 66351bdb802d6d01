package app

import (
	"time"

	"recdocs/internal/docs"
)

// Operation tracks one CLI command. Its ID tags every log line the command writes.
type Operation struct {
	ID        string
	Name      string
	Owner     docs.OwnerRef
	StartedAt time.Time
	Status    string // "success" or "error"
}

// NewOperation creates an operation started at now.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:        now.UTC().Format("20060102T150405.000Z"),
		Name:      name,
		StartedAt: now,
		Status:    "success",
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Failed reports whether Fail was called.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
