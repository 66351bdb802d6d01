package app

import (
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2026, 2, 2, 9, 0, 0, 123_000_000, time.UTC)
	op := NewOperation("Attach", now)

	if op.ID != "20260202T090000.123Z" {
		t.Errorf("ID = %q, want %q", op.ID, "20260202T090000.123Z")
	}
	if op.Name != "Attach" {
		t.Errorf("Name = %q, want %q", op.Name, "Attach")
	}
	if op.Status != "success" || op.Failed() {
		t.Errorf("Status = %q, want success", op.Status)
	}

	op.Fail()
	if !op.Failed() {
		t.Error("Failed() = false after Fail()")
	}
}
