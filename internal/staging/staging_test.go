package staging

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"recdocs/internal/config"
	"recdocs/internal/docs"
)

// helpers

func newTestSA(t *testing.T) *stagingArea {
	t.Helper()
	return NewMemoryStagingArea().(*stagingArea)
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func stageFiles(t *testing.T, sa docs.StagingArea, names ...string) []int64 {
	t.Helper()
	first, err := sa.Reserve(len(names))
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	files := make([]docs.StagedFile, len(names))
	indices := make([]int64, len(names))
	for i, name := range names {
		indices[i] = first + int64(i)
		files[i] = docs.StagedFile{Index: indices[i], DisplayName: name, Content: encode("content of " + name)}
	}
	if err := sa.Add(files); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return indices
}

func names(files []docs.StagedFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.DisplayName
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Tests

func TestStagingArea_Reserve(t *testing.T) {
	t.Run("indices increase monotonically", func(t *testing.T) {
		sa := newTestSA(t)
		first, _ := sa.Reserve(3)
		second, _ := sa.Reserve(2)
		if first != 0 {
			t.Errorf("first Reserve() = %d, want 0", first)
		}
		if second != 3 {
			t.Errorf("second Reserve() = %d, want 3", second)
		}
	})

	t.Run("indices are not reused after drain", func(t *testing.T) {
		sa := newTestSA(t)
		stageFiles(t, sa, "a.pdf", "b.pdf")
		if _, err := sa.Drain(); err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		next, _ := sa.Reserve(1)
		if next != 2 {
			t.Errorf("Reserve() after drain = %d, want 2", next)
		}
	})

	t.Run("rejects negative count", func(t *testing.T) {
		sa := newTestSA(t)
		if _, err := sa.Reserve(-1); err == nil {
			t.Error("Reserve(-1) error = nil, want error")
		}
	})
}

func TestStagingArea_Add(t *testing.T) {
	tests := []struct {
		name    string
		reserve int
		files   []docs.StagedFile
		wantErr bool
	}{
		{
			name:    "adds reserved files",
			reserve: 2,
			files: []docs.StagedFile{
				{Index: 0, DisplayName: "a.pdf", Content: encode("a")},
				{Index: 1, DisplayName: "b.pdf", Content: encode("b")},
			},
		},
		{
			name:    "rejects unreserved index",
			reserve: 1,
			files:   []docs.StagedFile{{Index: 5, DisplayName: "a.pdf", Content: encode("a")}},
			wantErr: true,
		},
		{
			name:    "rejects duplicate index",
			reserve: 1,
			files: []docs.StagedFile{
				{Index: 0, DisplayName: "a.pdf", Content: encode("a")},
				{Index: 0, DisplayName: "b.pdf", Content: encode("b")},
			},
			wantErr: true,
		},
		{
			name:    "rejects invalid base64",
			reserve: 1,
			files:   []docs.StagedFile{{Index: 0, DisplayName: "a.pdf", Content: "!!not base64"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sa := newTestSA(t)
			if _, err := sa.Reserve(tt.reserve); err != nil {
				t.Fatalf("Reserve() error = %v", err)
			}
			err := sa.Add(tt.files)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
			count, _ := sa.Count()
			want := len(tt.files)
			if tt.wantErr {
				want = 0
			}
			if count != want {
				t.Errorf("Count() = %d, want %d", count, want)
			}
		})
	}
}

func TestStagingArea_AssignCategory(t *testing.T) {
	t.Run("sets category and destination", func(t *testing.T) {
		sa := newTestSA(t)
		idx := stageFiles(t, sa, "paystub.pdf")
		if err := sa.AssignCategory(idx[0], "Income", "folder-income"); err != nil {
			t.Fatalf("AssignCategory() error = %v", err)
		}
		files, _ := sa.List()
		if files[0].Category != "Income" || files[0].DestinationFolderID != "folder-income" {
			t.Errorf("List()[0] = %+v, want Income/folder-income", files[0])
		}
	})

	t.Run("unknown index", func(t *testing.T) {
		sa := newTestSA(t)
		err := sa.AssignCategory(42, "Income", "x")
		if !errors.Is(err, docs.ErrNotStaged) {
			t.Errorf("AssignCategory() error = %v, want ErrNotStaged", err)
		}
	})
}

func TestStagingArea_AllCategorized(t *testing.T) {
	sa := newTestSA(t)

	ok, _ := sa.AllCategorized()
	if !ok {
		t.Error("AllCategorized() on empty buffer = false, want true")
	}

	idx := stageFiles(t, sa, "a.pdf", "b.pdf")
	sa.AssignCategory(idx[0], "Income", "f1")

	ok, _ = sa.AllCategorized()
	if ok {
		t.Error("AllCategorized() = true, want false")
	}

	sa.AssignCategory(idx[1], "Assets", "f2")
	ok, _ = sa.AllCategorized()
	if !ok {
		t.Error("AllCategorized() = false, want true")
	}
}

func TestStagingArea_Remove(t *testing.T) {
	sa := newTestSA(t)
	idx := stageFiles(t, sa, "a.pdf", "b.pdf", "c.pdf")

	remaining, err := sa.Remove(idx[1])
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if remaining != 2 {
		t.Errorf("Remove() remaining = %d, want 2", remaining)
	}

	files, _ := sa.List()
	if got, want := names(files), []string{"a.pdf", "c.pdf"}; !equalStrings(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	if _, err := sa.Remove(idx[1]); !errors.Is(err, docs.ErrNotStaged) {
		t.Errorf("second Remove() error = %v, want ErrNotStaged", err)
	}
}

func TestStagingArea_Drain(t *testing.T) {
	t.Run("returns files in order with content and empties buffer", func(t *testing.T) {
		sa := newTestSA(t)
		stageFiles(t, sa, "a.pdf", "b.pdf")

		files, err := sa.Drain()
		if err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		if got, want := names(files), []string{"a.pdf", "b.pdf"}; !equalStrings(got, want) {
			t.Errorf("Drain() = %v, want %v", got, want)
		}
		if files[0].Content != encode("content of a.pdf") {
			t.Errorf("Drain()[0].Content = %q, want encoded content", files[0].Content)
		}

		count, _ := sa.Count()
		if count != 0 {
			t.Errorf("Count() after drain = %d, want 0", count)
		}
	})

	t.Run("files added after drain form the next batch", func(t *testing.T) {
		sa := newTestSA(t)
		stageFiles(t, sa, "a.pdf")
		if _, err := sa.Drain(); err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		stageFiles(t, sa, "late.pdf")

		files, _ := sa.Drain()
		if got, want := names(files), []string{"late.pdf"}; !equalStrings(got, want) {
			t.Errorf("second Drain() = %v, want %v", got, want)
		}
	})

	t.Run("detects corrupted content", func(t *testing.T) {
		sa := newTestSA(t)
		idx := stageFiles(t, sa, "a.pdf")
		sa.store.(*memoryStore).content[idx[0]] = []byte("tampered")

		if _, err := sa.Drain(); err == nil {
			t.Fatal("Drain() error = nil, want checksum error")
		}
		count, _ := sa.Count()
		if count != 1 {
			t.Errorf("Count() after failed drain = %d, want 1", count)
		}
	})
}

func TestStagingArea_Restore(t *testing.T) {
	sa := newTestSA(t)
	stageFiles(t, sa, "a.pdf", "b.pdf")
	batch, _ := sa.Drain()
	stageFiles(t, sa, "c.pdf")

	if err := sa.Restore(batch); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	files, _ := sa.List()
	if got, want := names(files), []string{"a.pdf", "b.pdf", "c.pdf"}; !equalStrings(got, want) {
		t.Errorf("List() after restore = %v, want %v", got, want)
	}

	drained, err := sa.Drain()
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if drained[0].Content != encode("content of a.pdf") {
		t.Errorf("restored content = %q, want original", drained[0].Content)
	}
}

func TestFileSystemStagingArea(t *testing.T) {
	t.Run("persists across instances", func(t *testing.T) {
		dir := t.TempDir()
		sa, err := NewFileSystemStagingArea(dir, nil)
		if err != nil {
			t.Fatalf("NewFileSystemStagingArea() error = %v", err)
		}
		stageFiles(t, sa, "a.pdf", "b.pdf")

		reopened, err := NewFileSystemStagingArea(dir, nil)
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		files, err := reopened.Drain()
		if err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		if got, want := names(files), []string{"a.pdf", "b.pdf"}; !equalStrings(got, want) {
			t.Errorf("Drain() = %v, want %v", got, want)
		}

		next, _ := reopened.Reserve(1)
		if next != 2 {
			t.Errorf("Reserve() = %d, want 2", next)
		}
	})

	t.Run("encrypts content at rest", func(t *testing.T) {
		dir := t.TempDir()
		cipher, err := loadOrCreateIdentity(filepath.Join(dir, "staging.key"))
		if err != nil {
			t.Fatalf("loadOrCreateIdentity() error = %v", err)
		}
		sa, err := NewFileSystemStagingArea(filepath.Join(dir, "stage"), cipher)
		if err != nil {
			t.Fatalf("NewFileSystemStagingArea() error = %v", err)
		}
		idx := stageFiles(t, sa, "secret.pdf")

		raw, err := os.ReadFile(filepath.Join(dir, "stage", "files", "0"))
		if err != nil {
			t.Fatalf("reading content file: %v", err)
		}
		if string(raw) == "content of secret.pdf" {
			t.Error("content stored in plaintext")
		}

		files, err := sa.Drain()
		if err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		if files[0].Index != idx[0] || files[0].Content != encode("content of secret.pdf") {
			t.Errorf("Drain()[0] = %+v, want decrypted content", files[0])
		}
	})

	t.Run("reuses existing key", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "staging.key")
		first, err := loadOrCreateIdentity(keyPath)
		if err != nil {
			t.Fatalf("create error = %v", err)
		}
		second, err := loadOrCreateIdentity(keyPath)
		if err != nil {
			t.Fatalf("load error = %v", err)
		}
		if first.identity.String() != second.identity.String() {
			t.Error("loaded identity differs from created identity")
		}
	})
}

func TestNewStagingAreaFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StagingConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.StagingConfig{Type: "memory"}},
		{name: "filesystem", cfg: config.StagingConfig{Type: "filesystem", StagingDir: t.TempDir()}},
		{name: "filesystem without dir", cfg: config.StagingConfig{Type: "filesystem"}, wantErr: true},
		{name: "encrypted without key", cfg: config.StagingConfig{Type: "filesystem", StagingDir: t.TempDir(), Encrypt: true}, wantErr: true},
		{name: "unknown", cfg: config.StagingConfig{Type: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStagingAreaFromConfig(tt.cfg, docs.OwnerRef("006XX0000001"))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStagingAreaFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
