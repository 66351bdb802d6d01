package fs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(name), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("Rel(%s): %v", f, err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestCollector_Collect(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"w2.pdf",
		"paystub.pdf",
		".DS_Store",
		"notes.tmp",
		"scans/bank.pdf",
		"scans/raw/page1.tif",
	)
	if err := os.WriteFile(filepath.Join(root, IgnoreFileName), []byte("*.tmp\nscans/raw\n"), 0644); err != nil {
		t.Fatalf("writing ignore file: %v", err)
	}

	t.Run("directory is expanded one level", func(t *testing.T) {
		files, err := Collector{}.Collect([]string{root})
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		want := []string{"paystub.pdf", "w2.pdf"}
		if got := rel(t, root, files); !reflect.DeepEqual(got, want) {
			t.Errorf("Collect() = %v, want %v", got, want)
		}
	})

	t.Run("recursive skips ignored directories", func(t *testing.T) {
		files, err := Collector{Recursive: true}.Collect([]string{root})
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		want := []string{"paystub.pdf", "scans/bank.pdf", "w2.pdf"}
		if got := rel(t, root, files); !reflect.DeepEqual(got, want) {
			t.Errorf("Collect() = %v, want %v", got, want)
		}
	})

	t.Run("extra patterns", func(t *testing.T) {
		files, err := Collector{Patterns: []string{"w2*"}}.Collect([]string{root})
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		want := []string{"paystub.pdf"}
		if got := rel(t, root, files); !reflect.DeepEqual(got, want) {
			t.Errorf("Collect() = %v, want %v", got, want)
		}
	})

	t.Run("named files keep order and are not filtered", func(t *testing.T) {
		files, err := Collector{}.Collect([]string{
			filepath.Join(root, "w2.pdf"),
			filepath.Join(root, "notes.tmp"),
			filepath.Join(root, "w2.pdf"),
		})
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		want := []string{"w2.pdf", "notes.tmp"}
		if got := rel(t, root, files); !reflect.DeepEqual(got, want) {
			t.Errorf("Collect() = %v, want %v", got, want)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := (Collector{}).Collect([]string{filepath.Join(root, "missing.pdf")}); err == nil {
			t.Fatal("Collect() expected error for missing path")
		}
	})

	t.Run("symlink rejected", func(t *testing.T) {
		link := filepath.Join(t.TempDir(), "link.pdf")
		if err := os.Symlink(filepath.Join(root, "w2.pdf"), link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		if _, err := (Collector{}).Collect([]string{link}); err == nil {
			t.Fatal("Collect() expected error for symlink")
		}
	})
}
