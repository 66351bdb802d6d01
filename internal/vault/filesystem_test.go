package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemVault(t *testing.T) {
	t.Run("creates root directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")

		v, err := NewFileSystemVault("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("root directory not created: %v", err)
		}
		if v.name != "test" {
			t.Errorf("name = %q, want %q", v.name, "test")
		}
	})

	t.Run("works with existing directory", func(t *testing.T) {
		if _, err := NewFileSystemVault("test", t.TempDir()); err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
	})
}

func TestFileSystemVault_PutObject(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		data    string
		size    int64
		wantErr bool
	}{
		{
			name: "store object successfully",
			key:  "records/006A/Income/d1/paystub.pdf",
			data: "hello world",
			size: 11,
		},
		{
			name:    "size mismatch",
			key:     "records/006A/Income/d2/short.pdf",
			data:    "hello",
			size:    100,
			wantErr: true,
		},
		{
			name: "empty content",
			key:  "records/006A/Income/d3/empty.txt",
			data: "",
			size: 0,
		},
		{
			name: "key cannot escape root",
			key:  "../../outside.txt",
			data: "x",
			size: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			v, err := NewFileSystemVault("test", root)
			if err != nil {
				t.Fatalf("NewFileSystemVault() error = %v", err)
			}

			err = v.PutObject(context.Background(), tt.key, strings.NewReader(tt.data), tt.size, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("PutObject() error = %v, wantErr %v", err, tt.wantErr)
			}

			objPath, _ := v.resolve(tt.key)
			if !strings.HasPrefix(objPath, v.root) {
				t.Fatalf("resolved path %s outside root %s", objPath, v.root)
			}
			got, readErr := os.ReadFile(objPath)
			if tt.wantErr {
				if readErr == nil {
					t.Error("object written despite error")
				}
				return
			}
			if readErr != nil {
				t.Fatalf("reading object: %v", readErr)
			}
			if string(got) != tt.data {
				t.Errorf("object content = %q, want %q", got, tt.data)
			}
		})
	}
}

func TestFileSystemVault_DeleteObject(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	v, _ := NewFileSystemVault("test", root)

	key := "records/006A/Income/d1/paystub.pdf"
	if err := v.PutObject(ctx, key, strings.NewReader("abc"), 3, ""); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if err := v.DeleteObject(ctx, key); err != nil {
		t.Fatalf("DeleteObject() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "records", "006A", "Income", "d1")); !os.IsNotExist(err) {
		t.Errorf("document directory still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "records", "006A", "Income")); err != nil {
		t.Errorf("category folder removed: %v", err)
	}
	if err := v.DeleteObject(ctx, key); err != nil {
		t.Errorf("DeleteObject() of missing object error = %v, want nil", err)
	}
}

func TestFileSystemVault_CreateFolderAndLinks(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	v, _ := NewFileSystemVault("test", root)

	if err := v.CreateFolder(ctx, "records/006A/Assets"); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "records", "006A", "Assets"))
	if err != nil || !info.IsDir() {
		t.Fatalf("folder not created: %v", err)
	}

	links, err := v.Links(ctx, "records/006A/Assets/d1/bank.pdf", "bank.pdf")
	if err != nil {
		t.Fatalf("Links() error = %v", err)
	}
	if !strings.HasPrefix(links.WebURL, "file://") || !strings.HasSuffix(links.WebURL, "/records/006A/Assets/d1/bank.pdf") {
		t.Errorf("WebURL = %q", links.WebURL)
	}
	if links.DownloadURL != links.WebURL {
		t.Errorf("DownloadURL = %q, want %q", links.DownloadURL, links.WebURL)
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("valid vault", func(t *testing.T) {
		v, _ := NewFileSystemVault("test", t.TempDir())
		if err := v.ValidateSetup(context.Background()); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("root removed", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")
		v, _ := NewFileSystemVault("test", root)
		os.RemoveAll(root)
		if err := v.ValidateSetup(context.Background()); err == nil {
			t.Error("ValidateSetup() expected error when root is missing")
		}
	})
}
