package drive_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"recdocs/internal/docs"
	"recdocs/internal/drive"
	"recdocs/internal/testutil"
	"recdocs/internal/vault"
)

const owner = docs.OwnerRef("006A000000XyZ")

type fixture struct {
	svc   *drive.Service
	db    drive.Database
	vault *vault.MemoryVault
}

func newFixture(t *testing.T, layout docs.Layout) *fixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	v := testutil.NewTestVault()
	svc := drive.NewService(db, v, layout, docs.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	return &fixture{svc: svc, db: db, vault: v}
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func staged(index int64, name, category, dest, content string) docs.StagedFile {
	return docs.StagedFile{
		Index:               index,
		DisplayName:         name,
		Category:            category,
		DestinationFolderID: dest,
		Content:             encode(content),
	}
}

func TestService_CheckFolder(t *testing.T) {
	t.Run("unknown owner", func(t *testing.T) {
		f := newFixture(t, docs.CategorizedLayout(docs.DefaultCategories))

		lookup, err := f.svc.CheckFolder(context.Background(), owner)
		if err != nil {
			t.Fatalf("CheckFolder() error = %v", err)
		}
		if _, found := lookup.Folder(); found {
			t.Error("CheckFolder() found a folder for unknown owner")
		}
	})

	t.Run("returns folder and documents", func(t *testing.T) {
		f := newFixture(t, docs.CategorizedLayout([]string{"Income", "Assets"}))
		ctx := context.Background()

		created, err := f.svc.CreateFolder(ctx, owner)
		if err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}
		uploaded, err := f.svc.UploadFiles(ctx, []docs.StagedFile{
			staged(0, "w2.txt", "Income", created.SubFolderIDs["Income"], "wages"),
			staged(1, "deed.txt", "Assets", created.SubFolderIDs["Assets"], "house"),
		})
		if err != nil {
			t.Fatalf("UploadFiles() error = %v", err)
		}

		lookup, err := f.svc.CheckFolder(ctx, owner)
		if err != nil {
			t.Fatalf("CheckFolder() error = %v", err)
		}
		folder, found := lookup.Folder()
		if !found {
			t.Fatal("CheckFolder() did not find the created folder")
		}
		if folder.FolderID != created.FolderID {
			t.Errorf("FolderID = %q, want %q", folder.FolderID, created.FolderID)
		}
		if folder.SubFolderIDs["Assets"] != created.SubFolderIDs["Assets"] {
			t.Errorf("SubFolderIDs = %v, want %v", folder.SubFolderIDs, created.SubFolderIDs)
		}

		documents := lookup.Documents()
		if len(documents) != 2 {
			t.Fatalf("len(Documents()) = %d, want 2", len(documents))
		}
		for i, d := range documents {
			if d != uploaded[i] {
				t.Errorf("Documents()[%d] = %+v, want %+v", i, d, uploaded[i])
			}
		}
	})
}

func TestService_CreateFolder(t *testing.T) {
	t.Run("categorized layout", func(t *testing.T) {
		f := newFixture(t, docs.CategorizedLayout([]string{"Income", "Assets"}))

		folder, err := f.svc.CreateFolder(context.Background(), owner)
		if err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}
		if folder.FolderID != "id-1" {
			t.Errorf("FolderID = %q, want id-1", folder.FolderID)
		}
		if len(folder.SubFolderIDs) != 2 || folder.SubFolderIDs["Income"] != "id-2" || folder.SubFolderIDs["Assets"] != "id-3" {
			t.Errorf("SubFolderIDs = %v", folder.SubFolderIDs)
		}
		for _, p := range []string{"records/006A000000XyZ", "records/006A000000XyZ/Income", "records/006A000000XyZ/Assets"} {
			if !f.vault.HasFolder(p) {
				t.Errorf("vault folder %q not created", p)
			}
		}
	})

	t.Run("single layout has no subfolders", func(t *testing.T) {
		f := newFixture(t, docs.SingleFolderLayout())

		folder, err := f.svc.CreateFolder(context.Background(), owner)
		if err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}
		if len(folder.SubFolderIDs) != 0 {
			t.Errorf("SubFolderIDs = %v, want none", folder.SubFolderIDs)
		}
	})

	t.Run("existing folder", func(t *testing.T) {
		f := newFixture(t, docs.SingleFolderLayout())
		ctx := context.Background()

		if _, err := f.svc.CreateFolder(ctx, owner); err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}
		if _, err := f.svc.CreateFolder(ctx, owner); !errors.Is(err, docs.ErrFolderExists) {
			t.Errorf("second CreateFolder() error = %v, want ErrFolderExists", err)
		}
	})

	t.Run("owner with path separators", func(t *testing.T) {
		f := newFixture(t, docs.SingleFolderLayout())

		if _, err := f.svc.CreateFolder(context.Background(), "../etc"); err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}
		if !f.vault.HasFolder("records/.._etc") {
			t.Error("owner segment was not escaped")
		}
	})
}

func TestService_UploadFiles(t *testing.T) {
	t.Run("stores objects and returns links", func(t *testing.T) {
		f := newFixture(t, docs.SingleFolderLayout())
		ctx := context.Background()
		folder, _ := f.svc.CreateFolder(ctx, owner)

		pdf := "%PDF-1.4\n%âãÏÓ\n1 0 obj\n"
		uploaded, err := f.svc.UploadFiles(ctx, []docs.StagedFile{
			staged(0, "statement.pdf", docs.DefaultSingleCategory, folder.FolderID, pdf),
			staged(1, "notes.txt", docs.DefaultSingleCategory, folder.FolderID, "hello"),
		})
		if err != nil {
			t.Fatalf("UploadFiles() error = %v", err)
		}
		if len(uploaded) != 2 {
			t.Fatalf("len(uploaded) = %d, want 2", len(uploaded))
		}

		first := uploaded[0]
		if first.FileID != "id-2" || first.FileName != "statement.pdf" {
			t.Errorf("uploaded[0] = %+v", first)
		}
		key := "records/006A000000XyZ/id-2/statement.pdf"
		if first.WebURL != "memory://test-vault/"+key {
			t.Errorf("WebURL = %q", first.WebURL)
		}
		if !strings.Contains(first.DownloadURL, "download=statement.pdf") {
			t.Errorf("DownloadURL = %q", first.DownloadURL)
		}

		data, contentType, ok := f.vault.Object(key)
		if !ok {
			t.Fatalf("object %q not stored", key)
		}
		if string(data) != pdf {
			t.Errorf("stored content = %q, want %q", data, pdf)
		}
		if contentType != "application/pdf" {
			t.Errorf("content type = %q, want application/pdf", contentType)
		}
		if _, contentType, _ := f.vault.Object("records/006A000000XyZ/id-3/notes.txt"); !strings.HasPrefix(contentType, "text/plain") {
			t.Errorf("notes.txt content type = %q, want text/plain", contentType)
		}
	})

	t.Run("invalid batch writes nothing", func(t *testing.T) {
		tests := []struct {
			name string
			file docs.StagedFile
		}{
			{name: "no category", file: staged(1, "b.txt", "", "id-1", "b")},
			{name: "no destination", file: staged(1, "b.txt", "Income", "", "b")},
			{name: "unknown destination", file: staged(1, "b.txt", "Income", "missing", "b")},
			{name: "bad content", file: docs.StagedFile{Index: 1, DisplayName: "b.txt", Category: "Income", DestinationFolderID: "id-1", Content: "!!"}},
			{name: "bad name", file: staged(1, "/", "Income", "id-1", "b")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, docs.SingleFolderLayout())
				ctx := context.Background()
				folder, _ := f.svc.CreateFolder(ctx, owner)

				_, err := f.svc.UploadFiles(ctx, []docs.StagedFile{
					staged(0, "a.txt", "Income", folder.FolderID, "a"),
					tt.file,
				})
				if !errors.Is(err, drive.ErrInvalidBatch) {
					t.Fatalf("UploadFiles() error = %v, want ErrInvalidBatch", err)
				}
				if n := f.vault.ObjectCount(); n != 0 {
					t.Errorf("ObjectCount() = %d, want 0", n)
				}
			})
		}
	})

	t.Run("database failure removes written objects", func(t *testing.T) {
		db := &failingDatabase{Database: testutil.NewTestDatabase(t), err: errors.New("disk full")}
		v := testutil.NewTestVault()
		svc := drive.NewService(db, v, docs.SingleFolderLayout(), docs.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
		ctx := context.Background()
		folder, err := svc.CreateFolder(ctx, owner)
		if err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}

		_, err = svc.UploadFiles(ctx, []docs.StagedFile{
			staged(0, "a.txt", "Documents", folder.FolderID, "a"),
			staged(1, "b.txt", "Documents", folder.FolderID, "b"),
		})
		if err == nil {
			t.Fatal("UploadFiles() expected error")
		}
		if n := v.ObjectCount(); n != 0 {
			t.Errorf("ObjectCount() = %d, want 0", n)
		}
	})

	t.Run("link failure persists nothing", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		v := &linklessVault{MemoryVault: testutil.NewTestVault(), err: errors.New("presign failed")}
		svc := drive.NewService(db, v, docs.SingleFolderLayout(), docs.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
		ctx := context.Background()
		folder, err := svc.CreateFolder(ctx, owner)
		if err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}

		_, err = svc.UploadFiles(ctx, []docs.StagedFile{
			staged(0, "a.txt", "Documents", folder.FolderID, "a"),
		})
		if !errors.Is(err, v.err) {
			t.Fatalf("UploadFiles() error = %v, want %v", err, v.err)
		}
		if n := v.ObjectCount(); n != 0 {
			t.Errorf("ObjectCount() = %d, want 0", n)
		}
		documents, err := db.FindDocumentsInFolders(ctx, []string{folder.FolderID})
		if err != nil {
			t.Fatalf("FindDocumentsInFolders() error = %v", err)
		}
		if len(documents) != 0 {
			t.Errorf("%d documents recorded after failed upload, want 0", len(documents))
		}
	})
}

func TestService_DeleteFile(t *testing.T) {
	f := newFixture(t, docs.SingleFolderLayout())
	ctx := context.Background()
	folder, _ := f.svc.CreateFolder(ctx, owner)
	uploaded, err := f.svc.UploadFiles(ctx, []docs.StagedFile{
		staged(0, "a.txt", "Documents", folder.FolderID, "a"),
	})
	if err != nil {
		t.Fatalf("UploadFiles() error = %v", err)
	}

	deleted, err := f.svc.DeleteFile(ctx, uploaded[0].FileID)
	if err != nil || !deleted {
		t.Fatalf("DeleteFile() = %v, %v; want true, nil", deleted, err)
	}
	if n := f.vault.ObjectCount(); n != 0 {
		t.Errorf("ObjectCount() = %d, want 0", n)
	}

	lookup, _ := f.svc.CheckFolder(ctx, owner)
	if len(lookup.Documents()) != 0 {
		t.Errorf("Documents() = %v, want none", lookup.Documents())
	}

	deleted, err = f.svc.DeleteFile(ctx, uploaded[0].FileID)
	if err != nil || deleted {
		t.Errorf("second DeleteFile() = %v, %v; want false, nil", deleted, err)
	}
}

// failingDatabase fails every CreateDocuments call.
type failingDatabase struct {
	drive.Database
	err error
}

func (d *failingDatabase) CreateDocuments(context.Context, []*drive.Document) error {
	return d.err
}

// linklessVault stores objects but cannot produce links for them.
type linklessVault struct {
	*vault.MemoryVault
	err error
}

func (v *linklessVault) Links(context.Context, string, string) (drive.Links, error) {
	return drive.Links{}, v.err
}
