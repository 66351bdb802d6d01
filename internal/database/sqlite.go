package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"recdocs/internal/database/migrations"
	"recdocs/internal/drive"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the drive.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the database at path and applies pending migrations.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer, and each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

const folderColumns = "id, parent_id, owner_ref, category, path, created_at"

const documentColumns = "id, folder_id, file_name, object_key, content_type, size, checksum, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*drive.Folder, error) {
	var (
		f        drive.Folder
		parentID sql.NullString
		category sql.NullString
	)
	if err := row.Scan(&f.ID, &parentID, &f.OwnerRef, &category, &f.Path, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.ParentID = parentID.String
	f.Category = category.String
	return &f, nil
}

func scanDocument(row rowScanner) (*drive.Document, error) {
	var d drive.Document
	if err := row.Scan(&d.ID, &d.FolderID, &d.FileName, &d.ObjectKey, &d.ContentType, &d.Size, &d.Checksum, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Folder operations

func (s *SQLiteDatabase) FindRootFolder(ctx context.Context, ownerRef string) (*drive.Folder, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE owner_ref = ? AND parent_id IS NULL", ownerRef)
	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding root folder: %w", err)
	}
	return f, nil
}

func (s *SQLiteDatabase) FindFolderByID(ctx context.Context, id string) (*drive.Folder, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+folderColumns+" FROM folders WHERE id = ?", id)
	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding folder by id: %w", err)
	}
	return f, nil
}

func (s *SQLiteDatabase) FindSubFolders(ctx context.Context, parentID string) ([]*drive.Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE parent_id = ? ORDER BY created_at, rowid", parentID)
	if err != nil {
		return nil, fmt.Errorf("finding subfolders: %w", err)
	}
	defer rows.Close()

	var folders []*drive.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (s *SQLiteDatabase) CreateFolderTree(ctx context.Context, root *drive.Folder, subFolders []*drive.Folder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO folders ("+folderColumns+") VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing folder insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range append([]*drive.Folder{root}, subFolders...) {
		if _, err := stmt.ExecContext(ctx, f.ID, nullable(f.ParentID), f.OwnerRef, nullable(f.Category), f.Path, f.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("inserting folder %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Document operations

func (s *SQLiteDatabase) CreateDocuments(ctx context.Context, documents []*drive.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO documents ("+documentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range documents {
		if _, err := stmt.ExecContext(ctx, d.ID, d.FolderID, d.FileName, d.ObjectKey, d.ContentType, d.Size, d.Checksum, d.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("inserting document %s: %w", d.FileName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindDocumentsInFolders(ctx context.Context, folderIDs []string) ([]*drive.Document, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(folderIDs)), ",")
	args := make([]any, len(folderIDs))
	for i, id := range folderIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE folder_id IN ("+placeholders+") ORDER BY created_at, rowid",
		args...)
	if err != nil {
		return nil, fmt.Errorf("finding documents: %w", err)
	}
	defer rows.Close()

	var documents []*drive.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		documents = append(documents, d)
	}
	return documents, rows.Err()
}

func (s *SQLiteDatabase) FindDocumentByID(ctx context.Context, id string) (*drive.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding document by id: %w", err)
	}
	return d, nil
}

func (s *SQLiteDatabase) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// CheckMigrations verifies that the schema is at the latest version.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements drive.Database interface
var _ drive.Database = (*SQLiteDatabase)(nil)
