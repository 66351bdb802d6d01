package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"recdocs/internal/docs"
)

// fileSystemStore keeps staged files on disk so they survive between CLI
// invocations.
//
// Directory structure:
//
//	<staging_dir>/
//	  queue.json    (ordered list of staged files + index counter)
//	  files/
//	    <index>     (staged file content, optionally age-encrypted)
type fileSystemStore struct {
	stagingDir string
	filesDir   string
	cipher     contentCipher
}

// NewFileSystemStagingArea creates a staging area persisted under stagingDir.
// When cipher is nil, content is stored in plaintext.
func NewFileSystemStagingArea(stagingDir string, cipher contentCipher) (docs.StagingArea, error) {
	filesDir := filepath.Join(stagingDir, "files")
	if err := os.MkdirAll(filesDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	if cipher == nil {
		cipher = plaintext{}
	}
	return &stagingArea{
		store: &fileSystemStore{
			stagingDir: stagingDir,
			filesDir:   filesDir,
			cipher:     cipher,
		},
	}, nil
}

func (s *fileSystemStore) queuePath() string {
	return filepath.Join(s.stagingDir, "queue.json")
}

func (s *fileSystemStore) contentPath(index int64) string {
	return filepath.Join(s.filesDir, strconv.FormatInt(index, 10))
}

func (s *fileSystemStore) LoadQueue() (*queue, error) {
	data, err := os.ReadFile(s.queuePath())
	if errors.Is(err, os.ErrNotExist) {
		return &queue{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading queue: %w", err)
	}
	var q queue
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decoding queue: %w", err)
	}
	return &q, nil
}

func (s *fileSystemStore) SaveQueue(q *queue) error {
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding queue: %w", err)
	}
	return writeAtomic(s.queuePath(), data)
}

func (s *fileSystemStore) StoreContent(index int64, data []byte) error {
	sealed, err := s.cipher.seal(data)
	if err != nil {
		return fmt.Errorf("encrypting content: %w", err)
	}
	return writeAtomic(s.contentPath(index), sealed)
}

func (s *fileSystemStore) LoadContent(index int64) ([]byte, error) {
	sealed, err := os.ReadFile(s.contentPath(index))
	if err != nil {
		return nil, fmt.Errorf("reading content for index %d: %w", index, err)
	}
	data, err := s.cipher.open(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypting content for index %d: %w", index, err)
	}
	return data, nil
}

func (s *fileSystemStore) RemoveContent(index int64) {
	os.Remove(s.contentPath(index))
}

// writeAtomic writes data to a temp file in the same directory and renames it into place.
func writeAtomic(destPath string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
