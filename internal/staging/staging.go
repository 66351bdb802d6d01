package staging

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sync"

	"recdocs/internal/docs"
)

// stagingArea implements docs.StagingArea using a pluggable stagingStore
// for the storage mechanics. All shared algorithm logic lives here.
type stagingArea struct {
	store stagingStore
	mu    sync.Mutex
}

var _ docs.StagingArea = (*stagingArea)(nil)

// Reserve allocates n consecutive indices and returns the first.
func (s *stagingArea) Reserve(n int) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("cannot reserve %d indices", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return 0, err
	}
	first := q.NextIndex
	q.NextIndex += int64(n)
	if err := s.store.SaveQueue(q); err != nil {
		return 0, fmt.Errorf("saving queue: %w", err)
	}
	return first, nil
}

// Add appends files in order. Content is decoded from base64 and stored
// before the queue is updated, so a failed Add leaves the queue unchanged.
func (s *stagingArea) Add(files []docs.StagedFile) error {
	if len(files) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return err
	}

	seen := make(map[int64]bool, len(files))
	for _, f := range files {
		if f.Index < 0 || f.Index >= q.NextIndex {
			return fmt.Errorf("index %d was not reserved", f.Index)
		}
		if seen[f.Index] || q.find(f.Index) >= 0 {
			return fmt.Errorf("index %d is already staged", f.Index)
		}
		seen[f.Index] = true
	}

	entries, err := s.storeAll(files)
	if err != nil {
		return err
	}

	q.Entries = append(q.Entries, entries...)
	if err := s.store.SaveQueue(q); err != nil {
		s.removeAll(entries)
		return fmt.Errorf("saving queue: %w", err)
	}
	return nil
}

// AssignCategory sets the category and destination of a staged file.
func (s *stagingArea) AssignCategory(index int64, category, destinationFolderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return err
	}
	i := q.find(index)
	if i < 0 {
		return fmt.Errorf("assigning category to %d: %w", index, docs.ErrNotStaged)
	}
	q.Entries[i].Category = category
	q.Entries[i].DestinationFolderID = destinationFolderID
	if err := s.store.SaveQueue(q); err != nil {
		return fmt.Errorf("saving queue: %w", err)
	}
	return nil
}

// Remove discards a staged file and returns how many remain.
func (s *stagingArea) Remove(index int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return 0, err
	}
	i := q.find(index)
	if i < 0 {
		return len(q.Entries), fmt.Errorf("removing %d: %w", index, docs.ErrNotStaged)
	}
	q.Entries = append(q.Entries[:i], q.Entries[i+1:]...)
	if err := s.store.SaveQueue(q); err != nil {
		return 0, fmt.Errorf("saving queue: %w", err)
	}
	s.store.RemoveContent(index)
	return len(q.Entries), nil
}

// AllCategorized reports whether every staged file has a category.
// An empty buffer counts as categorized.
func (s *stagingArea) AllCategorized() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return false, err
	}
	for _, e := range q.Entries {
		if e.Category == "" {
			return false, nil
		}
	}
	return true, nil
}

// Drain returns every staged file with its content and empties the queue.
// The queue is only cleared once all content has been loaded and verified.
func (s *stagingArea) Drain() ([]docs.StagedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return nil, err
	}

	files := make([]docs.StagedFile, 0, len(q.Entries))
	for _, e := range q.Entries {
		data, err := s.store.LoadContent(e.Index)
		if err != nil {
			return nil, err
		}
		if sum := checksum(data); sum != e.Checksum {
			return nil, fmt.Errorf("checksum mismatch for index %d: expected %s, got %s", e.Index, e.Checksum, sum)
		}
		f := e.stagedFile()
		f.Content = base64.StdEncoding.EncodeToString(data)
		files = append(files, f)
	}

	drained := q.Entries
	q.Entries = nil
	if err := s.store.SaveQueue(q); err != nil {
		return nil, fmt.Errorf("saving queue: %w", err)
	}
	s.removeAll(drained)
	return files, nil
}

// Restore puts a drained batch back ahead of anything staged since.
func (s *stagingArea) Restore(files []docs.StagedFile) error {
	if len(files) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return err
	}
	for _, f := range files {
		if q.find(f.Index) >= 0 {
			return fmt.Errorf("index %d is already staged", f.Index)
		}
	}

	entries, err := s.storeAll(files)
	if err != nil {
		return err
	}

	q.Entries = append(entries, q.Entries...)
	for _, e := range entries {
		if e.Index >= q.NextIndex {
			q.NextIndex = e.Index + 1
		}
	}
	if err := s.store.SaveQueue(q); err != nil {
		s.removeAll(entries)
		return fmt.Errorf("saving queue: %w", err)
	}
	return nil
}

// List returns the staged files in order, without content.
func (s *stagingArea) List() ([]docs.StagedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return nil, err
	}
	files := make([]docs.StagedFile, len(q.Entries))
	for i, e := range q.Entries {
		files[i] = e.stagedFile()
	}
	return files, nil
}

// Count returns the number of staged files.
func (s *stagingArea) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.store.LoadQueue()
	if err != nil {
		return 0, err
	}
	return len(q.Entries), nil
}

// storeAll decodes and stores the content of each file, returning the queue
// entries. On failure everything stored so far is removed.
func (s *stagingArea) storeAll(files []docs.StagedFile) ([]*entry, error) {
	entries := make([]*entry, 0, len(files))
	for _, f := range files {
		data, err := base64.StdEncoding.DecodeString(f.Content)
		if err != nil {
			s.removeAll(entries)
			return nil, fmt.Errorf("decoding content of %q: %w", f.DisplayName, err)
		}
		if err := s.store.StoreContent(f.Index, data); err != nil {
			s.removeAll(entries)
			return nil, fmt.Errorf("storing content of %q: %w", f.DisplayName, err)
		}
		entries = append(entries, &entry{
			Index:               f.Index,
			DisplayName:         f.DisplayName,
			Category:            f.Category,
			DestinationFolderID: f.DestinationFolderID,
			Size:                int64(len(data)),
			Checksum:            checksum(data),
		})
	}
	return entries, nil
}

func (s *stagingArea) removeAll(entries []*entry) {
	for _, e := range entries {
		s.store.RemoveContent(e.Index)
	}
}

func (e *entry) stagedFile() docs.StagedFile {
	return docs.StagedFile{
		Index:               e.Index,
		DisplayName:         e.DisplayName,
		Category:            e.Category,
		DestinationFolderID: e.DestinationFolderID,
	}
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
