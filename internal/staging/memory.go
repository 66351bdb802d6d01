package staging

import (
	"fmt"

	"recdocs/internal/docs"
)

// memoryStore keeps the queue and content in memory. Staged files are lost
// when the process exits, which suits the interactive shell and tests.
type memoryStore struct {
	q       *queue
	content map[int64][]byte
}

// NewMemoryStagingArea creates a new in-memory staging area.
func NewMemoryStagingArea() docs.StagingArea {
	return &stagingArea{
		store: &memoryStore{
			q:       &queue{},
			content: make(map[int64][]byte),
		},
	}
}

func (m *memoryStore) LoadQueue() (*queue, error) {
	return m.q.clone(), nil
}

func (m *memoryStore) SaveQueue(q *queue) error {
	m.q = q.clone()
	return nil
}

func (m *memoryStore) StoreContent(index int64, data []byte) error {
	m.content[index] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStore) LoadContent(index int64) ([]byte, error) {
	data, ok := m.content[index]
	if !ok {
		return nil, fmt.Errorf("content not found for index %d", index)
	}
	return data, nil
}

func (m *memoryStore) RemoveContent(index int64) {
	delete(m.content, index)
}
