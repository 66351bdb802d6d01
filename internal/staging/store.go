package staging

// stagingStore abstracts the storage mechanics for a staging area.
// Implementations persist the queue and the content of each staged file.
// Concurrency is managed by the caller (stagingArea.mu), so stores
// do not need to be safe for concurrent use.
type stagingStore interface {
	// LoadQueue returns a copy of the current queue.
	LoadQueue() (*queue, error)

	// SaveQueue replaces the stored queue.
	SaveQueue(q *queue) error

	// StoreContent stores the raw bytes of the file with the given index.
	StoreContent(index int64, data []byte) error

	// LoadContent returns the raw bytes of the file with the given index.
	LoadContent(index int64) ([]byte, error)

	// RemoveContent removes stored content by index (best-effort).
	RemoveContent(index int64)
}

// queue is the ordered list of staged files plus the index counter.
// NextIndex survives drains so indices are never reused.
type queue struct {
	NextIndex int64    `json:"next_index"`
	Entries   []*entry `json:"entries"`
}

// entry is the metadata of one staged file. Content lives in the store,
// keyed by Index.
type entry struct {
	Index               int64  `json:"index"`
	DisplayName         string `json:"display_name"`
	Category            string `json:"category,omitempty"`
	DestinationFolderID string `json:"destination_folder_id,omitempty"`
	Size                int64  `json:"size"`
	Checksum            string `json:"checksum"`
}

func (q *queue) clone() *queue {
	c := &queue{NextIndex: q.NextIndex, Entries: make([]*entry, len(q.Entries))}
	for i, e := range q.Entries {
		cp := *e
		c.Entries[i] = &cp
	}
	return c
}

// find returns the position of the entry with the given index, or -1.
func (q *queue) find(index int64) int {
	for i, e := range q.Entries {
		if e.Index == index {
			return i
		}
	}
	return -1
}
