package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/storage"
)

// Snapshotter is an index that can be written to and restored from a
// snapshot stream.
type Snapshotter interface {
	Revision() uint64
	Persist(w io.Writer) error
	Load(r io.Reader) error
}

// SnapshotJob persists the index whenever it changed since the last save.
type SnapshotJob struct {
	index Snapshotter
	store storage.SnapshotStore

	mu       sync.Mutex
	saved    uint64
	hasSaved bool
}

// NewSnapshotJob creates a new SnapshotJob instance
func NewSnapshotJob(index Snapshotter, store storage.SnapshotStore) *SnapshotJob {
	return &SnapshotJob{index: index, store: store}
}

// Restore loads the stored snapshot into the index. A missing snapshot is
// not an error and returns false.
func (j *SnapshotJob) Restore(ctx context.Context) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rc, err := j.store.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			return false, nil
		}
		return false, err
	}
	defer rc.Close()

	if err := j.index.Load(rc); err != nil {
		return false, fmt.Errorf("failed to load snapshot from %s: %w", j.store.Location(), err)
	}
	j.saved = j.index.Revision()
	j.hasSaved = true
	log.Printf("Restored index snapshot from %s", j.store.Location())
	return true, nil
}

// ProcessJobs implements the JobProcessor interface
func (j *SnapshotJob) ProcessJobs(ctx context.Context) error {
	_, err := j.Save(ctx, false)
	return err
}

// Save writes a snapshot if the index changed since the last save, or
// unconditionally with force. It reports whether a snapshot was written.
func (j *SnapshotJob) Save(ctx context.Context, force bool) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rev := j.index.Revision()
	if !force && j.hasSaved && rev == j.saved {
		return false, nil
	}
	if !force && !j.hasSaved && rev == 0 {
		return false, nil
	}

	var buf bytes.Buffer
	if err := j.index.Persist(&buf); err != nil {
		return false, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	size := buf.Len()
	if err := j.store.Put(ctx, &buf); err != nil {
		return false, err
	}

	j.saved = rev
	j.hasSaved = true
	log.Printf("Saved index snapshot (revision %d, %d bytes) to %s", rev, size, j.store.Location())
	return true, nil
}
