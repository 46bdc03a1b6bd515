package scheduling

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/beamhealth/clinic-triage/internal/storage/jsonfile"
)

// SlotStore persists the appointment pool. Book is the single write path and
// must be a compare-and-swap: it commits the updated slot only if the stored
// slot is still available, so two concurrent bookings of the same slot cannot
// both succeed.
type SlotStore interface {
	List(ctx context.Context) ([]Slot, error)
	Get(ctx context.Context, id int) (*Slot, error)
	// Book replaces the stored slot with the booked version. It returns
	// ErrSlotNotFound if the id does not resolve and
	// ErrInvalidStateTransition if the stored slot is no longer available.
	Book(ctx context.Context, booked Slot) error
}

// FileStore keeps the pool in a JSON collection on disk, overwriting the
// whole collection on save. A mutex makes read-check-write a critical
// section within this process; multi-process deployments need the Postgres
// store instead.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store reading <dataDir>/appointments.json.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{path: filepath.Join(dataDir, "appointments.json")}
}

// List returns every slot in the collection.
func (s *FileStore) List(_ context.Context) ([]Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return jsonfile.Load[Slot](s.path)
}

// Get returns the slot with the given id, or ErrSlotNotFound.
func (s *FileStore) Get(_ context.Context, id int) (*Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := jsonfile.Load[Slot](s.path)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].ID == id {
			return &slots[i], nil
		}
	}
	return nil, ErrSlotNotFound
}

// Book re-reads the collection under the lock, verifies the stored slot is
// still available, and writes the whole collection back.
func (s *FileStore) Book(_ context.Context, booked Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := jsonfile.Load[Slot](s.path)
	if err != nil {
		return err
	}
	idx := -1
	for i := range slots {
		if slots[i].ID == booked.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrSlotNotFound
	}
	if slots[idx].Status != StatusAvailable {
		return ErrInvalidStateTransition
	}
	slots[idx] = booked
	return jsonfile.Save(s.path, slots)
}
