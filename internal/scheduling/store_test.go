package scheduling

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const poolFixture = `[
	{"id": 1, "status": "available", "start": "2026-09-02T09:00:00Z", "slot_duration": 30, "provider_id": 1},
	{"id": 2, "status": "available", "start": "2026-09-03T10:00:00Z", "slot_duration": 45, "provider_id": 2},
	{"id": 3, "status": "booked", "start": "2026-08-20T10:00:00Z", "slot_duration": 30, "provider_id": 1, "patient_id": 4}
]`

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "appointments.json"), []byte(poolFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return NewFileStore(dir)
}

func TestFileStoreList(t *testing.T) {
	store := newTestFileStore(t)

	slots, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
}

func TestFileStoreGet(t *testing.T) {
	store := newTestFileStore(t)

	slot, err := store.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if slot.SlotDuration != 45 {
		t.Fatalf("unexpected slot: %+v", slot)
	}

	if _, err := store.Get(context.Background(), 99); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestFileStoreBookPersists(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	slot, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	booked := *slot
	booked.Status = StatusBooked
	booked.PatientID = intPtr(7)
	booked.ReasonForVisit = "chest pain"

	if err := store.Book(ctx, booked); err != nil {
		t.Fatalf("book: %v", err)
	}

	stored, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("re-get: %v", err)
	}
	if stored.Status != StatusBooked || stored.PatientID == nil || *stored.PatientID != 7 {
		t.Fatalf("booking not persisted: %+v", stored)
	}
	if stored.ReasonForVisit != "chest pain" {
		t.Fatalf("reason not persisted: %q", stored.ReasonForVisit)
	}
}

func TestFileStoreBookAlreadyBooked(t *testing.T) {
	store := newTestFileStore(t)

	booked := Slot{ID: 3, Status: StatusBooked, Start: time.Now(), PatientID: intPtr(5)}
	if err := store.Book(context.Background(), booked); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}

	// The losing write must not clobber the original booking.
	stored, err := store.Get(context.Background(), 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.PatientID == nil || *stored.PatientID != 4 {
		t.Fatalf("original booking overwritten: %+v", stored)
	}
}

func TestFileStoreBookUnknownSlot(t *testing.T) {
	store := newTestFileStore(t)

	booked := Slot{ID: 42, Status: StatusBooked, Start: time.Now()}
	if err := store.Book(context.Background(), booked); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestFileStoreConcurrentBookingSingleWinner(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			booked := Slot{ID: 1, Status: StatusBooked, Start: time.Now(), PatientID: intPtr(i + 1)}
			errs[i] = store.Book(ctx, booked)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if !errors.Is(err, ErrInvalidStateTransition) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}
