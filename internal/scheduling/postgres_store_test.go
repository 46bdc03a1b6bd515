package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/beamhealth/clinic-triage/internal/triage"
)

var slotRowColumns = []string{
	"id", "status", "start_at", "slot_duration", "provider_id", "patient_id",
	"location", "visit_type", "source", "reason_for_visit", "intake_narrative",
	"clinical_risk", "intake_structured", "prep_summary", "created_at",
}

func availableRow(id int, start time.Time) []any {
	return []any{
		id, "available", start, 30, intPtr(1), (*int)(nil),
		"Main Clinic", "in_person", "seed", "", "",
		[]byte(nil), []byte(nil), []byte(nil), (*time.Time)(nil),
	}
}

func TestPostgresStoreList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStoreWithQuerier(mock)

	start := time.Date(2026, time.September, 2, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(slotRowColumns).
		AddRow(availableRow(1, start)...).
		AddRow(availableRow(2, start.Add(time.Hour))...)
	mock.ExpectQuery("FROM appointments ORDER BY start_at, id").WillReturnRows(rows)

	slots, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(slots) != 2 || slots[0].ID != 1 || slots[0].Status != StatusAvailable {
		t.Fatalf("unexpected slots: %+v", slots)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreGetDecodesStoredRisk(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStoreWithQuerier(mock)

	risk := triage.ClinicalRisk{Score: 82, Level: triage.LevelHigh, Factors: []string{"chest_pain"}, RecommendedUrgency: triage.UrgencyWithin24Hours}
	riskJSON, _ := json.Marshal(risk)
	start := time.Date(2026, time.September, 2, 9, 0, 0, 0, time.UTC)
	row := []any{
		1, "booked", start, 30, intPtr(1), intPtr(7),
		"Main Clinic", "in_person", "seed", "chest pain", "",
		riskJSON, []byte(nil), []byte(nil), (*time.Time)(nil),
	}
	mock.ExpectQuery("FROM appointments WHERE id").WithArgs(1).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).AddRow(row...))

	slot, err := store.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if slot.Status != StatusBooked || slot.ClinicalRisk == nil || slot.ClinicalRisk.Score != 82 {
		t.Fatalf("unexpected slot: %+v", slot)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStoreWithQuerier(mock)
	mock.ExpectQuery("FROM appointments WHERE id").WithArgs(99).
		WillReturnRows(pgxmock.NewRows(slotRowColumns))

	if _, err := store.Get(context.Background(), 99); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func bookedSlot(id int) Slot {
	return Slot{
		ID:             id,
		Status:         StatusBooked,
		Start:          time.Date(2026, time.September, 2, 9, 0, 0, 0, time.UTC),
		SlotDuration:   30,
		PatientID:      intPtr(7),
		ReasonForVisit: "chest pain",
		ClinicalRisk:   &triage.ClinicalRisk{Score: 82, Level: triage.LevelHigh},
	}
}

func TestPostgresStoreBookSucceeds(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStoreWithQuerier(mock)
	mock.ExpectExec("UPDATE appointments").
		WithArgs(1, "booked", intPtr(7), "chest pain", pgxmock.AnyArg(), pgxmock.AnyArg(), "", pgxmock.AnyArg(), "available").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.Book(context.Background(), bookedSlot(1)); err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreBookLosesRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStoreWithQuerier(mock)
	mock.ExpectExec("UPDATE appointments").
		WithArgs(1, "booked", intPtr(7), "chest pain", pgxmock.AnyArg(), pgxmock.AnyArg(), "", pgxmock.AnyArg(), "available").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	if err := store.Book(context.Background(), bookedSlot(1)); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestPostgresStoreBookUnknownSlot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStoreWithQuerier(mock)
	mock.ExpectExec("UPDATE appointments").
		WithArgs(42, "booked", intPtr(7), "chest pain", pgxmock.AnyArg(), pgxmock.AnyArg(), "", pgxmock.AnyArg(), "available").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(42).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	if err := store.Book(context.Background(), bookedSlot(42)); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}
