package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beamhealth/clinic-triage/internal/prep"
	"github.com/beamhealth/clinic-triage/internal/triage"
)

// pgxQuerier is the subset of pgxpool.Pool the store uses. Tests inject a
// pgxmock pool.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const slotColumns = `id, status, start_at, slot_duration, provider_id, patient_id,
	COALESCE(location, ''), COALESCE(visit_type, ''), COALESCE(source, ''),
	COALESCE(reason_for_visit, ''), COALESCE(intake_narrative, ''),
	clinical_risk, intake_structured, prep_summary, created_at`

// PostgresStore persists slots in a relational table. Booking is a
// conditional UPDATE on status, so the available -> booked transition is a
// real compare-and-swap and safe under concurrent writers.
type PostgresStore struct {
	db pgxQuerier
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("scheduling: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithQuerier allows injecting mocks for tests.
func NewPostgresStoreWithQuerier(db pgxQuerier) *PostgresStore {
	return &PostgresStore{db: db}
}

// List returns every slot ordered by start time.
func (s *PostgresStore) List(ctx context.Context) ([]Slot, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM appointments ORDER BY start_at, id`, slotColumns))
	if err != nil {
		return nil, fmt.Errorf("scheduling: list slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scheduling: list slots: %w", err)
	}
	return slots, nil
}

// Get returns the slot with the given id, or ErrSlotNotFound.
func (s *PostgresStore) Get(ctx context.Context, id int) (*Slot, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, slotColumns), id)
	if err != nil {
		return nil, fmt.Errorf("scheduling: get slot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("scheduling: get slot: %w", err)
		}
		return nil, ErrSlotNotFound
	}
	return scanSlot(rows)
}

// Book commits the booked slot only if the stored row is still available.
func (s *PostgresStore) Book(ctx context.Context, booked Slot) error {
	riskJSON, err := marshalNullable(booked.ClinicalRisk)
	if err != nil {
		return fmt.Errorf("scheduling: encode risk: %w", err)
	}
	prepJSON, err := marshalNullable(booked.PrepSummary)
	if err != nil {
		return fmt.Errorf("scheduling: encode prep packet: %w", err)
	}
	intakeJSON, err := marshalNullable(booked.IntakeStructured)
	if err != nil {
		return fmt.Errorf("scheduling: encode intake: %w", err)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE appointments
		SET status = $2, patient_id = $3, reason_for_visit = $4,
			clinical_risk = $5, prep_summary = $6,
			intake_narrative = NULLIF($7, ''), intake_structured = $8
		WHERE id = $1 AND status = $9`,
		booked.ID,
		string(StatusBooked),
		booked.PatientID,
		booked.ReasonForVisit,
		riskJSON,
		prepJSON,
		booked.IntakeNarrative,
		intakeJSON,
		string(StatusAvailable),
	)
	if err != nil {
		return fmt.Errorf("scheduling: book slot: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The CAS missed: either the slot does not exist or it is already taken.
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)`, booked.ID).Scan(&exists); err != nil {
		return fmt.Errorf("scheduling: verify slot: %w", err)
	}
	if !exists {
		return ErrSlotNotFound
	}
	return ErrInvalidStateTransition
}

func scanSlot(rows pgx.Rows) (*Slot, error) {
	var (
		slot                           Slot
		status                         string
		riskJSON, intakeJSON, prepJSON []byte
		createdAt                      *time.Time
	)
	if err := rows.Scan(
		&slot.ID,
		&status,
		&slot.Start,
		&slot.SlotDuration,
		&slot.ProviderID,
		&slot.PatientID,
		&slot.Location,
		&slot.VisitType,
		&slot.Source,
		&slot.ReasonForVisit,
		&slot.IntakeNarrative,
		&riskJSON,
		&intakeJSON,
		&prepJSON,
		&createdAt,
	); err != nil {
		return nil, fmt.Errorf("scheduling: scan slot: %w", err)
	}
	slot.Status = Status(status)
	slot.CreatedAt = createdAt

	if len(riskJSON) > 0 {
		var risk triage.ClinicalRisk
		if err := json.Unmarshal(riskJSON, &risk); err != nil {
			return nil, fmt.Errorf("scheduling: decode risk: %w", err)
		}
		slot.ClinicalRisk = &risk
	}
	if len(intakeJSON) > 0 {
		var intake triage.IntakeResult
		if err := json.Unmarshal(intakeJSON, &intake); err != nil {
			return nil, fmt.Errorf("scheduling: decode intake: %w", err)
		}
		slot.IntakeStructured = &intake
	}
	if len(prepJSON) > 0 {
		var packet prep.Packet
		if err := json.Unmarshal(prepJSON, &packet); err != nil {
			return nil, fmt.Errorf("scheduling: decode prep packet: %w", err)
		}
		slot.PrepSummary = &packet
	}
	return &slot, nil
}

func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case *triage.ClinicalRisk:
		if val == nil {
			return nil, nil
		}
	case *prep.Packet:
		if val == nil {
			return nil, nil
		}
	case *triage.IntakeResult:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

var _ SlotStore = (*PostgresStore)(nil)
