package triage

import (
	"context"
	"time"

	"github.com/beamhealth/clinic-triage/internal/insurance"
	"github.com/beamhealth/clinic-triage/internal/patients"
)

// OutcomeKind distinguishes the three results of an oracle call.
type OutcomeKind string

const (
	// OutcomeJudgment means the backend answered; the raw text still has to
	// survive parsing and normalization.
	OutcomeJudgment OutcomeKind = "judgment"
	// OutcomeUnavailable means the backend is not configured or disabled.
	// Expected, not an error.
	OutcomeUnavailable OutcomeKind = "unavailable"
	// OutcomeFailure means the backend is configured but the call errored.
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome is the explicit result of an assessment call. Failures are carried
// as values rather than thrown errors; the Normalizer turns every kind into a
// valid ClinicalRisk.
type Outcome struct {
	Kind OutcomeKind
	// RawText is the unvalidated backend response, set only for judgments.
	RawText string
	// Err is the transport or call error, set only for failures.
	Err error
}

// JudgmentOutcome wraps a raw backend response.
func JudgmentOutcome(rawText string) Outcome {
	return Outcome{Kind: OutcomeJudgment, RawText: rawText}
}

// UnavailableOutcome signals a backend that was never called.
func UnavailableOutcome() Outcome {
	return Outcome{Kind: OutcomeUnavailable}
}

// FailureOutcome wraps a backend call error.
func FailureOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}

// VisitRecord is the slice of appointment history shared with the oracle for
// recency and no-show pattern signals.
type VisitRecord struct {
	ID             int       `json:"id"`
	Status         string    `json:"status"`
	Start          time.Time `json:"start"`
	SlotDuration   int       `json:"slot_duration"`
	ProviderID     *int      `json:"provider_id,omitempty"`
	PatientID      *int      `json:"patient_id,omitempty"`
	ReasonForVisit string    `json:"reason_for_visit,omitempty"`
}

// AssessmentInput is everything the oracle sees about a proposed visit.
type AssessmentInput struct {
	Patient        patients.Patient
	Insurance      insurance.Insurance
	ProposedReason string
	History        []VisitRecord
}

// Assessor decouples the pipeline from the non-deterministic reasoning
// backend. Implementations must not mutate the input.
type Assessor interface {
	Assess(ctx context.Context, input AssessmentInput) Outcome
}
