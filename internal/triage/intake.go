package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/beamhealth/clinic-triage/internal/oracle"
	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

var intakeTracer = otel.Tracer("clinictriage.internal.triage.intake")

const intakeSystemPrompt = `You are a medical intake assistant. You receive a free-text narrative from a patient (or staff) and basic patient context. Your job is to structure this into fields that downstream triage & scheduling logic can use.

Respond with a single JSON object with keys:
- reason_for_visit: short phrase (used as scheduling reason)
- triage_tags: array of short snake_case tags, e.g. ['chest_pain', 'post_ed_followup', 'medication_refill']
- suggested_urgency: one of 'routine', 'within_7_days', 'within_48_hours', 'within_24_hours'
- summary: 2-3 sentence summary for the clinician`

const maxIntakeReasonLen = 200

// IntakeResult is the structured form of a free-text intake narrative.
type IntakeResult struct {
	ReasonForVisit   string   `json:"reason_for_visit"`
	TriageTags       []string `json:"triage_tags"`
	SuggestedUrgency Urgency  `json:"suggested_urgency"`
	Summary          string   `json:"summary"`
}

// IntakeEngine structures intake narratives through the shared oracle client.
// When the backend is unavailable or its output is unusable, it degrades to
// echoing the narrative with marker tags rather than failing.
type IntakeEngine struct {
	client *oracle.Client
	logger *logging.Logger
}

// NewIntakeEngine builds an intake engine.
func NewIntakeEngine(client *oracle.Client, logger *logging.Logger) *IntakeEngine {
	if client == nil {
		panic("triage: oracle client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeEngine{client: client, logger: logger}
}

// Structure converts a narrative into scheduling-ready fields.
func (e *IntakeEngine) Structure(ctx context.Context, patient patients.Patient, narrative string) IntakeResult {
	if !e.client.Available() {
		return IntakeResult{
			ReasonForVisit:   truncate(narrative, maxIntakeReasonLen),
			TriageTags:       []string{FactorOracleUnavailable},
			SuggestedUrgency: UrgencyRoutine,
			Summary:          narrative,
		}
	}

	ctx, span := intakeTracer.Start(ctx, "triage.intake")
	defer span.End()

	payload := struct {
		Patient         patients.Patient `json:"patient"`
		IntakeNarrative string           `json:"intake_narrative"`
	}{Patient: patient, IntakeNarrative: narrative}
	data, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		return e.parseError(narrative)
	}
	userPrompt := fmt.Sprintf("Here is the patient context and intake narrative as JSON. Apply the schema above and return ONLY the JSON object.\n\n%s", data)

	rawText, err := e.client.Complete(ctx, intakeSystemPrompt, userPrompt)
	if err != nil {
		span.RecordError(err)
		e.logger.Warn("oracle intake call failed", "error", err, "patient_id", patient.ID)
		return e.parseError(narrative)
	}

	var parsed struct {
		ReasonForVisit   string `json:"reason_for_visit"`
		TriageTags       any    `json:"triage_tags"`
		SuggestedUrgency string `json:"suggested_urgency"`
		Summary          string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(rawText), &parsed); err != nil {
		return e.parseError(narrative)
	}

	result := IntakeResult{
		ReasonForVisit: parsed.ReasonForVisit,
		TriageTags:     coerceFactors(parsed.TriageTags),
		Summary:        parsed.Summary,
	}
	if result.ReasonForVisit == "" {
		result.ReasonForVisit = truncate(narrative, maxIntakeReasonLen)
	}
	if result.Summary == "" {
		result.Summary = narrative
	}
	if urgency, ok := ParseUrgency(parsed.SuggestedUrgency); ok {
		result.SuggestedUrgency = urgency
	} else {
		result.SuggestedUrgency = UrgencyWithin7Days
	}
	return result
}

func (e *IntakeEngine) parseError(narrative string) IntakeResult {
	return IntakeResult{
		ReasonForVisit:   truncate(narrative, maxIntakeReasonLen),
		TriageTags:       []string{FactorOracleUnparseable},
		SuggestedUrgency: UrgencyWithin7Days,
		Summary:          narrative,
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
