package scheduling

import (
	"time"

	"github.com/beamhealth/clinic-triage/internal/prep"
	"github.com/beamhealth/clinic-triage/internal/triage"
)

// Status is the lifecycle state of a slot.
type Status string

// Slot lifecycle. The only transition in this service is available -> booked.
const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
)

// Slot is a bookable appointment time unit. Once booked, the slot exclusively
// owns its attached risk judgment and preparation packet; rebooking
// overwrites them, never merges.
type Slot struct {
	ID           int        `json:"id"`
	Status       Status     `json:"status"`
	Start        time.Time  `json:"start"`
	SlotDuration int        `json:"slot_duration"`
	PatientID    *int       `json:"patient_id,omitempty"`
	ProviderID   *int       `json:"provider_id,omitempty"`
	Location     string     `json:"location,omitempty"`
	VisitType    string     `json:"visit_type,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	Source       string     `json:"source,omitempty"`

	ReasonForVisit string               `json:"reason_for_visit,omitempty"`
	ClinicalRisk   *triage.ClinicalRisk `json:"clinical_risk,omitempty"`

	IntakeNarrative  string               `json:"intake_narrative,omitempty"`
	IntakeStructured *triage.IntakeResult `json:"intake_structured,omitempty"`
	PrepSummary      *prep.Packet         `json:"prep_summary,omitempty"`
}

// VisitRecord projects the slot into the history shape shared with the
// oracle.
func (s Slot) VisitRecord() triage.VisitRecord {
	return triage.VisitRecord{
		ID:             s.ID,
		Status:         string(s.Status),
		Start:          s.Start,
		SlotDuration:   s.SlotDuration,
		ProviderID:     s.ProviderID,
		PatientID:      s.PatientID,
		ReasonForVisit: s.ReasonForVisit,
	}
}

// VisitRecords projects a slot pool into oracle history.
func VisitRecords(slots []Slot) []triage.VisitRecord {
	records := make([]triage.VisitRecord, 0, len(slots))
	for _, s := range slots {
		records = append(records, s.VisitRecord())
	}
	return records
}

// RecommendedSlot wraps a slot with a score adjustment. The adjustment is a
// reserved ranking extension point and stays 0 for now.
type RecommendedSlot struct {
	Appointment     Slot `json:"appointment"`
	ScoreAdjustment int  `json:"score_adjustment"`
}
