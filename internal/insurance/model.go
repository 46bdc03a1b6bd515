package insurance

import (
	"time"

	"github.com/beamhealth/clinic-triage/internal/patients"
)

// Insurance is a read-only coverage record referenced by patients.
type Insurance struct {
	ID                      int            `json:"id"`
	Payer                   string         `json:"payer"`
	Plan                    string         `json:"plan"`
	PlanType                string         `json:"plan_type"`
	MemberID                string         `json:"member_id"`
	GroupNumber             *string        `json:"group_number,omitempty"`
	Eligible                bool           `json:"eligible"`
	EligibilityStatus       string         `json:"eligibility_status"`
	CoPay                   *float64       `json:"coPay,omitempty"`
	CoverageStart           *patients.Date `json:"coverage_start,omitempty"`
	CoverageEnd             *patients.Date `json:"coverage_end,omitempty"`
	DeductibleRemaining     *float64       `json:"deductible_remaining,omitempty"`
	OutOfPocketMaxRemaining *float64       `json:"out_of_pocket_max_remaining,omitempty"`
	RequiresReferral        bool           `json:"requires_referral"`
	EligibilityLastChecked  *time.Time     `json:"eligibility_last_checked,omitempty"`
}
