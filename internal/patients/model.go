package patients

import "strings"

// Address is a patient mailing address.
type Address struct {
	Line1 string `json:"line1"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

// Patient is a read-only demographic record. The triage pipeline never
// mutates patients; they are inputs to risk scoring and prep packets.
type Patient struct {
	ID                     int      `json:"id"`
	FirstName              string   `json:"first_name"`
	LastName               string   `json:"last_name"`
	DOB                    Date     `json:"dob"`
	Email                  string   `json:"email"`
	Phone                  string   `json:"phone"`
	Gender                 string   `json:"gender"`
	PrimaryLanguage        string   `json:"primary_language"`
	Address                Address  `json:"address"`
	InsuranceID            int      `json:"insurance_id"`
	ChronicConditions      []string `json:"chronic_conditions"`
	Medications            []string `json:"medications"`
	Allergies              []string `json:"allergies"`
	LastVisitDate          *Date    `json:"last_visit_date,omitempty"`
	PreferredContactMethod string   `json:"preferred_contact_method,omitempty"`
	NoShowCount            int      `json:"no_show_count"`
	RiskFlags              []string `json:"risk_flags"`
}

// FullName joins first and last name for display.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// MatchesQuery reports whether the patient matches a case-insensitive
// search over name, email, and phone.
func (p *Patient) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{p.FirstName, p.LastName, p.Email, p.Phone} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
