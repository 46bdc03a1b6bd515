package triage

import (
	"strings"
	"time"
)

// Level is the qualitative risk band of a proposed visit.
type Level string

// Risk levels, lowest to highest.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Urgency is the scheduling priority controlling how soon a patient should
// be seen.
type Urgency string

// Urgencies, least to most urgent.
const (
	UrgencyRoutine       Urgency = "routine"
	UrgencyWithin7Days   Urgency = "within_7_days"
	UrgencyWithin48Hours Urgency = "within_48_hours"
	UrgencyWithin24Hours Urgency = "within_24_hours"
)

// ClinicalRisk is a fully validated risk judgment. Instances are only ever
// produced by the Normalizer, so score, level, and urgency are always drawn
// from their valid domains.
type ClinicalRisk struct {
	Score              int       `json:"risk_score"`
	Level              Level     `json:"risk_level"`
	Factors            []string  `json:"factors"`
	RecommendedUrgency Urgency   `json:"recommended_urgency"`
	Explanation        string    `json:"explanation,omitempty"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// ParseLevel matches a raw string against the known levels, ignoring case
// and surrounding whitespace.
func ParseLevel(raw string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelLow:
		return LevelLow, true
	case LevelMedium:
		return LevelMedium, true
	case LevelHigh:
		return LevelHigh, true
	}
	return "", false
}

// ParseUrgency matches a raw string against the known urgencies, ignoring
// case and surrounding whitespace.
func ParseUrgency(raw string) (Urgency, bool) {
	switch Urgency(strings.ToLower(strings.TrimSpace(raw))) {
	case UrgencyRoutine:
		return UrgencyRoutine, true
	case UrgencyWithin7Days:
		return UrgencyWithin7Days, true
	case UrgencyWithin48Hours:
		return UrgencyWithin48Hours, true
	case UrgencyWithin24Hours:
		return UrgencyWithin24Hours, true
	}
	return "", false
}

// levelForScore maps a normalized score onto a level: >=70 high, >=30 medium,
// otherwise low. Used only when the oracle's own level is missing or invalid.
func levelForScore(score int) Level {
	switch {
	case score >= 70:
		return LevelHigh
	case score >= 30:
		return LevelMedium
	default:
		return LevelLow
	}
}

// urgencyForLevel derives a scheduling urgency when the oracle's own urgency
// is missing or invalid.
func urgencyForLevel(level Level) Urgency {
	switch level {
	case LevelHigh:
		return UrgencyWithin24Hours
	case LevelMedium:
		return UrgencyWithin7Days
	default:
		return UrgencyRoutine
	}
}
