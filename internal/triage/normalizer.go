package triage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawJudgment is the untyped, partially-trusted shape of the oracle's
// response. Fields are `any` because the backend occasionally returns numbers
// as strings, scalars where lists belong, and so on. Only the Normalizer
// consumes this type; nothing upstream sees unvalidated output.
type RawJudgment struct {
	RiskScore          any `json:"risk_score"`
	RiskLevel          any `json:"risk_level"`
	Factors            any `json:"factors"`
	RecommendedUrgency any `json:"recommended_urgency"`
	Reason             any `json:"reason"`
}

const (
	defaultScore        = 50
	noReasonPlaceholder = "Oracle did not provide an explanation."

	// Factor markers distinguishing the three fallback causes.
	FactorOracleUnavailable = "oracle_unavailable"
	FactorOracleError       = "oracle_error"
	FactorOracleUnparseable = "oracle_unparseable"
)

// Normalizer repairs raw oracle output into a valid ClinicalRisk. Every
// anomaly degrades to a safe value; an unscorable patient is never treated
// as low risk.
type Normalizer struct {
	// Now stamps GeneratedAt at normalization time, not oracle call time.
	Now func() time.Time
}

// NewNormalizer returns a normalizer using the system clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize turns any assessment outcome into a valid risk judgment.
func (n *Normalizer) Normalize(outcome Outcome) ClinicalRisk {
	switch outcome.Kind {
	case OutcomeUnavailable:
		return n.fallback(FactorOracleUnavailable, "Triage oracle is not configured; using default medium risk.")
	case OutcomeFailure:
		return n.fallback(FactorOracleError, "Triage oracle call failed; using default medium risk.")
	}

	var raw RawJudgment
	if err := json.Unmarshal([]byte(outcome.RawText), &raw); err != nil {
		return n.fallback(FactorOracleUnparseable, "Triage oracle response could not be parsed; using default medium risk.")
	}
	return n.normalizeRaw(raw)
}

// fallback is the fixed safe default: midline score, medium level, a seven
// day window, and a machine-readable cause marker.
func (n *Normalizer) fallback(marker, explanation string) ClinicalRisk {
	return ClinicalRisk{
		Score:              defaultScore,
		Level:              LevelMedium,
		Factors:            []string{marker},
		RecommendedUrgency: UrgencyWithin7Days,
		Explanation:        explanation,
		GeneratedAt:        n.now(),
	}
}

// normalizeRaw applies the field rules in order: score first, then level
// (derived from the normalized score only when the raw level is invalid),
// then urgency (derived from the resolved level only when the raw urgency is
// invalid). A valid level and a valid urgency that disagree with each other
// are both accepted as given; the oracle's qualitative judgment wins over
// cross-field consistency.
func (n *Normalizer) normalizeRaw(raw RawJudgment) ClinicalRisk {
	score := coerceScore(raw.RiskScore)

	level, ok := parseLevelValue(raw.RiskLevel)
	if !ok {
		level = levelForScore(score)
	}

	urgency, ok := parseUrgencyValue(raw.RecommendedUrgency)
	if !ok {
		urgency = urgencyForLevel(level)
	}

	explanation := ""
	if s, ok := raw.Reason.(string); ok {
		explanation = strings.TrimSpace(s)
	}
	if explanation == "" {
		explanation = noReasonPlaceholder
	}

	return ClinicalRisk{
		Score:              score,
		Level:              level,
		Factors:            coerceFactors(raw.Factors),
		RecommendedUrgency: urgency,
		Explanation:        explanation,
		GeneratedAt:        n.now(),
	}
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now().UTC()
	}
	return time.Now().UTC()
}

// coerceScore accepts numbers and numeric strings, rounds to the nearest
// integer, and clamps to [0, 100]. Anything else becomes the midline default.
func coerceScore(v any) int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return defaultScore
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return defaultScore
		}
		f = parsed
	default:
		return defaultScore
	}
	score := int(math.Round(f))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func parseLevelValue(v any) (Level, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return ParseLevel(s)
}

func parseUrgencyValue(v any) (Urgency, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return ParseUrgency(s)
}

// coerceFactors turns the raw factor value into a list of strings: lists are
// stringified element-wise, scalars are wrapped as a single-element list, and
// absent values become an empty list.
func coerceFactors(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out
	case []string:
		return val
	default:
		return []string{stringify(val)}
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
