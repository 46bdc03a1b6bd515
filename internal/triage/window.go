package triage

// DefaultRoutineWindowDays is the fallback ceiling for routine visits. The
// routine window is clinic policy, not a clinical rule, so deployments tune
// it via configuration.
const DefaultRoutineWindowDays = 30

// WindowPolicy converts a recommended urgency into a scheduling horizon.
type WindowPolicy struct {
	RoutineDays int
}

// NewWindowPolicy builds a policy with the given routine ceiling; zero or
// negative values fall back to the default.
func NewWindowPolicy(routineDays int) WindowPolicy {
	if routineDays <= 0 {
		routineDays = DefaultRoutineWindowDays
	}
	return WindowPolicy{RoutineDays: routineDays}
}

// HorizonDays returns the maximum number of days from now within which a
// slot counts as recommended. The Normalizer guarantees urgency is one of
// the four known values, so routine doubles as the default arm.
func (p WindowPolicy) HorizonDays(urgency Urgency) int {
	switch urgency {
	case UrgencyWithin24Hours:
		return 1
	case UrgencyWithin48Hours:
		return 2
	case UrgencyWithin7Days:
		return 7
	default:
		return p.RoutineDays
	}
}
