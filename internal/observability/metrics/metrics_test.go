package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestTriageMetricsObserve(t *testing.T) {
	m := NewTriageMetrics(prometheus.NewRegistry())
	m.ObserveOracleOutcome("judgment", 0.42)
	m.ObserveOracleOutcome("unavailable", 0.0)
	m.ObservePreviewCache(true)
	m.ObservePreviewCache(false)
	m.ObserveBooking("booked")
	m.ObserveBooking("invalid_state")
}

func TestTriageMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTriageMetrics(reg)
	m.ObserveBooking("booked")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "clinic_scheduling_bookings_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected bookings counter to be registered")
	}
}

func TestTriageMetricsNilSafe(t *testing.T) {
	var m *TriageMetrics
	m.ObserveOracleOutcome("failure", 0.1)
	m.ObservePreviewCache(true)
	m.ObserveBooking("booked")
}
