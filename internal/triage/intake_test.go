package triage

import (
	"context"
	"strings"
	"testing"

	"github.com/beamhealth/clinic-triage/internal/oracle"
	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

func TestStructureWithoutBackend(t *testing.T) {
	engine := NewIntakeEngine(oracle.New(oracle.Config{Enabled: false}), logging.Default())

	narrative := "I've been having headaches every morning for two weeks."
	result := engine.Structure(context.Background(), patients.Patient{ID: 1}, narrative)

	if result.ReasonForVisit != narrative {
		t.Fatalf("expected narrative echoed, got %q", result.ReasonForVisit)
	}
	if len(result.TriageTags) != 1 || result.TriageTags[0] != FactorOracleUnavailable {
		t.Fatalf("expected unavailable tag, got %v", result.TriageTags)
	}
	if result.SuggestedUrgency != UrgencyRoutine {
		t.Fatalf("expected routine urgency, got %s", result.SuggestedUrgency)
	}
}

func TestStructureTruncatesLongNarrative(t *testing.T) {
	engine := NewIntakeEngine(oracle.New(oracle.Config{Enabled: false}), logging.Default())

	narrative := strings.Repeat("pain ", 100)
	result := engine.Structure(context.Background(), patients.Patient{ID: 1}, narrative)

	if len(result.ReasonForVisit) > maxIntakeReasonLen {
		t.Fatalf("reason not truncated: %d chars", len(result.ReasonForVisit))
	}
	if result.Summary != narrative {
		t.Fatal("summary should keep the full narrative")
	}
}

func TestStructureParsesBackendOutput(t *testing.T) {
	chat := &scriptedChat{content: `{
		"reason_for_visit": "morning headaches",
		"triage_tags": ["headache", "chronic_symptom"],
		"suggested_urgency": "within_7_days",
		"summary": "Two weeks of daily morning headaches."
	}`}
	engine := NewIntakeEngine(oracle.NewWithChatClient(chat, ""), logging.Default())

	result := engine.Structure(context.Background(), patients.Patient{ID: 1}, "headaches")
	if result.ReasonForVisit != "morning headaches" {
		t.Fatalf("unexpected reason: %q", result.ReasonForVisit)
	}
	if len(result.TriageTags) != 2 {
		t.Fatalf("unexpected tags: %v", result.TriageTags)
	}
	if result.SuggestedUrgency != UrgencyWithin7Days {
		t.Fatalf("unexpected urgency: %s", result.SuggestedUrgency)
	}
}

func TestStructureRepairsInvalidUrgency(t *testing.T) {
	chat := &scriptedChat{content: `{"reason_for_visit": "follow-up", "suggested_urgency": "immediately"}`}
	engine := NewIntakeEngine(oracle.NewWithChatClient(chat, ""), logging.Default())

	result := engine.Structure(context.Background(), patients.Patient{ID: 1}, "follow up visit")
	if result.SuggestedUrgency != UrgencyWithin7Days {
		t.Fatalf("expected urgency repaired to within_7_days, got %s", result.SuggestedUrgency)
	}
}

func TestStructureUnparseableOutput(t *testing.T) {
	chat := &scriptedChat{content: `not json at all`}
	engine := NewIntakeEngine(oracle.NewWithChatClient(chat, ""), logging.Default())

	narrative := "stomach ache since yesterday"
	result := engine.Structure(context.Background(), patients.Patient{ID: 1}, narrative)

	if len(result.TriageTags) != 1 || result.TriageTags[0] != FactorOracleUnparseable {
		t.Fatalf("expected unparseable tag, got %v", result.TriageTags)
	}
	if result.ReasonForVisit != narrative {
		t.Fatalf("expected narrative echoed, got %q", result.ReasonForVisit)
	}
	if result.SuggestedUrgency != UrgencyWithin7Days {
		t.Fatalf("expected within_7_days, got %s", result.SuggestedUrgency)
	}
}

func TestStructureFillsEmptyFieldsFromNarrative(t *testing.T) {
	chat := &scriptedChat{content: `{"triage_tags": ["refill"], "suggested_urgency": "routine"}`}
	engine := NewIntakeEngine(oracle.NewWithChatClient(chat, ""), logging.Default())

	narrative := "need my blood pressure meds refilled"
	result := engine.Structure(context.Background(), patients.Patient{ID: 1}, narrative)

	if result.ReasonForVisit != narrative {
		t.Fatalf("expected reason backfilled, got %q", result.ReasonForVisit)
	}
	if result.Summary != narrative {
		t.Fatalf("expected summary backfilled, got %q", result.Summary)
	}
}
