package triage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/beamhealth/clinic-triage/internal/insurance"
	"github.com/beamhealth/clinic-triage/internal/oracle"
	"github.com/beamhealth/clinic-triage/internal/patients"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

type scriptedChat struct {
	lastRequest openai.ChatCompletionRequest
	content     string
	err         error
}

func (s *scriptedChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func testInput() AssessmentInput {
	return AssessmentInput{
		Patient: patients.Patient{
			ID:                1,
			FirstName:         "Maria",
			LastName:          "Gomez",
			DOB:               patients.NewDate(1948, time.March, 11),
			ChronicConditions: []string{"heart failure"},
			RiskFlags:         []string{"high_cardiac_risk"},
		},
		Insurance:      insurance.Insurance{ID: 1, Payer: "Medicare", Eligible: true, EligibilityStatus: "active"},
		ProposedReason: "chest pain when walking",
	}
}

func TestAssessUnavailableWithoutBackend(t *testing.T) {
	a := NewOracleAssessor(oracle.New(oracle.Config{Enabled: false}), logging.Default())

	outcome := a.Assess(context.Background(), testInput())
	if outcome.Kind != OutcomeUnavailable {
		t.Fatalf("expected unavailable outcome, got %s", outcome.Kind)
	}
}

func TestAssessReturnsJudgmentRawText(t *testing.T) {
	chat := &scriptedChat{content: `{"risk_score": 85, "risk_level": "high"}`}
	a := NewOracleAssessor(oracle.NewWithChatClient(chat, "gpt-4o-mini"), logging.Default())

	outcome := a.Assess(context.Background(), testInput())
	if outcome.Kind != OutcomeJudgment {
		t.Fatalf("expected judgment outcome, got %s", outcome.Kind)
	}
	if outcome.RawText != chat.content {
		t.Fatalf("raw text not passed through: %q", outcome.RawText)
	}
}

func TestAssessFailureOnTransportError(t *testing.T) {
	chat := &scriptedChat{err: errors.New("connection reset")}
	a := NewOracleAssessor(oracle.NewWithChatClient(chat, ""), logging.Default())

	outcome := a.Assess(context.Background(), testInput())
	if outcome.Kind != OutcomeFailure {
		t.Fatalf("expected failure outcome, got %s", outcome.Kind)
	}
	if outcome.Err == nil {
		t.Fatal("expected error carried on outcome")
	}
}

func TestAssessPayloadIncludesDerivedAge(t *testing.T) {
	chat := &scriptedChat{content: `{}`}
	a := NewOracleAssessor(oracle.NewWithChatClient(chat, ""), logging.Default())
	a.Now = func() time.Time { return time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC) }

	a.Assess(context.Background(), testInput())

	userPrompt := chat.lastRequest.Messages[1].Content
	idx := strings.Index(userPrompt, "{")
	if idx < 0 {
		t.Fatalf("no JSON payload in user prompt: %q", userPrompt)
	}
	var payload struct {
		Patient struct {
			Age *int `json:"age"`
		} `json:"patient"`
		ProposedReason       string `json:"proposed_reason"`
		ExistingAppointments []any  `json:"existing_appointments"`
	}
	if err := json.Unmarshal([]byte(userPrompt[idx:]), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Patient.Age == nil || *payload.Patient.Age != 78 {
		t.Fatalf("expected derived age 78, got %v", payload.Patient.Age)
	}
	if payload.ProposedReason != "chest pain when walking" {
		t.Fatalf("unexpected reason: %q", payload.ProposedReason)
	}
	if payload.ExistingAppointments == nil {
		t.Fatal("expected empty history encoded as a list, not null")
	}
}
