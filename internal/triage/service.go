package triage

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/beamhealth/clinic-triage/internal/observability/metrics"
	"github.com/beamhealth/clinic-triage/pkg/logging"
)

var serviceTracer = otel.Tracer("clinictriage.internal.triage")

// Service runs the risk half of the pipeline: assess through the oracle,
// normalize, and optionally memoize preview results. It never returns an
// error; oracle trouble degrades to a flagged default judgment.
type Service struct {
	assessor   Assessor
	normalizer *Normalizer
	cache      *RiskCache
	metrics    *metrics.TriageMetrics
	logger     *logging.Logger
}

// NewService constructs a triage service. cache and m may be nil.
func NewService(assessor Assessor, normalizer *Normalizer, cache *RiskCache, m *metrics.TriageMetrics, logger *logging.Logger) *Service {
	if assessor == nil {
		panic("triage: assessor required")
	}
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		assessor:   assessor,
		normalizer: normalizer,
		cache:      cache,
		metrics:    m,
		logger:     logger,
	}
}

// CalculateRisk runs assessment and normalization. Used by booking, which
// must always compute a fresh judgment for the slot being committed.
func (s *Service) CalculateRisk(ctx context.Context, input AssessmentInput) ClinicalRisk {
	ctx, span := serviceTracer.Start(ctx, "triage.calculate_risk")
	defer span.End()
	span.SetAttributes(attribute.Int("clinic.patient_id", input.Patient.ID))

	start := time.Now()
	outcome := s.assessor.Assess(ctx, input)
	s.metrics.ObserveOracleOutcome(string(outcome.Kind), time.Since(start).Seconds())

	risk := s.normalizer.Normalize(outcome)
	if outcome.Kind != OutcomeJudgment {
		s.logger.Info("risk fell back to safe default",
			"patient_id", input.Patient.ID,
			"cause", outcome.Kind,
		)
	}
	span.SetAttributes(
		attribute.Int("clinic.risk_score", risk.Score),
		attribute.String("clinic.risk_level", string(risk.Level)),
	)
	return risk
}

// PreviewRisk is CalculateRisk behind the preview cache.
func (s *Service) PreviewRisk(ctx context.Context, input AssessmentInput) ClinicalRisk {
	if cached, ok := s.cache.Get(ctx, input.Patient.ID, input.ProposedReason); ok {
		s.metrics.ObservePreviewCache(true)
		return *cached
	}
	s.metrics.ObservePreviewCache(false)

	risk := s.CalculateRisk(ctx, input)
	s.cache.Set(ctx, input.Patient.ID, input.ProposedReason, risk)
	return risk
}
