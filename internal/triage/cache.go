package triage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/beamhealth/clinic-triage/pkg/logging"
)

var cacheTracer = otel.Tracer("clinictriage.internal.triage.cache")

// RiskCache memoizes preview judgments in Redis so repeated previews for the
// same patient and reason do not re-invoke the oracle. A nil cache is a
// permanent miss, which keeps Redis optional.
type RiskCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRiskCache builds a cache around an existing Redis client.
func NewRiskCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RiskCache {
	if client == nil {
		panic("triage: redis client required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RiskCache{redis: client, ttl: ttl, logger: logger}
}

// Get returns a cached judgment for the patient/reason pair, or false.
// Cache errors are logged and treated as misses.
func (c *RiskCache) Get(ctx context.Context, patientID int, reason string) (*ClinicalRisk, bool) {
	if c == nil {
		return nil, false
	}
	ctx, span := cacheTracer.Start(ctx, "triage.cache_get")
	defer span.End()

	data, err := c.redis.Get(ctx, previewKey(patientID, reason)).Bytes()
	if err != nil {
		if err != redis.Nil {
			span.RecordError(err)
			c.logger.Warn("risk cache read failed", "error", err)
		}
		return nil, false
	}
	var risk ClinicalRisk
	if err := json.Unmarshal(data, &risk); err != nil {
		span.RecordError(err)
		return nil, false
	}
	return &risk, true
}

// Set stores a judgment for the patient/reason pair. Write failures are
// logged and otherwise ignored; the cache is best-effort.
func (c *RiskCache) Set(ctx context.Context, patientID int, reason string, risk ClinicalRisk) {
	if c == nil {
		return
	}
	ctx, span := cacheTracer.Start(ctx, "triage.cache_set")
	defer span.End()

	data, err := json.Marshal(risk)
	if err != nil {
		span.RecordError(err)
		return
	}
	if err := c.redis.Set(ctx, previewKey(patientID, reason), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		c.logger.Warn("risk cache write failed", "error", err)
	}
}

func previewKey(patientID int, reason string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(reason))))
	return fmt.Sprintf("risk_preview:%d:%x", patientID, sum[:8])
}
