package triage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/beamhealth/clinic-triage/pkg/logging"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RiskCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRiskCache(client, ttl, logging.Default()), mr
}

func TestRiskCacheSetGet(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	risk := ClinicalRisk{Score: 82, Level: LevelHigh, Factors: []string{"chest_pain"}, RecommendedUrgency: UrgencyWithin24Hours}
	cache.Set(ctx, 1, "chest pain", risk)

	got, ok := cache.Get(ctx, 1, "chest pain")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Score != 82 || got.Level != LevelHigh {
		t.Fatalf("unexpected cached judgment: %+v", got)
	}
}

func TestRiskCacheKeyNormalization(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, 1, "Chest Pain ", ClinicalRisk{Score: 82, Level: LevelHigh})

	if _, ok := cache.Get(ctx, 1, "chest pain"); !ok {
		t.Fatal("expected hit for case/whitespace variant of the same reason")
	}
	if _, ok := cache.Get(ctx, 2, "chest pain"); ok {
		t.Fatal("expected miss for a different patient")
	}
	if _, ok := cache.Get(ctx, 1, "back pain"); ok {
		t.Fatal("expected miss for a different reason")
	}
}

func TestRiskCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, 1, "chest pain", ClinicalRisk{Score: 82, Level: LevelHigh})
	mr.FastForward(2 * time.Minute)

	if _, ok := cache.Get(ctx, 1, "chest pain"); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestRiskCacheNilIsPermanentMiss(t *testing.T) {
	var cache *RiskCache
	ctx := context.Background()

	if _, ok := cache.Get(ctx, 1, "anything"); ok {
		t.Fatal("nil cache must never hit")
	}
	cache.Set(ctx, 1, "anything", ClinicalRisk{})
}

func TestRiskCacheErrorsAreMisses(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, 1, "chest pain", ClinicalRisk{Score: 82})
	mr.Close()

	if _, ok := cache.Get(ctx, 1, "chest pain"); ok {
		t.Fatal("expected miss when redis is down")
	}
}
