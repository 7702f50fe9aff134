package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ResultCache keeps evaluated results in Redis keyed by attempt. Entries
// carry the input fingerprint; a lookup with a different fingerprint misses.
// A nil cache or a nil client turns every call into a no-op.
type ResultCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewResultCache(rdb *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{Redis: rdb, TTL: ttl}
}

type cachedResult struct {
	Fingerprint string          `json:"fingerprint"`
	Result      *scoring.Result `json:"result"`
}

func resultKey(assessmentID string) string {
	return fmt.Sprintf("assessment:result:%s", assessmentID)
}

func (c *ResultCache) enabled() bool {
	return c != nil && c.Redis != nil
}

func (c *ResultCache) Get(ctx context.Context, assessmentID, fingerprint string) (*scoring.Result, bool) {
	if !c.enabled() {
		return nil, false
	}
	val, err := c.Redis.Get(ctx, resultKey(assessmentID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("Result cache read failed", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, false
	}

	var entry cachedResult
	if err := json.Unmarshal([]byte(val), &entry); err != nil || entry.Result == nil {
		return nil, false
	}
	if entry.Fingerprint != fingerprint {
		return nil, false
	}
	return entry.Result, true
}

func (c *ResultCache) Set(ctx context.Context, assessmentID, fingerprint string, res *scoring.Result) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(cachedResult{Fingerprint: fingerprint, Result: res})
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, resultKey(assessmentID), data, c.TTL).Err(); err != nil {
		logger.Log.Warn("Result cache write failed", zap.String("assessment_id", assessmentID), zap.Error(err))
	}
}

func (c *ResultCache) Invalidate(ctx context.Context, assessmentID string) {
	if !c.enabled() {
		return
	}
	c.Redis.Del(ctx, resultKey(assessmentID))
}
