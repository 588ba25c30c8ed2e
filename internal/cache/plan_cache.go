package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/models"
)

const (
	planKeyPattern = "intervention:plan:*"

	DefaultPlanTTL = 10 * time.Minute
)

func planKey(id uint) string {
	return fmt.Sprintf("intervention:plan:%d", id)
}

// PlanCache is a read-through store for plans on the response hot path.
// Every method is safe on a nil receiver, which behaves as a disabled cache.
// Cache failures never surface to callers; the store stays authoritative.
type PlanCache struct {
	cache CacheService
	ttl   time.Duration
}

func NewPlanCache(cache CacheService, ttl time.Duration) *PlanCache {
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	return &PlanCache{cache: cache, ttl: ttl}
}

// GetPlan returns the cached plan, or nil on a miss or any cache error.
func (c *PlanCache) GetPlan(ctx context.Context, id uint) *models.InterventionPlan {
	if c == nil || c.cache == nil {
		return nil
	}
	var plan models.InterventionPlan
	if err := c.cache.Get(ctx, planKey(id), &plan); err != nil {
		return nil
	}
	return &plan
}

func (c *PlanCache) SetPlan(ctx context.Context, plan *models.InterventionPlan) {
	if c == nil || c.cache == nil || plan == nil {
		return
	}
	_ = c.cache.Set(ctx, planKey(plan.ID), plan, c.ttl)
}

func (c *PlanCache) InvalidatePlan(ctx context.Context, ids ...uint) {
	if c == nil || c.cache == nil {
		return
	}
	for _, id := range ids {
		_ = c.cache.Delete(ctx, planKey(id))
	}
}

// Flush drops every cached plan. Used after bulk maintenance passes.
func (c *PlanCache) Flush(ctx context.Context) error {
	if c == nil || c.cache == nil {
		return nil
	}
	if err := c.cache.DeletePattern(ctx, planKeyPattern); err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	return nil
}
