package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinicCommission/domain"

	"github.com/redis/go-redis/v9"
)

// PlanCache keeps plan+rules snapshots for sale intake. Writes through the
// plan admin API invalidate the entry, so a short TTL is only a backstop.
type PlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlanCache(client *redis.Client, ttl time.Duration) *PlanCache {
	return &PlanCache{
		client: client,
		ttl:    ttl,
	}
}

func planKey(planID uint) string {
	return fmt.Sprintf("commission:plan:%d", planID)
}

func (c *PlanCache) Get(ctx context.Context, planID uint) (domain.CommissionPlan, bool, error) {
	data, err := c.client.Get(ctx, planKey(planID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CommissionPlan{}, false, nil
		}
		return domain.CommissionPlan{}, false, fmt.Errorf("failed to read plan cache: %w", err)
	}

	var plan domain.CommissionPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		// poisoned entry, treat as a miss
		return domain.CommissionPlan{}, false, nil
	}

	return plan, true, nil
}

func (c *PlanCache) Set(ctx context.Context, plan domain.CommissionPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan snapshot: %w", err)
	}

	if err := c.client.Set(ctx, planKey(plan.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write plan cache: %w", err)
	}

	return nil
}

func (c *PlanCache) Invalidate(ctx context.Context, planID uint) error {
	if err := c.client.Del(ctx, planKey(planID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate plan cache: %w", err)
	}

	return nil
}
