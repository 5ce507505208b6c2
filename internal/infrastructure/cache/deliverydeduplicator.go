package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// deliveryKeyPrefix is the prefix for webhook delivery claim keys
const deliveryKeyPrefix = "webhook_delivery:"

// DeliveryDeduplicator remembers webhook delivery ids for a while so a
// redelivered event can be acknowledged without being processed again.
type DeliveryDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeliveryDeduplicator(client *redis.Client, ttl time.Duration) *DeliveryDeduplicator {
	return &DeliveryDeduplicator{client: client, ttl: ttl}
}

// Format: webhook_delivery:{source}:{delivery_id}
func (d *DeliveryDeduplicator) buildKey(source, deliveryID string) string {
	return fmt.Sprintf("%s%s:%s", deliveryKeyPrefix, source, deliveryID)
}

// Claim atomically records the delivery. It returns false when the delivery
// was already claimed within the TTL.
func (d *DeliveryDeduplicator) Claim(ctx context.Context, source, deliveryID string) (bool, error) {
	acquired, err := d.client.SetNX(ctx, d.buildKey(source, deliveryID), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim delivery: %w", err)
	}
	return acquired, nil
}

// Release forgets a claim so the sender's retry gets processed.
func (d *DeliveryDeduplicator) Release(ctx context.Context, source, deliveryID string) error {
	if err := d.client.Del(ctx, d.buildKey(source, deliveryID)).Err(); err != nil {
		return fmt.Errorf("failed to release delivery: %w", err)
	}
	return nil
}

// NoopDeduplicator claims every delivery. Used when Redis is disabled.
type NoopDeduplicator struct{}

func (NoopDeduplicator) Claim(context.Context, string, string) (bool, error) {
	return true, nil
}

func (NoopDeduplicator) Release(context.Context, string, string) error {
	return nil
}
