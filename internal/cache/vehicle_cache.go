// Package cache provides a redis-backed read cache for vehicle detail
// lookups. The dashboard polls vehicles aggressively; caching detail reads
// keeps that traffic off Postgres. Every booking mutation invalidates the
// affected vehicle so the cached availability flag never outlives a write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rentals-service/internal/domain/vehicle"
)

type VehicleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewVehicleCache(client *redis.Client, ttl time.Duration) *VehicleCache {
	return &VehicleCache{client: client, ttl: ttl}
}

func vehicleKey(id int64) string {
	return fmt.Sprintf("vehicle:%d", id)
}

// GetVehicle returns the cached vehicle, or (nil, nil) on a miss.
func (c *VehicleCache) GetVehicle(ctx context.Context, id int64) (*vehicle.Vehicle, error) {
	data, err := c.client.Get(ctx, vehicleKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle from cache: %w", err)
	}

	var v vehicle.Vehicle
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode cached vehicle: %w", err)
	}

	return &v, nil
}

func (c *VehicleCache) SetVehicle(ctx context.Context, v *vehicle.Vehicle) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode vehicle for cache: %w", err)
	}

	if err := c.client.Set(ctx, vehicleKey(v.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache vehicle: %w", err)
	}

	return nil
}

func (c *VehicleCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, vehicleKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached vehicle: %w", err)
	}
	return nil
}
