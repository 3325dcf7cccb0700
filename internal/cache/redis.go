package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nontawat/roombot/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	scheduleTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, scheduleTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		scheduleTTL: scheduleTTL,
	}
}

// AcquireSlotHold takes a short-lived exclusive hold on a slot while its user
// finishes the title/organizer steps. Advisory only: the authoritative check
// stays in the booking repository.
func (c *RedisCache) AcquireSlotHold(ctx context.Context, roomID int64, date, start string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotHoldKey(roomID, date, start), "held", ttl).Result()
}

func (c *RedisCache) ReleaseSlotHold(ctx context.Context, roomID int64, date, start string) error {
	return c.client.Del(ctx, slotHoldKey(roomID, date, start)).Err()
}

// GetDaySchedule returns the cached status-view payload for a date, or nil
// when there is no cached copy.
func (c *RedisCache) GetDaySchedule(ctx context.Context, date string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, dayScheduleKey(date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) SetDaySchedule(ctx context.Context, date string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dayScheduleKey(date), data, c.scheduleTTL).Err()
}

// InvalidateDaySchedule drops the cached status view after a booking is
// created or cancelled on that date.
func (c *RedisCache) InvalidateDaySchedule(ctx context.Context, date string) error {
	return c.client.Del(ctx, dayScheduleKey(date)).Err()
}

func slotHoldKey(roomID int64, date, start string) string {
	return fmt.Sprintf("hold:room:%d:%s:%s", roomID, date, start)
}

func dayScheduleKey(date string) string {
	return fmt.Sprintf("cache:schedule:%s", date)
}
