package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RedisEventsChannel  = "rideflow:events"
	driverLocationTTL   = time.Hour
	driverLocationKeyFm = "driver:location:%d"
)

// RedisSink mirrors every broadcast onto a pub/sub channel and keeps
// the last known driver location under a per-driver key.
type RedisSink struct {
	client  *redis.Client
	channel string
}

// InitRedis connects to redisURL and checks the connection
func InitRedis(ctx context.Context, redisURL string) (*RedisSink, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return NewRedisSink(client), nil
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client, channel: RedisEventsChannel}
}

func (s *RedisSink) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	if loc, ok := evt.Data.(*DriverLocationEvent); ok {
		if err := s.SetDriverLocation(ctx, loc); err != nil {
			return err
		}
	}

	return s.client.Publish(ctx, s.channel, data).Err()
}

// SetDriverLocation stores driver location in Redis
func (s *RedisSink) SetDriverLocation(ctx context.Context, loc *DriverLocationEvent) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(driverLocationKeyFm, loc.DriverID)
	return s.client.Set(ctx, key, data, driverLocationTTL).Err()
}

// GetDriverLocation retrieves driver location from Redis
func (s *RedisSink) GetDriverLocation(ctx context.Context, driverID uint) (*DriverLocationEvent, error) {
	key := fmt.Sprintf(driverLocationKeyFm, driverID)
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var loc DriverLocationEvent
	if err := json.Unmarshal([]byte(data), &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
