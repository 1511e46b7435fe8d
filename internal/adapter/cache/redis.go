package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"coinledger/internal/domain/model"
	"coinledger/internal/domain/port"
)

const latestRateKey = "rate:latest"

// RedisAdapter keeps the single last-known rate under a fixed key; every
// save overwrites the previous record.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(addr, password string, db int) (*RedisAdapter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisAdapter{client: client}, nil
}

func (a *RedisAdapter) SaveLatest(ctx context.Context, rate model.Rate) error {
	data, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to marshal rate: %w", err)
	}
	if err := a.client.Set(ctx, latestRateKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set latest rate in redis: %w", err)
	}
	return nil
}

func (a *RedisAdapter) LoadLatest(ctx context.Context) (*model.Rate, error) {
	data, err := a.client.Get(ctx, latestRateKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest rate from redis: %w", err)
	}

	var rate model.Rate
	if err := json.Unmarshal(data, &rate); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate: %w", err)
	}
	return &rate, nil
}

func (a *RedisAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

func (a *RedisAdapter) Close() error {
	return a.client.Close()
}

var _ port.RateCache = (*RedisAdapter)(nil)
