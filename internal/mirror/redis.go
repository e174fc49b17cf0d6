package mirror

import (
	"context"
	"errors"
	"fmt"

	"miru/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps the list as a JSON string under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zerolog.Logger
}

func NewRedisStore(client *redis.Client, key string, logger *zerolog.Logger) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

func (s *RedisStore) Read(ctx context.Context) ([]models.Booking, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decode(val, s.key, s.logger), nil
}

func (s *RedisStore) Write(ctx context.Context, bookings []models.Booking) error {
	data, err := encode(bookings)
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
