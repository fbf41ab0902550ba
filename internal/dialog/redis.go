package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"quicksell-bot/internal/models"
)

const keyPrefix = "quicksell:session:"

// RedisStore keeps sessions in Redis as JSON. Expiry is left to Redis key
// TTLs, so sessions survive restarts and are shared between replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}

func (r *RedisStore) Get(ctx context.Context, chatID int64) (*models.Session, error) {
	b, err := r.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.Session{}, nil
	}
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal(b, &s); err != nil {
		// unreadable state is dropped rather than wedging the chat
		_ = r.client.Del(ctx, sessionKey(chatID)).Err()
		return &models.Session{}, nil
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, chatID int64, s *models.Session) error {
	if s.Idle() {
		return r.Clear(ctx, chatID)
	}
	s.UpdatedAt = time.Now()
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(chatID), b, r.ttl).Err()
}

func (r *RedisStore) Clear(ctx context.Context, chatID int64) error {
	return r.client.Del(ctx, sessionKey(chatID)).Err()
}
