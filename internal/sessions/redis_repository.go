package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "wanderlist:session:"

// RedisRepository keeps login and user sessions as JSON values whose Redis TTL
// matches the session expiry.
type RedisRepository struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisRepository(rdb *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+s.ID, payload, ttlUntil(s.ExpiresAt)).Err()
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := r.rdb.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := new(Session)
	if err := json.Unmarshal(payload, s); err != nil {
		return nil, err
	}
	if s.Expired(time.Now().UTC()) {
		return nil, r.Delete(ctx, id)
	}
	return s, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.prefix+id).Err()
}

// ttlUntil never returns zero; Redis treats a zero TTL as "keep forever".
func ttlUntil(expiresAt time.Time) time.Duration {
	if d := time.Until(expiresAt); d > 0 {
		return d
	}
	return time.Second
}
