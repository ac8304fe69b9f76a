package caching

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "rentflow:"

type CacheService interface {
	// Property read cache. A miss returns nil, nil.
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error

	// Named locks. AcquireLock returns a token that must be handed back to ReleaseLock.
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, name, token string) error

	SetSweepSummary(ctx context.Context, result *models.SweepResult) error
	GetSweepSummary(ctx context.Context) (*models.SweepResult, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
	logger *zap.Logger
}

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NormalizeAddr strips a redis:// or rediss:// scheme so the value can be used as Options.Addr.
func NormalizeAddr(addr string) string {
	for _, scheme := range []string{"redis://", "rediss://"} {
		if strings.HasPrefix(addr, scheme) {
			return strings.TrimPrefix(addr, scheme)
		}
	}
	return addr
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     NormalizeAddr(addr),
		Password: password,
		DB:       db,
	})
}

func NewRedisCacheService(client *redis.Client, logger *zap.Logger) CacheService {
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis ping failed on initialization", zap.Error(err), zap.String("addr", client.Options().Addr))
	}
	return &redisCacheService{client: client, logger: logger}
}

func propertyKey(id uuid.UUID) string {
	return keyPrefix + "property:" + id.String()
}

func lockKey(name string) string {
	return keyPrefix + "lock:" + name
}

func sweepSummaryKey() string {
	return keyPrefix + "sweep:last"
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var p models.Property
	ok, err := r.getJSON(ctx, propertyKey(id), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (r *redisCacheService) SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error {
	return r.setJSON(ctx, propertyKey(property.ID), property, ttl)
}

func (r *redisCacheService) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, propertyKey(id)).Err()
}

func (r *redisCacheService) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, lockKey(name), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (r *redisCacheService) ReleaseLock(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, r.client, []string{lockKey(name)}, token).Err()
}

func (r *redisCacheService) SetSweepSummary(ctx context.Context, result *models.SweepResult) error {
	return r.setJSON(ctx, sweepSummaryKey(), result, 0)
}

func (r *redisCacheService) GetSweepSummary(ctx context.Context) (*models.SweepResult, error) {
	var res models.SweepResult
	ok, err := r.getJSON(ctx, sweepSummaryKey(), &res)
	if err != nil || !ok {
		return nil, err
	}
	return &res, nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
