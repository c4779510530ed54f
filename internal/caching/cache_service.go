package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Analysis payload caching, keyed by organization and call.
	GetAnalysis(ctx context.Context, organizationID, callID uuid.UUID) (json.RawMessage, error)
	SetAnalysis(ctx context.Context, organizationID, callID uuid.UUID, payload json.RawMessage, ttl time.Duration) error

	// InvalidateOrganization drops every cached key under the organization,
	// analysis payloads included.
	InvalidateOrganization(ctx context.Context, organizationID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// SetString is a write-and-expire probe, used by the readiness check.
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port style addresses from env.
	parsedAddr := addr
	if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
		parsedAddr = hostPort
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	return &redisCacheService{client: client}
}

func analysisKey(organizationID, callID uuid.UUID) string {
	return fmt.Sprintf("salesops:analysis:%s:%s", organizationID.String(), callID.String())
}

func (r *redisCacheService) GetAnalysis(ctx context.Context, organizationID, callID uuid.UUID) (json.RawMessage, error) {
	data, err := r.client.Get(ctx, analysisKey(organizationID, callID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (r *redisCacheService) SetAnalysis(ctx context.Context, organizationID, callID uuid.UUID, payload json.RawMessage, ttl time.Duration) error {
	return r.client.Set(ctx, analysisKey(organizationID, callID), []byte(payload), ttl).Err()
}

func (r *redisCacheService) InvalidateOrganization(ctx context.Context, organizationID uuid.UUID) error {
	pattern := fmt.Sprintf("salesops:*:%s:*", organizationID.String())
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("salesops:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
