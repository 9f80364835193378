package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lexcase/lexcase-backend/config"
	"github.com/lexcase/lexcase-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// ClaimIdempotencyKey claims a side-effect dispatch key with SETNX.
// Returns true when this caller is the first to claim the key within the TTL.
// The claim is only a fast path: the database unique index on dedup keys
// remains the authority, so a lost claim never duplicates a row.
func ClaimIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if client == nil {
		// No Redis configured: fall through to the database dedup path
		return true, nil
	}
	ok, err := client.SetNX(ctx, fmt.Sprintf("idem:%s", key), "dispatched", ttl).Result()
	if err != nil {
		logger.Warn("Idempotency key claim failed, falling back to database dedup", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return true, nil
	}
	return ok, nil
}

// ReleaseIdempotencyKey drops a claimed key so a failed dispatch can be retried
func ReleaseIdempotencyKey(ctx context.Context, key string) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, fmt.Sprintf("idem:%s", key)).Err()
}

// BlacklistToken adds a token to the blacklist
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil {
		// No Redis configured: the token cannot be revoked early and
		// simply falls out at its natural expiry
		logger.Warn("Redis unavailable, token not blacklisted", nil)
		return nil
	}

	logger.Debug("Adding token to blacklist", map[string]interface{}{
		"expiry": expiry.String(),
	})

	key := fmt.Sprintf("blacklist:%s", token)
	if err := client.Set(ctx, key, "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, nil
	}
	key := fmt.Sprintf("blacklist:%s", token)
	_, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
