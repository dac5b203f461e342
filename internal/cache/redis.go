package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/models"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// LoadConfigFromEnv loads Redis configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("CACHE_TTL", "5m"))

	return &Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
	}
}

// GetClient returns the global Redis client (singleton pattern)
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		config := LoadConfigFromEnv()

		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Password:     config.Password,
			DB:           config.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}

		// Required for managed Redis providers
		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("failed to connect to Redis: %w", err)
			return
		}
	})

	return client, clientErr
}

// Close closes the Redis client
func Close() {
	if client != nil {
		client.Close()
	}
}

// HealthCheck performs a health check on the Redis connection
func HealthCheck(ctx context.Context) error {
	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("Redis client not initialized: %w", err)
	}

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}

	return nil
}

// RedisCache caches network documents in Redis as JSON payloads.
// Redis failures degrade to cache misses; they never fail a request.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get retrieves a cached network document
func (c *RedisCache) Get(ctx context.Context, id string) (*models.Network, bool) {
	data, err := c.client.Get(ctx, networkKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("network_id", id).Msg("redis get failed")
		return nil, false
	}

	var network models.Network
	if err := json.Unmarshal(data, &network); err != nil {
		log.Warn().Err(err).Str("network_id", id).Msg("corrupt cached network, dropping")
		c.client.Del(ctx, networkKey(id))
		return nil, false
	}
	return &network, true
}

// Set caches a network document
func (c *RedisCache) Set(ctx context.Context, network *models.Network) {
	data, err := json.Marshal(network)
	if err != nil {
		log.Warn().Err(err).Str("network_id", network.ID).Msg("unable to marshal network for cache")
		return
	}
	if err := c.client.Set(ctx, networkKey(network.ID), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("network_id", network.ID).Msg("redis set failed")
	}
}

// Invalidate drops a cached network document
func (c *RedisCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, networkKey(id)).Err(); err != nil {
		log.Warn().Err(err).Str("network_id", id).Msg("redis del failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
