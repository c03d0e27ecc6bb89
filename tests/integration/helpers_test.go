//go:build integration

package integration

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/clients/redis"
	"github.com/zatekoja/rarediseaseguide/pkg/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func testRedisConfig() config.RedisConfig {
	return config.RedisConfig{
		Host:     getEnv("TEST_REDIS_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_REDIS_PORT", 6379),
		Password: getEnv("TEST_REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("TEST_REDIS_DB", 0),
	}
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	cfg := testRedisConfig()
	client, err := redis.NewClient(context.Background(), &cfg)
	require.NoError(t, err, "Failed to create redis client")
	return client
}
