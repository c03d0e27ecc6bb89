package bootstrap

import (
	"context"
	"fmt"

	"github.com/zatekoja/rarediseaseguide/internal/adapters/cache"
	"github.com/zatekoja/rarediseaseguide/internal/application/services"
	"github.com/zatekoja/rarediseaseguide/internal/domain/providers"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/clients/orphadata"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/clients/redis"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
	"github.com/zatekoja/rarediseaseguide/pkg/config"
	"github.com/zatekoja/rarediseaseguide/pkg/retry"
)

const redisKeyPrefix = "rarediseaseguide:"

// Resolver bundles the resolver with the resources it owns
type Resolver struct {
	Service *services.DiseaseResolverService
	Index   *services.DiseaseSearchIndex

	redisClient *redis.Client
}

// Close releases the cache backend connection, if any
func (r *Resolver) Close() error {
	if r.redisClient == nil {
		return nil
	}
	return r.redisClient.Close()
}

// NewResolver wires the Orphadata client, catalog index and cache backend from cfg
func NewResolver(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*Resolver, error) {
	logger := observability.GetLogger()

	client := orphadata.NewClient(cfg.Orphadata.BaseURL, cfg.Orphadata.Timeout)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Orphadata.LoadAttempts
	index := services.NewDiseaseSearchIndex(client, retryCfg, metrics)

	resolver := &Resolver{Index: index}

	var cacheProvider providers.CacheProvider
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
		}
		resolver.redisClient = redisClient
		cacheProvider = cache.NewRedisAdapter(redisClient, redisKeyPrefix)
		logger.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Using Redis cache backend")
	default:
		cacheProvider = cache.NewMemoryAdapter()
		logger.Info().Msg("Using in-memory cache backend")
	}

	resolver.Service = services.NewDiseaseResolverService(
		client,
		index,
		cacheProvider,
		cfg.Cache.TTL,
		cfg.Orphadata.DefaultLang,
		metrics,
	)
	return resolver, nil
}
