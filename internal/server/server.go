package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/thescaler/shortener/internal/analytics"
	"github.com/thescaler/shortener/internal/api"
	"github.com/thescaler/shortener/internal/config"
	"github.com/thescaler/shortener/internal/middleware"
	"github.com/thescaler/shortener/internal/observability"
	"github.com/thescaler/shortener/internal/repository"
	"github.com/thescaler/shortener/internal/service"
)

const serviceName = "shortener-gateway"

// redisPinger adapts *redis.Client to api.CacheInterface.
type redisPinger struct{ client *redis.Client }

func (r *redisPinger) Ping(ctx context.Context) error {
	if r.client == nil {
		return redis.ErrClosed
	}
	return r.client.Ping(ctx).Err()
}

// NewRouter initializes all dependencies and returns a configured Gin router.
// This is useful for testing where you don't need the full HTTP server.
// cache may be nil; the service then runs store-only.
func NewRouter(cfg *config.Config, db *pgxpool.Pool, cache *redis.Client, obs *observability.Observability, recorder *analytics.Recorder) *gin.Engine {
	urlRepo := repository.NewURLRepository(db)
	urlCache := repository.NewURLCache(cache, cfg.Cache.TTL, obs.Logger)
	urlService := service.NewURLService(urlRepo, urlCache, recorder, obs.Logger)
	handler := api.NewHandler(urlService, db, &redisPinger{client: cache}, obs.Logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.Logging(obs.Logger))
	r.Use(middleware.Metrics(obs.MeterProvider.Meter(serviceName), obs.Logger))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})))

	handler.RegisterRoutes(r)
	return r
}

// NewServer initializes all dependencies and returns a configured HTTP server.
// This includes the router plus HTTP server settings (timeouts, address, etc.).
func NewServer(cfg *config.Config, db *pgxpool.Pool, cache *redis.Client, obs *observability.Observability, recorder *analytics.Recorder) *http.Server {
	router := NewRouter(cfg, db, cache, obs, recorder)

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
