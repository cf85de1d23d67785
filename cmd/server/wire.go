package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"swift-dispatch/config"
	"swift-dispatch/internal/auth"
	"swift-dispatch/internal/delivery"
	"swift-dispatch/internal/dispatch"
	"swift-dispatch/internal/driver"
	"swift-dispatch/internal/jwt"
	"swift-dispatch/internal/performance"
	"swift-dispatch/internal/redis"
	"swift-dispatch/internal/store"
	"swift-dispatch/internal/store/memory"
	"swift-dispatch/internal/store/postgres"
)

type AppContext struct {
	DB     *sqlx.DB // nil when running on the memory backend
	Config *config.Config
	Redis  *goredis.Client
	Router *gin.Engine

	// Infrastructure
	JWTService       *jwt.Service
	LocationCache    *redis.DriverLocationCache
	IdempotencyStore *redis.IdempotencyStore
	RateLimiter      *redis.RateLimiter

	DeliveryStore store.DeliveryStore
	DriverStore   store.DriverStore

	DeliveryService delivery.Service
	DriverService   driver.Service
	DispatchService dispatch.Service
	AuthService     auth.Service

	DeliveryHandler    *delivery.Handler
	DriverHandler      *driver.Handler
	DispatchHandler    *dispatch.Handler
	PerformanceHandler *performance.Handler
	AuthHandler        *auth.Handler
}

func wireApp(cfg *config.Config) (*AppContext, error) {
	// ── Stores ──
	var (
		db            *sqlx.DB
		deliveryStore store.DeliveryStore
		driverStore   store.DriverStore
	)
	switch cfg.Store.Backend {
	case "postgres":
		var err error
		db, err = postgres.Connect(cfg.Postgres.DSN(), postgres.DefaultPoolConfig())
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.RunMigrationsUp(db); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		deliveryStore = postgres.NewDeliveryStore(db)
		driverStore = postgres.NewDriverStore(db)
	default:
		deliveryStore = memory.NewDeliveryStore()
		driverStore = memory.NewDriverStore()
	}

	// ── Redis ──
	var rdb *goredis.Client
	if cfg.Redis.URL != "" {
		opts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("redis parse url: %w", err)
		}
		rdb = goredis.NewClient(opts)
	} else {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// ── Infrastructure ──
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	locationCache := redis.NewDriverLocationCache(rdb, cfg.Driver.LocationCacheTTLSec)
	idempotencyStore := redis.NewIdempotencyStore(rdb, cfg.Driver.IdempotencyTTLSec)
	rateLimiter := redis.NewRateLimiter(rdb, cfg.RateLimiter.MaxRequests, cfg.RateLimiter.WindowSeconds)

	// ── Services ──
	deliveryService := delivery.NewService(deliveryStore)
	driverService := driver.NewService(driverStore, locationCache)
	dispatchService := dispatch.NewService(deliveryStore, driverStore)
	perfEngine := performance.NewEngine(driverStore)
	authService := auth.NewService(jwtService)

	// ── Handlers ──
	deliveryHandler := delivery.NewHandler(deliveryService)
	driverHandler := driver.NewHandler(driverService)
	dispatchHandler := dispatch.NewHandler(dispatchService)
	perfHandler := performance.NewHandler(perfEngine)
	authHandler := auth.NewHandler(authService)

	return &AppContext{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Router: gin.New(),

		JWTService:       jwtService,
		LocationCache:    locationCache,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,

		DeliveryStore: deliveryStore,
		DriverStore:   driverStore,

		DeliveryService: deliveryService,
		DriverService:   driverService,
		DispatchService: dispatchService,
		AuthService:     authService,

		DeliveryHandler:    deliveryHandler,
		DriverHandler:      driverHandler,
		DispatchHandler:    dispatchHandler,
		PerformanceHandler: perfHandler,
		AuthHandler:        authHandler,
	}, nil
}

func (a *AppContext) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	a.Redis.Close()
}

func (a *AppContext) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{}
	healthy := true

	if a.DB != nil {
		if err := a.DB.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["store"] = "memory"
	}

	if err := a.Redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": checks,
	})
}
