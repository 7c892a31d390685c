package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gympulse/gateway/internal/api"
	"github.com/gympulse/gateway/internal/api/metrics"
	"github.com/gympulse/gateway/internal/api/middleware"
	"github.com/gympulse/gateway/internal/core/ports"
	"github.com/gympulse/gateway/internal/core/service"
	"github.com/gympulse/gateway/internal/infrastructure/apiclient"
	mongodb "github.com/gympulse/gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/gympulse/gateway/internal/infrastructure/db/redis"
	"github.com/gympulse/gateway/internal/infrastructure/queue"
	"github.com/gympulse/gateway/internal/infrastructure/tokenstore"
	"github.com/gympulse/gateway/internal/pkg/config"
	"github.com/gympulse/gateway/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "gympulse-gateway",
		Caller:  !cfg.IsProduction(),
	})

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("gateway stopped")
		os.Exit(1)
	}
	log.Info().Msg("gateway exited cleanly")
}

// run owns every resource the gateway opens. It returns instead of exiting so
// that deferred cleanups always run.
func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Token store ---
	var (
		slots    ports.TokenSlots
		rdb      *goredis.Client
		throttle middleware.Throttler
	)
	switch cfg.Session.TokenStore {
	case config.StoreRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("close redis")
			}
		}()
		rdb = client
		slots = redisdb.NewTokenSlots(client, cfg.Session.TokenTTL, log)
		throttle = redisdb.NewLoginThrottle(client, cfg.Session.LoginMaxPerMin)
	default:
		log.Warn().Msg("using in-memory token store; sessions will not survive a restart")
		slots = tokenstore.NewMemorySlots()
	}

	// --- Activity sinks ---
	sinks := service.MultiActivitySink{service.NewLogActivitySink(log)}
	var mdb *mongo.Database
	if cfg.Mongo.URI != "" {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Warn().Err(err).Msg("disconnect mongo")
			}
		}()
		activity := mongodb.NewActivityRepository(db, cfg.Session.ActivityRetention)
		if err := activity.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("ensure activity indexes")
		}
		audit := queue.NewDispatcher(0, activity, log)
		audit.Start(ctx)
		defer func() {
			stop()
			audit.Wait()
		}()
		sinks = append(sinks, audit)
		mdb = db
	}

	// --- Sessions ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clients := apiclient.NewFactory(cfg.API.BaseURL, cfg.API.Timeout, http.DefaultTransport, log)
	sessions := service.NewRegistry(slots, clients, cfg.Session.IdleTTL, cfg.Session.MaxSessions, log,
		service.WithActivitySink(sinks),
		service.WithStateListener(service.StateCounter(m.SessionTransition)),
	)
	m.ObserveSessions(sessions.Len)

	e, err := api.NewRouter(api.Deps{
		Config:   cfg,
		Sessions: sessions,
		Throttle: throttle,
		Redis:    rdb,
		Mongo:    mdb,
		Registry: reg,
		Metrics:  m,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("api", cfg.API.BaseURL).Msg("gateway listening")
		srvErrCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-srvErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
