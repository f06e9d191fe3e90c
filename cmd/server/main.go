package main // Entry point package

import (
	"context"   // root context cancelled on shutdown
	"errors"    // distinguishes a clean server close
	"log"       // used only before the zap logger exists
	"net/http"  // http.ErrServerClosed
	"os"        // signal handling
	"os/signal" // signal handling
	"syscall"   // SIGTERM
	"time"      // shutdown timeout

	"github.com/joho/godotenv"                                // .env loading for local runs
	"github.com/labstack/echo/v4"                             // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"           // recover and request id
	"github.com/prometheus/client_golang/prometheus"          // metrics registry
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp" // /metrics handler
	"go.uber.org/zap"                                         // structured logging

	"github.com/iliyamo/spa-booking/internal/booking"
	"github.com/iliyamo/spa-booking/internal/config"
	"github.com/iliyamo/spa-booking/internal/database"
	"github.com/iliyamo/spa-booking/internal/handler"
	"github.com/iliyamo/spa-booking/internal/logging"
	"github.com/iliyamo/spa-booking/internal/metrics"
	"github.com/iliyamo/spa-booking/internal/middleware"
	"github.com/iliyamo/spa-booking/internal/queue"
	"github.com/iliyamo/spa-booking/internal/repository"
	"github.com/iliyamo/spa-booking/internal/router"
	publisher "github.com/iliyamo/spa-booking/internal/service"
	"github.com/iliyamo/spa-booking/internal/spaapi"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine outside local development
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		logger.Fatal("redis unavailable", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("mysql unavailable", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBookingMetrics(reg)

	api := spaapi.New(cfg.Backend, logger.Named("spaapi"), m)
	attempts := repository.NewAttemptRepo(db)

	deps := booking.Deps{Ledger: attempts, Metrics: m, Log: logger.Named("booking")}
	if config.EventsEnabled() {
		deps.Events = publisher.New(config.AMQPURL(), logger.Named("rabbitmq"))
		consumer := queue.NewConsumer(config.AMQPURL(), "logs", logger.Named("booking-consumer"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	store := booking.NewStore(rdb, cfg.Booking.Prefix, cfg.Booking.DraftTTL, cfg.Booking.IntentTTL)
	catalog := booking.NewCatalog(api, rdb, cfg.Booking.CatalogTTL, cfg.Booking.Prefix, logger.Named("catalog"))
	benefits := booking.NewBenefitResolver(api, logger.Named("benefits"))
	drafts := booking.NewDrafts(store, catalog, benefits)

	submitDeps := deps
	submitDeps.LockTTL = cfg.Booking.SubmitLockTTL
	submitter := booking.NewSubmitter(api, catalog, store, submitDeps)
	settleDeps := deps
	settleDeps.LockTTL = cfg.Booking.SettleLockTTL
	coordinator := booking.NewCoordinator(api, store, cfg.Culqi, settleDeps)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger.Named("http")))

	router.RegisterRoutes(e, handler.Ready(map[string]handler.Pinger{
		"redis": handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		"mysql": handler.PingFunc(db.PingContext),
	}))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	router.RegisterCatalog(e,
		handler.NewCatalogHandler(catalog, logger.Named("handler")),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger.Named("cache")),
	)
	attemptHandler := handler.NewAttemptHandler(attempts, logger.Named("handler"))
	router.RegisterPatient(e,
		handler.NewBookingHandler(drafts, benefits, submitter, coordinator, logger.Named("handler")),
		attemptHandler,
		cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.Named("ratelimit")),
	)
	router.RegisterAdmin(e, attemptHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("backend", cfg.Backend.BaseURL))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
