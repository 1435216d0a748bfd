package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	analyticshandler "linkdeck/internal/analytics/handler"
	analyticsmetrics "linkdeck/internal/analytics/metrics"
	"linkdeck/internal/analytics/publisher"
	"linkdeck/internal/analytics/recorder"
	analyticsstore "linkdeck/internal/analytics/store"
	"linkdeck/internal/clientcontext"
	"linkdeck/internal/clientcontext/geo"
	ccmetrics "linkdeck/internal/clientcontext/metrics"
	jwttoken "linkdeck/internal/jwt_token"
	"linkdeck/internal/platform/config"
	"linkdeck/internal/platform/httpserver"
	"linkdeck/internal/platform/logger"
	platformredis "linkdeck/internal/platform/redis"
	"linkdeck/internal/profile"
	ratelimitmetrics "linkdeck/internal/ratelimit/metrics"
	ratelimitmw "linkdeck/internal/ratelimit/middleware"
	ratelimitmodels "linkdeck/internal/ratelimit/models"
	ratelimitservice "linkdeck/internal/ratelimit/service"
	"linkdeck/internal/ratelimit/store/counter"
	linkhandler "linkdeck/internal/shortlink/handler"
	linkmetrics "linkdeck/internal/shortlink/metrics"
	linkservice "linkdeck/internal/shortlink/service"
	linkstore "linkdeck/internal/shortlink/store"
	httptransport "linkdeck/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err.Error())
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("failed to ping database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores fall back to memory when no backing service is configured.
	var links linkstore.Store
	var events analyticsstore.Store
	if db != nil {
		links = linkstore.NewPostgres(db)
		events = analyticsstore.NewPostgres(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		links = linkstore.NewMemoryStore()
		events = analyticsstore.NewMemoryStore()
	}

	var counters ratelimitservice.CounterStore
	var geoCache geo.CacheStore
	if redisClient != nil {
		counters = counter.NewRedisStore(redisClient.Client)
		geoCache = geo.NewRedisStore(redisClient.Client)
	} else {
		counters = counter.NewMemoryStore()
		geoCache = geo.NewMemoryStore()
	}

	limitSvc, err := ratelimitservice.New(counters,
		ratelimitservice.WithLogger(log),
		ratelimitservice.WithMetrics(ratelimitmetrics.New()),
	)
	if err != nil {
		log.Error("failed to build rate limiter", "error", err.Error())
		os.Exit(1)
	}

	visitorMetrics := ccmetrics.New()
	geoSvc := geo.NewService(
		geo.NewHTTPClient(cfg.Geo.BaseURL, cfg.Geo.Timeout),
		geoCache,
		geo.WithTTL(cfg.Geo.CacheTTL),
		geo.WithLogger(log),
		geo.WithMetrics(visitorMetrics),
	)
	visitors := clientcontext.NewResolver(geoSvc,
		clientcontext.WithLogger(log),
		clientcontext.WithMetrics(visitorMetrics),
	)

	eventMetrics := analyticsmetrics.New()
	recorderOpts := []recorder.Option{
		recorder.WithLogger(log),
		recorder.WithMetrics(eventMetrics),
	}
	var kafkaPub *publisher.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err = publisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, publisher.WithLogger(log))
		if err != nil {
			log.Error("failed to build kafka publisher", "error", err.Error())
			os.Exit(1)
		}
		recorderOpts = append(recorderOpts, recorder.WithPublisher(kafkaPub))
	}
	rec := recorder.New(events, recorderOpts...)

	linkSvc, err := linkservice.New(links, profile.NewMemoryStore(), linkservice.WithLogger(log))
	if err != nil {
		log.Error("failed to build link service", "error", err.Error())
		os.Exit(1)
	}

	jwtSvc := jwttoken.NewJWTService(cfg.JWTSigningKey, "linkdeck", "linkdeck-api")

	router := httptransport.NewRouter(httptransport.Deps{
		Links:     linkhandler.New(linkSvc, visitors, rec, cfg.NotFoundURL, log, linkmetrics.New()),
		Analytics: analyticshandler.New(visitors, rec, events, log, eventMetrics),
		RateLimit: ratelimitmw.New(limitSvc, log, ratelimitmw.WithDisabled(cfg.RateLimit.Disabled)),
		RateCfg: ratelimitmodels.Config{
			Window:      cfg.RateLimit.Window,
			MaxRequests: cfg.RateLimit.MaxRequests,
		},
		Validator: jwtSvc,
		Logger:    log,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting linkdeck", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(ctx); err != nil {
			log.Error("failed to flush click stream", "error", err.Error())
		}
	}
}
