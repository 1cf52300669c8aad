package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/flybulgarien/internal/aggregator"
	"github.com/dharmasatrya/flybulgarien/internal/config"
	"github.com/dharmasatrya/flybulgarien/internal/handler"
	"github.com/dharmasatrya/flybulgarien/internal/logging"
	"github.com/dharmasatrya/flybulgarien/internal/metrics"
	"github.com/dharmasatrya/flybulgarien/internal/parser"
	"github.com/dharmasatrya/flybulgarien/internal/providers"
	"github.com/dharmasatrya/flybulgarien/internal/scraper"
	"github.com/dharmasatrya/flybulgarien/internal/sink"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.New(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	reg := metrics.NewRegistry()

	limiter, err := cfg.RateLimiter()
	if err != nil {
		logger.Error("failed to build rate limiter", "error", err)
		os.Exit(1)
	}
	fetcher := scraper.NewFetcher(scraper.Config{
		UserAgent:      cfg.Carrier.UserAgent,
		ConnectTimeout: cfg.Carrier.ConnectTimeout,
		ReadTimeout:    cfg.Carrier.ReadTimeout,
		RateLimiter:    limiter,
		Metrics:        reg,
	})
	provider := providers.NewFlyBulgarienProvider(cfg.ProviderConfig(), fetcher)

	recordParser, err := parser.NewParser(parser.DefaultParserConfig())
	if err != nil {
		logger.Error("failed to build parser", "error", err)
		os.Exit(1)
	}

	agg := aggregator.NewAggregator(provider, aggregator.Config{
		Extractor: parser.NewExtractor(cfg.TableConfig()),
		Parser:    recordParser,
		Metrics:   reg,
		Logger:    logger,
	})

	var resultSink sink.Sink
	if cfg.Redis.Enabled {
		redisSink, err := sink.NewRedisSink(cfg.SinkConfig())
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		resultSink = redisSink
		logger.Info("redis result sink enabled", "addr", cfg.Redis.Addr, "key", cfg.Redis.Key, "ttl", cfg.Redis.TTL)
	} else {
		resultSink = sink.NewNoOpSink()
		logger.Info("result sink disabled")
	}
	defer resultSink.Close()

	searchHandler := handler.NewSearchHandler(agg, provider, resultSink, handler.Options{
		StrictIATA: cfg.Carrier.StrictIATA,
		Logger:     logger,
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	api.GET("/airports", searchHandler.Airports)
	e.GET("/health", handler.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(reg.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting flight search server", "port", cfg.HTTP.Port)
		if err := e.Start(":" + cfg.HTTP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
