// Package main is the entry point for the hn-pulse service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"hn-pulse/aggregator"
	"hn-pulse/config"
	"hn-pulse/consumer"
	"hn-pulse/domain"
	"hn-pulse/driver"
	"hn-pulse/fetcher"
	"hn-pulse/gateway"
	"hn-pulse/rest"
	"hn-pulse/retry"
	"hn-pulse/server"
	"hn-pulse/store"
	"hn-pulse/usecase"
	"hn-pulse/utils/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Load configuration
	cfg := config.NewConfig()

	// Initialize structured logger
	logger.Init(cfg.LogLevel)

	slog.InfoContext(ctx, "configuration loaded",
		"redis_url", cfg.RedisURL,
		"stream_key", cfg.StreamKey,
		"poll_interval", cfg.PollInterval,
		"history_retention", cfg.HistoryRetention,
		"http_port", cfg.HTTPPort)

	// Initialize Redis driver
	redisDriver, err := driver.NewRedisDriverWithURL(cfg.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisDriver.Close()

	// Publishing side
	streamGateway := gateway.NewStreamGateway(redisDriver)
	retrier := retry.NewRetrier(retry.DefaultConfig(), nil, slog.Default())
	publishUsecase := usecase.NewPublishStoryUsecase(
		streamGateway,
		domain.StreamKey(cfg.StreamKey),
		retrier,
		slog.Default(),
	)

	if err := publishUsecase.EnsureConsumerGroup(ctx, domain.ConsumerGroup(cfg.ConsumerGroup)); err != nil {
		slog.ErrorContext(ctx, "failed to create consumer group", "error", err)
		os.Exit(1)
	}

	hnClient := fetcher.NewClient(cfg.HNBaseURL, cfg.FetchTimeout)
	storyFetcher := fetcher.New(fetcher.Config{
		PollInterval:    cfg.PollInterval,
		TopStoriesLimit: cfg.TopStoriesLimit,
		SeenCacheSize:   cfg.SeenCacheSize,
	}, hnClient, publishUsecase, slog.Default())

	// Aggregation side
	history := store.New(cfg.HistoryRetention)
	agg := aggregator.New(aggregator.Config{
		StoriesPerBucket: cfg.StoriesPerBucket,
	}, history, slog.Default())

	consumerCfg := consumer.DefaultConfig()
	consumerCfg.RedisURL = cfg.RedisURL
	consumerCfg.StreamKey = cfg.StreamKey
	consumerCfg.GroupName = cfg.ConsumerGroup
	consumerCfg.ConsumerName = cfg.ConsumerName

	eventHandler := consumer.NewStoryEventHandler(agg, slog.Default())
	streamConsumer, err := consumer.NewConsumer(consumerCfg, eventHandler, slog.Default())
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}
	defer streamConsumer.Close()

	// Query API
	handler := rest.NewHandler(history, publishUsecase, rest.Config{
		TopN:         cfg.TopN,
		StoryLimit:   cfg.StoryLimit,
		SourcesLimit: cfg.SourcesLimit,
	}, slog.Default())
	srv := server.New(handler, cfg.HTTPPort, slog.Default())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return storyFetcher.Run(gCtx)
	})

	g.Go(func() error {
		return streamConsumer.Run(gCtx)
	})

	g.Go(func() error {
		return agg.RunFinalizeTicker(gCtx)
	})

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("service exited properly")
}
