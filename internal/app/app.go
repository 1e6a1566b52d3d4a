package app

import (
	"context"
	"fmt"

	"github.com/trendlens/backend/config"
	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/infrastructure/lock"
	"github.com/trendlens/backend/internal/infrastructure/openai"
	"github.com/trendlens/backend/internal/infrastructure/reddit"
	"github.com/trendlens/backend/internal/infrastructure/store"
	"github.com/trendlens/backend/internal/platform/logger"
	"github.com/trendlens/backend/internal/usecase"
)

// App bundles the wired trend pipeline and the resources it holds open
type App struct {
	Trends  *usecase.TrendService
	closers []func() error
}

// Build wires the feed client, classifier, product store and run lock from cfg
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{}

	repo, closeStore, err := store.New(ctx, store.Options{
		Driver:          cfg.Store.Driver,
		DSN:             cfg.Store.DSN,
		Table:           cfg.Store.Table,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("opening product store: %w", err)
	}
	app.closers = append(app.closers, closeStore)

	runLock, err := buildLock(ctx, cfg.Lock, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closer, ok := runLock.(interface{ Close() error }); ok {
		app.closers = append(app.closers, closer.Close)
	}

	fetcher := reddit.NewClient(reddit.ClientConfig{
		ClientID:          cfg.Feed.ClientID,
		ClientSecret:      cfg.Feed.ClientSecret,
		UserAgent:         cfg.Feed.UserAgent,
		BaseURL:           cfg.Feed.BaseURL,
		AuthURL:           cfg.Feed.AuthURL,
		RequestsPerMinute: cfg.Feed.RequestsPerMinute,
	}, log)

	classifier := openai.NewClient(openai.ClientConfig{
		Endpoint:    cfg.Classifier.Endpoint,
		APIKey:      cfg.Classifier.APIKey,
		Deployment:  cfg.Classifier.Deployment,
		Model:       cfg.Classifier.Model,
		APIVersion:  cfg.Classifier.APIVersion,
		MaxTokens:   cfg.Classifier.MaxTokens,
		Temperature: cfg.Classifier.Temperature,
		TopP:        cfg.Classifier.TopP,
		Timeout:     cfg.Classifier.Timeout,
	}, log)

	app.Trends = usecase.NewTrendService(fetcher, classifier, repo, runLock, usecase.TrendServiceConfig{
		Sources:        cfg.Feed.Sources,
		PostLimit:      cfg.Feed.PostLimit,
		VocabularyPath: cfg.Extractor.VocabularyPath,
		StopwordsPath:  cfg.Extractor.StopwordsPath,
		CandidateLimit: cfg.Extractor.Limit,
	}, log)

	log.Info("trend pipeline wired",
		"store_driver", cfg.Store.Driver,
		"store_table", cfg.Store.Table,
		"sources", cfg.Feed.Sources,
		"deployment", cfg.Classifier.Deployment,
		"distributed_lock", cfg.Lock.RedisAddr != "",
	)
	return app, nil
}

// Close releases every resource opened by Build, returning the first error
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// buildLock uses redis when an address is configured and a process-local lock otherwise
func buildLock(ctx context.Context, cfg config.LockConfig, log *logger.Logger) (domain.RunLock, error) {
	if cfg.RedisAddr == "" {
		return lock.NewLocalLock(), nil
	}
	redisLock, err := lock.NewRedisLock(ctx, lock.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Key:      cfg.Key,
		TTL:      cfg.TTL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("connecting run lock: %w", err)
	}
	return redisLock, nil
}
