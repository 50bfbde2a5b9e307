package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/garyellow/ut-course-catalog-go/internal/buildinfo"
	"github.com/garyellow/ut-course-catalog-go/internal/config"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
	"github.com/garyellow/ut-course-catalog-go/internal/logger"
	"github.com/garyellow/ut-course-catalog-go/internal/metrics"
	"github.com/garyellow/ut-course-catalog-go/internal/r2client"
	"github.com/garyellow/ut-course-catalog-go/internal/scraper"
	"github.com/garyellow/ut-course-catalog-go/internal/scraper/utokyo"
	"github.com/garyellow/ut-course-catalog-go/internal/sentry"
	"github.com/garyellow/ut-course-catalog-go/internal/storage"
)

// environment holds the components shared by every subcommand.
type environment struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	cache   *storage.DB // Opened on first use; nil when caching is disabled
}

// env is set by the root command before any subcommand runs.
var env *environment

func setup(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logger.NewWithOptions(logger.Options{
		Level:               cfg.LogLevel,
		Writer:              os.Stderr,
		BetterStackToken:    cfg.BetterStack.Token,
		BetterStackEndpoint: cfg.BetterStack.Endpoint,
	})

	if cfg.Sentry.Enabled {
		err := sentry.Initialize(sentry.Config{
			Token:       cfg.Sentry.Token,
			Host:        cfg.Sentry.Host,
			Environment: cfg.Sentry.Environment,
			Release:     buildinfo.Version,
			SampleRate:  cfg.Sentry.SampleRate,
		})
		if err != nil {
			log.WithError(err).WarnContext(ctx, "Failed to initialize Sentry, error tracking disabled")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &environment{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(registry),
	}, nil
}

// close writes the metrics textfile and flushes remote sinks.
func (e *environment) close(ctx context.Context) {
	if err := e.metrics.WriteToTextfile(e.cfg.MetricsTextfile); err != nil {
		e.log.WithError(err).WarnContext(ctx, "Failed to write metrics textfile")
	}
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.log.WithError(err).WarnContext(ctx, "Failed to close response cache")
		}
		e.cache = nil
	}
	if sentry.IsEnabled() {
		sentry.Flush(config.FlushTimeout)
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.FlushTimeout)
	defer cancel()
	_ = e.log.Shutdown(flushCtx)
}

// openCache opens the response cache unless it is disabled.
func (e *environment) openCache(ctx context.Context) (*storage.DB, error) {
	if !e.cfg.CacheEnabled {
		return nil, nil
	}
	if e.cache != nil {
		return e.cache, nil
	}

	path := e.cfg.CachePath
	if path == "" {
		var err error
		if path, err = storage.DefaultPath(); err != nil {
			return nil, err
		}
	}
	db, err := storage.New(ctx, path, e.cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	e.log.DebugContext(ctx, "Response cache opened",
		"path", db.Path(),
		"ttl", db.TTL(),
	)
	e.cache = db
	return db, nil
}

// openCatalog builds and opens a catalog client from the configuration.
// Dropped units are reported to Sentry with the run ID of ctx.
func (e *environment) openCatalog(ctx context.Context, minInterval time.Duration) (*utokyo.Catalog, error) {
	cfg := e.cfg
	policy := scraper.DefaultPolicy()
	policy.MaxAttempts = cfg.RetryAttempts
	policy.MaxElapsed = cfg.RetryMaxElapsed
	policy.MinBackoff = cfg.RetryMinBackoff
	policy.MaxBackoff = cfg.RetryMaxBackoff
	policy.Jitter = 0.25

	opts := utokyo.Options{
		BaseURL:           cfg.BaseURL,
		MinInterval:       minInterval,
		Retry:             &policy,
		DetailConcurrency: cfg.DetailConcurrency,
		HTTPTimeout:       cfg.HTTPTimeout,
		UserAgent:         cfg.UserAgent,
		OnDrop: func(err error) {
			sentry.CaptureUnitError(ctx, err)
		},
		Logger:  e.log,
		Metrics: e.metrics,
	}

	db, err := e.openCache(ctx)
	if err != nil {
		return nil, err
	}
	if db != nil {
		opts.Cache = db
	}

	c, err := utokyo.New(opts)
	if err != nil {
		return nil, err
	}
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// r2 creates the archive storage client.
func (e *environment) r2(ctx context.Context) (*r2client.Client, error) {
	r2 := e.cfg.R2
	if !r2.Enabled {
		return nil, fmt.Errorf("%w: R2 storage is disabled, set %s=true", domerrors.ErrInvalidConfiguration, config.EnvR2Enabled)
	}
	return r2client.New(ctx, r2client.Config{
		Endpoint:    r2.Endpoint,
		AccessKeyID: r2.AccessKeyID,
		SecretKey:   r2.SecretAccessKey,
		BucketName:  r2.BucketName,
		Prefix:      r2.Prefix,
	})
}
