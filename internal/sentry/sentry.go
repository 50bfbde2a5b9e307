// Package sentry provides Sentry SDK initialization for Better Stack error tracking integration.
// It wraps the Sentry Go SDK to simplify configuration and reports crawl
// failures with their run, stage and unit attached.
package sentry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/garyellow/ut-course-catalog-go/internal/ctxutil"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// Config holds Sentry configuration for Better Stack integration.
type Config struct {
	// Token is the Better Stack Errors application token.
	Token string

	// Host is the Better Stack Errors ingesting host (e.g., "errors.betterstack.com").
	Host string

	// Environment identifies the deployment environment (e.g., "production", "staging").
	Environment string

	// Release identifies the application release version.
	Release string

	// SampleRate controls error sampling (0.0-1.0, default 1.0 = 100%).
	SampleRate float64

	// Debug enables Sentry SDK debug logging.
	Debug bool
}

// Initialize sets up the Sentry SDK with Better Stack configuration.
// If Token is empty, Sentry is disabled and nil is returned.
// The DSN is constructed as: https://$TOKEN@$HOST/1
func Initialize(cfg Config) error {
	if cfg.Token == "" {
		return nil // Sentry disabled
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return sentry.Init(clientOptions(cfg))
}

func clientOptions(cfg Config) sentry.ClientOptions {
	// The project ID (/1) is required by Sentry SDK but ignored by Better Stack.
	dsn := fmt.Sprintf("https://%s@%s/1", cfg.Token, cfg.Host)

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0 // Default to 100% sampling
	}

	return sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	}
}

// Validate reports a token without a host.
func (c Config) Validate() error {
	if c.Token != "" && c.Host == "" {
		return errors.New("sentry host is required when token is provided")
	}
	return nil
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureExceptionWithContext captures an error with the run ID of ctx.
func CaptureExceptionWithContext(ctx context.Context, err error) {
	hub := hubFrom(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		if runID, ok := ctxutil.GetRunID(ctx); ok {
			scope.SetTag("run_id", runID)
		}
		hub.CaptureException(err)
	})
}

// CaptureUnitError reports a crawl unit dropped after retries. Stage and
// unit become tags so drops of one page or course group together.
func CaptureUnitError(ctx context.Context, err error) {
	var uerr *domerrors.UnitError
	if !errors.As(err, &uerr) {
		CaptureExceptionWithContext(ctx, err)
		return
	}

	hub := hubFrom(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		if runID, ok := ctxutil.GetRunID(ctx); ok {
			scope.SetTag("run_id", runID)
		}
		scope.SetTag("stage", uerr.Stage)
		scope.SetTag("unit", uerr.Unit)
		scope.SetLevel(sentry.LevelWarning)
		hub.CaptureException(err)
	})
}

func hubFrom(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}
