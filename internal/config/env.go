// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core
	EnvLogLevel = "UTCC_LOG_LEVEL"
	EnvBaseURL  = "UTCC_BASE_URL"
	EnvYear     = "UTCC_YEAR"

	// Scraper
	EnvMinInterval       = "UTCC_MIN_INTERVAL"
	EnvHTTPTimeout       = "UTCC_HTTP_TIMEOUT"
	EnvUserAgent         = "UTCC_USER_AGENT"
	EnvDetailConcurrency = "UTCC_DETAIL_CONCURRENCY"

	// Retry
	EnvRetryAttempts   = "UTCC_RETRY_ATTEMPTS"
	EnvRetryMaxElapsed = "UTCC_RETRY_MAX_ELAPSED"
	EnvRetryMinBackoff = "UTCC_RETRY_MIN_BACKOFF"
	EnvRetryMaxBackoff = "UTCC_RETRY_MAX_BACKOFF"

	// Response cache
	EnvCacheEnabled = "UTCC_CACHE_ENABLED"
	EnvCachePath    = "UTCC_CACHE_PATH"
	EnvCacheTTL     = "UTCC_CACHE_TTL"

	// Output
	EnvOutputDir       = "UTCC_OUTPUT_DIR"
	EnvMetricsTextfile = "UTCC_METRICS_TEXTFILE"

	// R2 Archive Feature
	EnvR2Enabled         = "UTCC_R2_ENABLED"
	EnvR2AccountID       = "UTCC_R2_ACCOUNT_ID"
	EnvR2Endpoint        = "UTCC_R2_ENDPOINT"
	EnvR2AccessKeyID     = "UTCC_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "UTCC_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "UTCC_R2_BUCKET_NAME"
	EnvR2Prefix          = "UTCC_R2_PREFIX"

	// Sentry Feature
	EnvSentryEnabled     = "UTCC_SENTRY_ENABLED"
	EnvSentryToken       = "UTCC_SENTRY_TOKEN"
	EnvSentryHost        = "UTCC_SENTRY_HOST"
	EnvSentryEnvironment = "UTCC_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "UTCC_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "UTCC_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "UTCC_BETTERSTACK_ENDPOINT"
)
