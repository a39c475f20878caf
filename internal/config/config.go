package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"azure-watch/updates/internal/dates"
)

// Config holds all configuration for the application
type Config struct {
	// Source settings
	FeedURL      string
	PageURL      string
	Source       string // rss, static or rendered
	UserAgent    string
	FetchTimeout time.Duration
	Fulltext     bool

	// Pipeline policies. The original variants disagreed on both, so
	// they are explicit configuration rather than hardcoded choices.
	DateFallback     dates.Fallback
	RevalidateStatus bool

	// Rendered-source settings
	WaitSelector  string
	RenderTimeout time.Duration
	ScrollSettle  time.Duration

	// Cache settings
	CacheTTL time.Duration

	// Archive settings
	DBPath        string
	RetentionDays int

	// Fetch command settings
	Interval time.Duration

	// Server settings
	ServerHost string
	ServerPort int

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns an initial configuration from hardcoded
// defaults with environment-variable overrides applied.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		FeedURL:      GetEnvString("UPDATES_FEED_URL", DefaultFeedURL),
		PageURL:      GetEnvString("UPDATES_PAGE_URL", DefaultPageURL),
		Source:       GetEnvString("UPDATES_SOURCE", DefaultSource),
		UserAgent:    GetEnvString("UPDATES_USER_AGENT", DefaultUserAgent),
		FetchTimeout: GetEnvDuration("UPDATES_FETCH_TIMEOUT", DefaultFetchTimeoutSeconds*time.Second),
		Fulltext:     GetEnvBool("UPDATES_FULLTEXT", DefaultFulltext),

		DateFallback:     dates.ParseFallback(GetEnvString("UPDATES_DATE_FALLBACK", DefaultDateFallback)),
		RevalidateStatus: GetEnvBool("UPDATES_REVALIDATE_STATUS", DefaultRevalidateStatus),

		WaitSelector:  GetEnvString("UPDATES_WAIT_SELECTOR", DefaultWaitSelector),
		RenderTimeout: GetEnvDuration("UPDATES_RENDER_TIMEOUT", DefaultRenderTimeoutSeconds*time.Second),
		ScrollSettle:  GetEnvDuration("UPDATES_SCROLL_SETTLE", DefaultScrollSettleSeconds*time.Second),

		CacheTTL: GetEnvDuration("UPDATES_CACHE_TTL", DefaultCacheTTLMinutes*time.Minute),

		DBPath:        GetEnvString("UPDATES_DB_PATH", DefaultDBPath),
		RetentionDays: GetEnvInt("UPDATES_RETENTION_DAYS", DefaultRetentionDays),

		Interval: GetEnvDuration("UPDATES_INTERVAL", DefaultIntervalMinutes*time.Minute),

		ServerHost: GetEnvString("UPDATES_HOST", DefaultServerHost),
		ServerPort: GetEnvInt("UPDATES_PORT", DefaultServerPort),

		LogLevel: GetEnvLogLevel("UPDATES_LOG_LEVEL", logLevel),
	}
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
