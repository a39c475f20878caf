package config

// Constants defining default values for application configuration
const (
	// DefaultFeedURL is Microsoft's release-communications RSS feed for
	// Azure.
	DefaultFeedURL = "https://www.microsoft.com/releasecommunications/api/v2/azure/rss"
	// DefaultPageURL is the human-facing updates page used by the
	// scraping sources.
	DefaultPageURL = "https://azure.microsoft.com/en-us/updates/"

	DefaultSource = "rss" // rss, static or rendered

	DefaultDBPath = "" // empty disables the archive

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultCacheTTLMinutes     = 30
	DefaultFetchTimeoutSeconds = 20
	DefaultUserAgent           = "azure-watch-updates/1.0 (Azure-Updates-Launched)"

	DefaultDateFallback     = "epoch" // epoch or now
	DefaultRevalidateStatus = true
	DefaultFulltext         = false

	// Rendered-source waits. Coarse fixed windows, not adaptive.
	DefaultWaitSelector         = "a[href*='/updates/']"
	DefaultRenderTimeoutSeconds = 30
	DefaultScrollSettleSeconds  = 2

	DefaultIntervalMinutes = 0  // 0 means one-shot fetch
	DefaultRetentionDays   = 90 // Days to keep archived updates

	DefaultLogLevel = "info"
)
