package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./collector.db" description:"Path to the SQLite database file"`

	// Application configuration
	SourcesDir            string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source definition files"`
	Port                  string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl               string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service"`
	WorkerCount           int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for collection jobs"`
	CollectionInterval    int    `long:"collection-interval" env:"COLLECTION_INTERVAL" default:"300" description:"Interval between scheduled collection rounds in seconds"`
	MaxConcurrentRequests int    `long:"max-concurrent-requests" env:"MAX_CONCURRENT_REQUESTS" default:"10" description:"Concurrency budget used to derive rate limiter capacity"`
	RequestTimeout        int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Per-request timeout for outbound HTTP calls in seconds"`
	APIAccessKey          string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Data quality configuration
	AllowedDomains   []string `long:"allowed-domain" env:"ALLOWED_DOMAINS" env-delim:"," description:"Domains permitted for reachability checks and trusted scoring"`
	ExpectedKeywords []string `long:"expected-keyword" env:"EXPECTED_KEYWORDS" env-delim:"," description:"Keywords used for semantic consistency scoring"`
	MinContentLength int      `long:"min-content-length" env:"MIN_CONTENT_LENGTH" default:"50" description:"Minimum normalized content length for an item to be stored"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"MediaWatch Collector/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:                raw.DBPath,
		SourcesDir:            raw.SourcesDir,
		Port:                  raw.Port,
		BaseUrl:               raw.BaseUrl,
		WorkerCount:           raw.WorkerCount,
		CollectionInterval:    raw.CollectionInterval,
		MaxConcurrentRequests: raw.MaxConcurrentRequests,
		RequestTimeout:        raw.RequestTimeout,
		APIAccessKey:          raw.APIAccessKey,
		AllowedDomains:        raw.AllowedDomains,
		ExpectedKeywords:      raw.ExpectedKeywords,
		MinContentLength:      raw.MinContentLength,
		UserAgent:             raw.UserAgent,
		Timezone:              raw.Timezone,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
