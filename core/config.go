// Package core holds shared configuration, errors, and HTTP plumbing for
// the studio. Configuration is loaded from environment variables (a .env
// file is loaded by main before this package is consulted).
package core

import (
	"net/http"
	"path/filepath"
	"time"
)

// Default configuration values. These mirror the behavior of the remote
// image service and keep the tool usable with an empty environment.
const (
	// DefaultBaseURL is the image generation endpoint root.
	DefaultBaseURL = "https://image.pollinations.ai"

	// DefaultModel is used when no model is selected and the model list
	// cannot be fetched.
	DefaultModel = "flux"

	// DefaultBatchSize is the number of variations generated per submission.
	DefaultBatchSize = 9

	// DefaultFetchTimeout bounds a single image load.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxConcurrentFetches bounds in-flight image loads per batch.
	DefaultMaxConcurrentFetches = 3

	// DefaultWidth and DefaultHeight are the initial image dimensions.
	DefaultWidth  = 1024
	DefaultHeight = 1024
)

// Config holds all configuration values for the studio.
type Config struct {
	// Remote service
	BaseURL   string // Image generation endpoint root
	ModelsURL string // Model list endpoint (default: BaseURL + "/models")

	// Generation defaults
	DefaultModel         string
	DefaultWidth         int
	DefaultHeight        int
	BatchSize            int           // Images per submission
	FetchTimeout         time.Duration // Per-image load timeout
	MaxConcurrentFetches int           // In-flight loads per batch

	// Storage
	DataDir      string // Directory for the collection database
	DownloadsDir string // Directory for saved image files
	StylesFile   string // Optional YAML file overriding style presets

	// Logging
	LogFile string
	DevMode bool
}

// LoadConfig reads configuration from the environment, applying defaults
// for anything unset, then validates the result.
func LoadConfig() (*Config, error) {
	baseURL := GetEnvOrDefault("AISTUDIO_BASE_URL", DefaultBaseURL)

	cfg := &Config{
		BaseURL:   baseURL,
		ModelsURL: GetEnvOrDefault("AISTUDIO_MODELS_URL", baseURL+"/models"),

		DefaultModel:         GetEnvOrDefault("AISTUDIO_DEFAULT_MODEL", DefaultModel),
		DefaultWidth:         ParseIntEnv("AISTUDIO_WIDTH", DefaultWidth),
		DefaultHeight:        ParseIntEnv("AISTUDIO_HEIGHT", DefaultHeight),
		BatchSize:            ParseIntEnv("AISTUDIO_BATCH_SIZE", DefaultBatchSize),
		FetchTimeout:         ParseDurationEnv("AISTUDIO_FETCH_TIMEOUT", DefaultFetchTimeout),
		MaxConcurrentFetches: ParseIntEnv("AISTUDIO_MAX_CONCURRENT", DefaultMaxConcurrentFetches),

		DataDir:      GetEnvOrDefault("AISTUDIO_DATA_DIR", "data"),
		DownloadsDir: GetEnvOrDefault("AISTUDIO_DOWNLOADS_DIR", "downloads"),
		StylesFile:   GetEnvOrDefault("AISTUDIO_STYLES_FILE", ""),

		LogFile: GetEnvOrDefault("AISTUDIO_LOG_FILE", "studio.log"),
		DevMode: ParseBoolEnv("AISTUDIO_DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingConfig("AISTUDIO_BASE_URL")
	}
	if c.DefaultWidth <= 0 || c.DefaultHeight <= 0 {
		return ErrInvalidDimensions(c.DefaultWidth, c.DefaultHeight)
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize(c.BatchSize)
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout(c.FetchTimeout)
	}
	if c.MaxConcurrentFetches <= 0 {
		c.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}
	return nil
}

// DatabasePath returns the path of the collection database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "collection.db")
}

// GetHTTPClient returns an HTTP client with the given total timeout.
func GetHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// GetDefaultHTTPClient returns an HTTP client with a 30s timeout, suitable
// for downloads and model list fetches. Per-image loads use their own
// context deadlines instead.
func GetDefaultHTTPClient() *http.Client {
	return GetHTTPClient(30 * time.Second)
}
