package entities

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Player  PlayerConfig  `toml:"player"`
	YouTube YouTubeConfig `toml:"youtube"`
	Logging LoggingConfig `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Player.Validate(); err != nil {
		return fmt.Errorf("player config: %w", err)
	}

	if err := c.YouTube.Validate(); err != nil {
		return fmt.Errorf("youtube config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
	RateLimit       int      `toml:"rate_limit"` // requests per minute per client IP
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}

	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}

	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	if s.RateLimit < 0 {
		return errors.New("rate limit must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if len(origin) < 7 || (!strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://")) {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetRateLimit returns requests per minute, defaulting to 120
func (s ServerConfig) GetRateLimit() int {
	if s.RateLimit <= 0 {
		return 120
	}
	return s.RateLimit
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// PlayerConfig controls the player overlay and the embed it drives
type PlayerConfig struct {
	EmbedOrigin            string `toml:"embed_origin"`
	EmbedBaseURL           string `toml:"embed_base_url"`
	TickIntervalMs         int    `toml:"tick_interval_ms"`
	IdleTimeoutMs          int    `toml:"idle_timeout_ms"`
	FullscreenConfirmMs    int    `toml:"fullscreen_confirm_ms"`
	OrphanTimeoutMs        int    `toml:"orphan_timeout_ms"`
	DefaultDurationSeconds int    `toml:"default_duration_seconds"`
	DefaultVolume          int    `toml:"default_volume"`
}

// Validate validates player configuration
func (p PlayerConfig) Validate() error {
	if p.EmbedOrigin != "" {
		if err := validateOrigin(p.EmbedOrigin); err != nil {
			return fmt.Errorf("embed origin: %w", err)
		}
	}

	if p.TickIntervalMs < 0 || p.IdleTimeoutMs < 0 || p.FullscreenConfirmMs < 0 || p.OrphanTimeoutMs < 0 {
		return errors.New("player intervals must be non-negative")
	}

	if p.DefaultDurationSeconds < 0 {
		return errors.New("default duration must be non-negative")
	}

	if p.DefaultVolume < 0 || p.DefaultVolume > 100 {
		return errors.New("default volume must be between 0 and 100")
	}

	return nil
}

// GetEmbedOrigin returns the origin commands are scoped to
func (p PlayerConfig) GetEmbedOrigin() string {
	if p.EmbedOrigin == "" {
		return "https://www.youtube.com"
	}
	return p.EmbedOrigin
}

// GetEmbedBaseURL returns the iframe src prefix; the video id is appended
func (p PlayerConfig) GetEmbedBaseURL() string {
	if p.EmbedBaseURL == "" {
		return p.GetEmbedOrigin() + "/embed/"
	}
	return p.EmbedBaseURL
}

// GetTickInterval returns the playback clock cadence
func (p PlayerConfig) GetTickInterval() time.Duration {
	if p.TickIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(p.TickIntervalMs) * time.Millisecond
}

// GetIdleTimeout returns how long controls stay up without pointer movement
func (p PlayerConfig) GetIdleTimeout() time.Duration {
	if p.IdleTimeoutMs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(p.IdleTimeoutMs) * time.Millisecond
}

// GetFullscreenConfirm returns how long an optimistic fullscreen flip may stay unconfirmed
func (p PlayerConfig) GetFullscreenConfirm() time.Duration {
	if p.FullscreenConfirmMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(p.FullscreenConfirmMs) * time.Millisecond
}

// GetOrphanTimeout returns how long a session may go without an attached
// watch page before it is unmounted
func (p PlayerConfig) GetOrphanTimeout() time.Duration {
	if p.OrphanTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.OrphanTimeoutMs) * time.Millisecond
}

// GetDefaultDuration returns the duration used when the video's is unknown
func (p PlayerConfig) GetDefaultDuration() int {
	if p.DefaultDurationSeconds <= 0 {
		return 420
	}
	return p.DefaultDurationSeconds
}

// GetDefaultVolume returns the starting volume, 100 when unset
func (p PlayerConfig) GetDefaultVolume() int {
	if p.DefaultVolume <= 0 {
		return 100
	}
	return p.DefaultVolume
}

// YouTubeConfig configures the Data API client
type YouTubeConfig struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	RegionCode      string `toml:"region_code"`
	MaxResults      int    `toml:"max_results"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	CacheSize       int    `toml:"cache_size"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	UseFixtures     bool   `toml:"use_fixtures"`
}

// Validate validates Data API configuration
func (y YouTubeConfig) Validate() error {
	if y.BaseURL != "" {
		u, err := url.Parse(y.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base URL must be an absolute http(s) URL: %s", y.BaseURL)
		}
	}

	if y.RegionCode != "" && len(y.RegionCode) != 2 {
		return fmt.Errorf("region code must be two letters: %s", y.RegionCode)
	}

	if y.MaxResults < 0 || y.MaxResults > 50 {
		return errors.New("max results must be between 0 and 50")
	}

	if y.TimeoutSeconds < 0 || y.CacheSize < 0 || y.CacheTTLSeconds < 0 {
		return errors.New("timeouts and cache settings must be non-negative")
	}

	return nil
}

// GetBaseURL returns the Data API root
func (y YouTubeConfig) GetBaseURL() string {
	if y.BaseURL == "" {
		return "https://www.googleapis.com/youtube/v3"
	}
	return strings.TrimRight(y.BaseURL, "/")
}

// GetRegionCode returns the chart region, US by default
func (y YouTubeConfig) GetRegionCode() string {
	if y.RegionCode == "" {
		return "US"
	}
	return strings.ToUpper(y.RegionCode)
}

// GetMaxResults returns the default page size
func (y YouTubeConfig) GetMaxResults() int {
	if y.MaxResults <= 0 {
		return 20
	}
	return y.MaxResults
}

// GetTimeout returns the per-request timeout
func (y YouTubeConfig) GetTimeout() time.Duration {
	if y.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(y.TimeoutSeconds) * time.Second
}

// GetCacheSize returns the number of cached responses
func (y YouTubeConfig) GetCacheSize() int {
	if y.CacheSize <= 0 {
		return 256
	}
	return y.CacheSize
}

// GetCacheTTL returns how long a cached response stays fresh
func (y YouTubeConfig) GetCacheTTL() time.Duration {
	if y.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(y.CacheTTLSeconds) * time.Second
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level   string `toml:"level"`   // debug, info, warn, error
	Verbose bool   `toml:"verbose"` // Enable verbose logging
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}
	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}

// validateOrigin checks that s is a bare scheme://host[:port] origin
func validateOrigin(s string) error {
	if s == "*" {
		return errors.New("wildcard origin is not allowed")
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", s, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q must be an http(s) origin", s)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("%q must not contain a path", s)
	}
	return nil
}
