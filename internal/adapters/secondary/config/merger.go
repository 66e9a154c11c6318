package config

import (
	"os"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := m.deepCopy(GetDefaultConfig())

	for _, config := range configs {
		if config == nil {
			continue
		}
		m.mergeInto(result, config)
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	if config == nil || len(flags) == 0 {
		return config
	}

	result := m.deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if region, ok := flags["region"].(string); ok && region != "" {
		result.YouTube.RegionCode = region
	}

	if fixtures, ok := flags["fixtures"].(bool); ok && fixtures {
		result.YouTube.UseFixtures = true
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	return result
}

// ApplyEnvVars applies VIDWATCH_* environment overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	if config == nil {
		return config
	}

	result := m.deepCopy(config)

	// Server
	result.Server.Host = getEnvOrDefault("HOST", result.Server.Host)
	result.Server.Port = getEnvIntOrDefault("PORT", result.Server.Port)
	result.Server.Environment = getEnvOrDefault("ENV", result.Server.Environment)
	result.Server.CORSOrigins = getEnvSliceOrDefault("CORS_ORIGINS", result.Server.CORSOrigins)
	result.Server.RateLimit = getEnvIntOrDefault("RATE_LIMIT", result.Server.RateLimit)

	// Player
	result.Player.EmbedOrigin = getEnvOrDefault("EMBED_ORIGIN", result.Player.EmbedOrigin)
	result.Player.TickIntervalMs = getEnvIntOrDefault("TICK_INTERVAL_MS", result.Player.TickIntervalMs)
	result.Player.IdleTimeoutMs = getEnvIntOrDefault("IDLE_TIMEOUT_MS", result.Player.IdleTimeoutMs)
	result.Player.OrphanTimeoutMs = getEnvIntOrDefault("ORPHAN_TIMEOUT_MS", result.Player.OrphanTimeoutMs)
	result.Player.DefaultDurationSeconds = getEnvIntOrDefault("DEFAULT_DURATION", result.Player.DefaultDurationSeconds)

	// YouTube; the unprefixed YOUTUBE_API_KEY is honoured as well
	if key := os.Getenv("YOUTUBE_API_KEY"); key != "" {
		result.YouTube.APIKey = key
	}
	result.YouTube.APIKey = getEnvOrDefault("YOUTUBE_API_KEY", result.YouTube.APIKey)
	result.YouTube.BaseURL = getEnvOrDefault("YOUTUBE_BASE_URL", result.YouTube.BaseURL)
	result.YouTube.RegionCode = getEnvOrDefault("REGION", result.YouTube.RegionCode)
	result.YouTube.UseFixtures = getEnvBoolOrDefault("USE_FIXTURES", result.YouTube.UseFixtures)

	// Logging
	result.Logging.Level = getEnvOrDefault("LOG_LEVEL", result.Logging.Level)
	result.Logging.Verbose = getEnvBoolOrDefault("LOG_VERBOSE", result.Logging.Verbose)

	return result
}

// mergeInto copies every non-zero field of source over target
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string(nil), source.Server.CORSOrigins...)
	}
	if source.Server.RateLimit != 0 {
		target.Server.RateLimit = source.Server.RateLimit
	}

	// Player
	if source.Player.EmbedOrigin != "" {
		target.Player.EmbedOrigin = source.Player.EmbedOrigin
	}
	if source.Player.EmbedBaseURL != "" {
		target.Player.EmbedBaseURL = source.Player.EmbedBaseURL
	}
	if source.Player.TickIntervalMs != 0 {
		target.Player.TickIntervalMs = source.Player.TickIntervalMs
	}
	if source.Player.IdleTimeoutMs != 0 {
		target.Player.IdleTimeoutMs = source.Player.IdleTimeoutMs
	}
	if source.Player.FullscreenConfirmMs != 0 {
		target.Player.FullscreenConfirmMs = source.Player.FullscreenConfirmMs
	}
	if source.Player.OrphanTimeoutMs != 0 {
		target.Player.OrphanTimeoutMs = source.Player.OrphanTimeoutMs
	}
	if source.Player.DefaultDurationSeconds != 0 {
		target.Player.DefaultDurationSeconds = source.Player.DefaultDurationSeconds
	}
	if source.Player.DefaultVolume != 0 {
		target.Player.DefaultVolume = source.Player.DefaultVolume
	}

	// YouTube
	if source.YouTube.APIKey != "" {
		target.YouTube.APIKey = source.YouTube.APIKey
	}
	if source.YouTube.BaseURL != "" {
		target.YouTube.BaseURL = source.YouTube.BaseURL
	}
	if source.YouTube.RegionCode != "" {
		target.YouTube.RegionCode = source.YouTube.RegionCode
	}
	if source.YouTube.MaxResults != 0 {
		target.YouTube.MaxResults = source.YouTube.MaxResults
	}
	if source.YouTube.TimeoutSeconds != 0 {
		target.YouTube.TimeoutSeconds = source.YouTube.TimeoutSeconds
	}
	if source.YouTube.CacheSize != 0 {
		target.YouTube.CacheSize = source.YouTube.CacheSize
	}
	if source.YouTube.CacheTTLSeconds != 0 {
		target.YouTube.CacheTTLSeconds = source.YouTube.CacheTTLSeconds
	}
	// A layer can switch fixtures on; only env or flags switch it back off
	if source.YouTube.UseFixtures {
		target.YouTube.UseFixtures = true
	}

	// Logging
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
}

// deepCopy creates a deep copy of a configuration
func (m *ConfigMerger) deepCopy(config *entities.Config) *entities.Config {
	if config == nil {
		return nil
	}

	result := *config
	if config.Server.CORSOrigins != nil {
		result.Server.CORSOrigins = append([]string(nil), config.Server.CORSOrigins...)
	}

	return &result
}

var _ ports.ConfigMerger = (*ConfigMerger)(nil)
