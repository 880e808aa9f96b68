package config

import (
	"os"
	"strconv"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
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

	result := deepCopy(configs[0])
	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port >= 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok {
		result.Browser.AutoOpen = entities.Bool(!noBrowser)
	}

	if verbose, ok := flags["verbose"].(bool); ok {
		result.Logging.Verbose = verbose
	}

	if level, ok := flags["log-level"].(string); ok && level != "" {
		result.Logging.Level = level
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv("PATTERNDECK_HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv("PATTERNDECK_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port >= 0 {
			result.Server.Port = port
		}
	}

	if autoOpen := os.Getenv("PATTERNDECK_BROWSER_AUTO_OPEN"); autoOpen != "" {
		if v, err := strconv.ParseBool(autoOpen); err == nil {
			result.Browser.AutoOpen = entities.Bool(v)
		}
	}

	if hopsStr := os.Getenv("PATTERNDECK_TRUSTED_HOPS"); hopsStr != "" {
		if hops, err := strconv.Atoi(hopsStr); err == nil && hops >= 0 {
			result.Server.TrustedHops = hops
		}
	}

	if browser := os.Getenv("PATTERNDECK_BROWSER"); browser != "" {
		result.Browser.Browser = browser
	}

	if level := os.Getenv("PATTERNDECK_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	if jsonStr := os.Getenv("PATTERNDECK_LOG_JSON"); jsonStr != "" {
		if v, err := strconv.ParseBool(jsonStr); err == nil {
			result.Logging.JSONFormat = v
		}
	}

	if revealURL := os.Getenv("PATTERNDECK_REVEAL_URL"); revealURL != "" {
		result.Presentation.RevealURL = revealURL
	}

	if theme := os.Getenv("PATTERNDECK_THEME"); theme != "" {
		result.Presentation.Theme = theme
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
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
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = copyStrings(source.Server.CORSOrigins)
	}
	if source.Server.RatePerSecond != 0 {
		target.Server.RatePerSecond = source.Server.RatePerSecond
	}
	if source.Server.RateBurst != 0 {
		target.Server.RateBurst = source.Server.RateBurst
	}
	if source.Server.TrustedHops != 0 {
		target.Server.TrustedHops = source.Server.TrustedHops
	}

	// Browser config
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	if source.Browser.AutoOpen != nil {
		target.Browser.AutoOpen = entities.Bool(*source.Browser.AutoOpen)
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}

	// Presentation config
	if source.Presentation.RevealURL != "" {
		target.Presentation.RevealURL = source.Presentation.RevealURL
	}
	if source.Presentation.Theme != "" {
		target.Presentation.Theme = source.Presentation.Theme
	}
	if source.Presentation.AllowUnsafeHTML != nil {
		target.Presentation.AllowUnsafeHTML = entities.Bool(*source.Presentation.AllowUnsafeHTML)
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	dst.Server.CORSOrigins = copyStrings(src.Server.CORSOrigins)
	if src.Browser.AutoOpen != nil {
		dst.Browser.AutoOpen = entities.Bool(*src.Browser.AutoOpen)
	}
	if src.Presentation.AllowUnsafeHTML != nil {
		dst.Presentation.AllowUnsafeHTML = entities.Bool(*src.Presentation.AllowUnsafeHTML)
	}

	return &dst
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
