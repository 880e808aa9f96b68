package builders

import (
	"github.com/fredcamaral/patterndeck/internal/domain/entities"
)

// ConfigBuilder helps build Config entities for testing
type ConfigBuilder struct {
	config *entities.Config
}

// NewConfigBuilder creates a config builder bound to a loopback ephemeral port
// with a rate limit high enough to stay out of the way of tests
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: &entities.Config{
			Server: entities.ServerConfig{
				Host:          "127.0.0.1",
				Port:          0,
				RatePerSecond: 1000,
				RateBurst:     1000,
			},
			Browser: entities.BrowserConfig{
				AutoOpen: entities.Bool(false),
				Browser:  "default",
			},
			Logging: entities.LoggingConfig{
				Level: string(entities.LogLevelInfo),
			},
		},
	}
}

// WithHost sets the listen host
func (b *ConfigBuilder) WithHost(host string) *ConfigBuilder {
	b.config.Server.Host = host
	return b
}

// WithPort sets the listen port
func (b *ConfigBuilder) WithPort(port int) *ConfigBuilder {
	b.config.Server.Port = port
	return b
}

// WithCORSOrigins sets the allowed cross-origin callers
func (b *ConfigBuilder) WithCORSOrigins(origins ...string) *ConfigBuilder {
	b.config.Server.CORSOrigins = origins
	return b
}

// WithRate sets the per-client refill rate and burst
func (b *ConfigBuilder) WithRate(perSecond float64, burst int) *ConfigBuilder {
	b.config.Server.RatePerSecond = perSecond
	b.config.Server.RateBurst = burst
	return b
}

// WithAutoOpen toggles opening a browser on startup
func (b *ConfigBuilder) WithAutoOpen(open bool) *ConfigBuilder {
	b.config.Browser.AutoOpen = entities.Bool(open)
	return b
}

// WithUnsafeHTML toggles host-side raw markup interpretation
func (b *ConfigBuilder) WithUnsafeHTML(allow bool) *ConfigBuilder {
	b.config.Presentation.AllowUnsafeHTML = entities.Bool(allow)
	return b
}

// WithRevealURL sets the widget asset base URL
func (b *ConfigBuilder) WithRevealURL(url string) *ConfigBuilder {
	b.config.Presentation.RevealURL = url
	return b
}

// WithTheme sets the widget theme
func (b *ConfigBuilder) WithTheme(theme string) *ConfigBuilder {
	b.config.Presentation.Theme = theme
	return b
}

// WithLogLevel sets the log level
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.config.Logging.Level = level
	return b
}

// Build returns a copy of the built config
func (b *ConfigBuilder) Build() *entities.Config {
	cfg := *b.config
	if b.config.Server.CORSOrigins != nil {
		cfg.Server.CORSOrigins = append([]string(nil), b.config.Server.CORSOrigins...)
	}
	return &cfg
}
