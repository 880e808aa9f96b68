package entities

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig       `toml:"server" yaml:"server"`
	Browser      BrowserConfig      `toml:"browser" yaml:"browser"`
	Logging      LoggingConfig      `toml:"logging" yaml:"logging"`
	Presentation PresentationConfig `toml:"presentation" yaml:"presentation"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("browser config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Presentation.Validate(); err != nil {
		return fmt.Errorf("presentation config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host" yaml:"host"`
	Port            int      `toml:"port" yaml:"port"`
	ReadTimeout     int      `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string `toml:"cors_origins" yaml:"cors_origins"`
	RatePerSecond   float64  `toml:"rate_per_second" yaml:"rate_per_second"`
	RateBurst       int      `toml:"rate_burst" yaml:"rate_burst"`
	TrustedHops     int      `toml:"trusted_hops" yaml:"trusted_hops"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" && strings.ContainsAny(s.Host, " !") {
		return fmt.Errorf("invalid host: %s", s.Host)
	}
	if s.Host != "" && s.Host != "localhost" {
		if ip := net.ParseIP(s.Host); ip == nil && strings.Contains(s.Host, ":") {
			return fmt.Errorf("invalid host: %s", s.Host)
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

	if s.RatePerSecond < 0 {
		return errors.New("rate per second must be non-negative")
	}

	if s.RateBurst < 0 {
		return errors.New("rate burst must be non-negative")
	}

	if s.TrustedHops < 0 {
		return errors.New("trusted hops must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}

// URL returns the browsable server URL
func (s ServerConfig) URL() string {
	return "http://" + s.Address()
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

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:8501",
			"http://127.0.0.1:8501",
		}
	}
	return s.CORSOrigins
}

// GetRate returns the per-IP refill rate and burst with defaults
func (s ServerConfig) GetRate() (float64, int) {
	perSecond, burst := s.RatePerSecond, s.RateBurst
	if perSecond <= 0 {
		perSecond = 10
	}
	if burst <= 0 {
		burst = 30
	}
	return perSecond, burst
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	AutoOpen *bool  `toml:"auto_open" yaml:"auto_open"`
	Browser  string `toml:"browser" yaml:"browser"`
}

// Validate validates browser configuration
func (b BrowserConfig) Validate() error {
	// Browser name validation is minimal since it's platform-dependent
	return nil
}

// ShouldAutoOpen reports whether the browser opens on startup. Unset means yes.
func (b BrowserConfig) ShouldAutoOpen() bool {
	return b.AutoOpen == nil || *b.AutoOpen
}

// PresentationConfig controls how the host embeds the slide widget
type PresentationConfig struct {
	RevealURL       string `toml:"reveal_url" yaml:"reveal_url"`
	Theme           string `toml:"theme" yaml:"theme"`
	AllowUnsafeHTML *bool  `toml:"allow_unsafe_html" yaml:"allow_unsafe_html"`
}

// Validate validates presentation configuration
func (p PresentationConfig) Validate() error {
	if p.RevealURL != "" && !strings.HasPrefix(p.RevealURL, "http://") && !strings.HasPrefix(p.RevealURL, "https://") && !strings.HasPrefix(p.RevealURL, "/") {
		return fmt.Errorf("reveal URL must be absolute or rooted: %s", p.RevealURL)
	}
	if strings.ContainsAny(p.Theme, "/\\ ") {
		return fmt.Errorf("invalid theme name: %s", p.Theme)
	}
	return nil
}

// GetRevealURL returns the widget asset base URL without a trailing slash
func (p PresentationConfig) GetRevealURL() string {
	if p.RevealURL == "" {
		return "https://unpkg.com/reveal.js@5.1.0/dist"
	}
	return strings.TrimRight(p.RevealURL, "/")
}

// GetTheme returns the widget theme with default
func (p PresentationConfig) GetTheme() string {
	if p.Theme == "" {
		return "white"
	}
	return p.Theme
}

// UnsafeHTMLAllowed reports whether raw slide markup may be interpreted.
// Unset means allowed.
func (p PresentationConfig) UnsafeHTMLAllowed() bool {
	return p.AllowUnsafeHTML == nil || *p.AllowUnsafeHTML
}

// Bool returns a pointer to v, for the optional boolean settings
func Bool(v bool) *bool {
	return &v
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
	Level      string `toml:"level" yaml:"level"`             // debug, info, warn, error
	Verbose    bool   `toml:"verbose" yaml:"verbose"`         // Enable verbose logging
	JSONFormat bool   `toml:"json_format" yaml:"json_format"` // Output logs in JSON format
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
