package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/glimte/reqlog-go/masking"
)

// Config is the complete reqlog configuration.
type Config struct {
	Logging LoggingConfig `koanf:"logging"`
	Masking MaskingConfig `koanf:"masking"`
	HTTP    HTTPConfig    `koanf:"http"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug|info|warn|error
	Format string `koanf:"format"` // json|text
}

// MaskingConfig lists the field selectors redacted from logged payloads.
type MaskingConfig struct {
	Fields []string `koanf:"fields"`
	Marker string   `koanf:"marker"`
}

// HTTPConfig configures the demo server and the net/http adapter.
type HTTPConfig struct {
	Addr         string   `koanf:"addr"`
	MaxBodyBytes int64    `koanf:"maxBodyBytes"`
	ExcludePaths []string `koanf:"excludePaths"` // not logged; "/prefix/*" matches below prefix
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Masking: MaskingConfig{Marker: masking.DefaultMarker},
		HTTP:    HTTPConfig{Addr: ":8080", MaxBodyBytes: 1 << 20},
	}
}

func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"logging.level":     d.Logging.Level,
		"logging.format":    d.Logging.Format,
		"masking.marker":    d.Masking.Marker,
		"http.addr":         d.HTTP.Addr,
		"http.maxBodyBytes": d.HTTP.MaxBodyBytes,
	}
}

// keys lists every configuration key, used to restore the casing of
// environment variable names.
var keys = []string{
	"logging.level",
	"logging.format",
	"masking.fields",
	"masking.marker",
	"http.addr",
	"http.maxBodyBytes",
	"http.excludePaths",
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unsupported format %q", c.Logging.Format)
	}
	for i, field := range c.Masking.Fields {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("masking.fields[%d]: selector cannot be empty", i)
		}
	}
	for i, path := range c.HTTP.ExcludePaths {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("http.excludePaths[%d]: path must start with /, got %q", i, path)
		}
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("http.maxBodyBytes: must not be negative, got %d", c.HTTP.MaxBodyBytes)
	}
	return nil
}

// ParseLevel converts a level name into a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("logging.level: unsupported level %q", level)
	}
	return l, nil
}
