package config

import (
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/vango-dev/dndlist/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "dndlist.json"

	// DefaultPort is the default inspector port.
	DefaultPort = 7070

	// DefaultHost is the default inspector host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "dndlist"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "dndlist"
)

// Config represents the complete dndlist.json configuration.
type Config struct {
	// Inspect contains diagnostics server configuration.
	Inspect InspectConfig `json:"inspect,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectConfig contains diagnostics server settings.
type InspectConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// AllowedOrigins lists extra websocket origins. Same-host origins are
	// always accepted; "*" accepts any.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// Addr returns the host:port listen address.
func (c InspectConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers the metrics observer and serves /metrics.
	Enabled *bool `json:"enabled,omitempty"`

	// Namespace is the metric name prefix.
	Namespace string `json:"namespace,omitempty"`
}

// IsEnabled reports whether metrics are on. Metrics default to on.
func (c MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled registers the tracing observer.
	Enabled bool `json:"enabled,omitempty"`

	// TracerName is the name passed to otel.Tracer.
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// SlogLevel converts Level to a slog.Level. Unknown levels map to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Inspect: InspectConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for dndlist.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("D020").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("D021").Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes JSONC configuration data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := New()
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, errors.New("D021").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Inspect.Host == "" {
		c.Inspect.Host = DefaultHost
	}
	if c.Inspect.Port == 0 {
		c.Inspect.Port = DefaultPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Inspect.Port < 0 || c.Inspect.Port > 65535 {
		return errors.New("D022").
			WithDetail("inspect.port must be between 0 and 65535, got " + strconv.Itoa(c.Inspect.Port))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("D022").
			WithDetail("log.level must be one of debug, info, warn, error; got " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("D022").
			WithDetail("log.format must be text or json; got " + strconv.Quote(c.Log.Format))
	}
	return nil
}
