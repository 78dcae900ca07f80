package config

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// Environment names. Anything other than EnvDevelopment is treated as
// production.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	// DefaultHost is the default listen host.
	DefaultHost = "0.0.0.0"

	// DefaultPort is the default listen port.
	DefaultPort = 3000

	// DefaultRoutesDir is the default routes directory.
	DefaultRoutesDir = "app"

	// DefaultPublicDir is the default static files directory.
	DefaultPublicDir = "public"

	// DefaultStaticPrefix is the URL prefix static files are served under.
	DefaultStaticPrefix = "/public"

	// DefaultDevHeader carries the client IP override in development.
	DefaultDevHeader = "x-dev-ip"

	// DefaultMetricsPath is where Prometheus metrics are exposed.
	DefaultMetricsPath = "/metrics"
)

// Config is the complete server configuration.
type Config struct {
	// Env is "production" or "development".
	Env string `yaml:"env" toml:"env" json:"env"`

	Server    ServerConfig    `yaml:"server" toml:"server" json:"server"`
	Routes    RoutesConfig    `yaml:"routes" toml:"routes" json:"routes"`
	Static    StaticConfig    `yaml:"static" toml:"static" json:"static"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit" json:"rate_limit"`
	Log       LogConfig       `yaml:"log" toml:"log" json:"log"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics" json:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing" toml:"tracing" json:"tracing"`
	CORS      CORSConfig      `yaml:"cors" toml:"cors" json:"cors"`

	// path is the file the config was loaded from, if any.
	path string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host" toml:"host" json:"host"`
	Port int    `yaml:"port" toml:"port" json:"port"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" json:"shutdown_timeout"`

	// ReadHeaderTimeout is passed to http.Server.
	ReadHeaderTimeout Duration `yaml:"read_header_timeout" toml:"read_header_timeout" json:"read_header_timeout"`

	// TrustedProxies lists the addresses or CIDR prefixes of reverse proxies
	// whose X-Forwarded-For and X-Real-IP headers are believed. Empty means
	// the client address is always the TCP peer.
	TrustedProxies []string `yaml:"trusted_proxies" toml:"trusted_proxies" json:"trusted_proxies"`
}

// TrustedPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (s ServerConfig) TrustedPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, entry := range s.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// RoutesConfig locates the routes tree.
type RoutesConfig struct {
	Dir string `yaml:"dir" toml:"dir" json:"dir"`
}

// StaticConfig configures static file serving. When S3.Bucket is set assets
// come from the bucket and Dir is ignored.
type StaticConfig struct {
	Enabled bool     `yaml:"enabled" toml:"enabled" json:"enabled"`
	Dir     string   `yaml:"dir" toml:"dir" json:"dir"`
	Prefix  string   `yaml:"prefix" toml:"prefix" json:"prefix"`
	S3      S3Config `yaml:"s3" toml:"s3" json:"s3"`
}

// S3Config selects a bucket for static assets.
type S3Config struct {
	Bucket    string `yaml:"bucket" toml:"bucket" json:"bucket"`
	Region    string `yaml:"region" toml:"region" json:"region"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	KeyPrefix string `yaml:"key_prefix" toml:"key_prefix" json:"key_prefix"`
	PathStyle bool   `yaml:"path_style" toml:"path_style" json:"path_style"`

	AccessKeyID         string `yaml:"access_key_id" toml:"access_key_id" json:"access_key_id"`
	SecretAccessKey     string `yaml:"secret_access_key" toml:"secret_access_key" json:"secret_access_key"`
	SecretAccessKeyFile string `yaml:"secret_access_key_file" toml:"secret_access_key_file" json:"secret_access_key_file"`
}

// RateLimitConfig configures the per-IP rate limiter. An empty DB selects
// the in-memory store.
type RateLimitConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	DB      string `yaml:"db" toml:"db" json:"db"`
	DBFile  string `yaml:"db_file" toml:"db_file" json:"db_file"`

	// Header overrides the client IP in development.
	Header string `yaml:"header" toml:"header" json:"header"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Path    string `yaml:"path" toml:"path" json:"path"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" toml:"enabled" json:"enabled"`
	SampleRatio float64 `yaml:"sample_ratio" toml:"sample_ratio" json:"sample_ratio"`
}

// CORSConfig configures cross-origin requests.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" toml:"enabled" json:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" toml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" toml:"allowed_headers" json:"allowed_headers"`
	MaxAge         Duration `yaml:"max_age" toml:"max_age" json:"max_age"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Env: EnvProduction,
		Server: ServerConfig{
			Host:              DefaultHost,
			Port:              DefaultPort,
			ShutdownTimeout:   Duration(10 * time.Second),
			ReadHeaderTimeout: Duration(5 * time.Second),
		},
		Routes: RoutesConfig{Dir: DefaultRoutesDir},
		Static: StaticConfig{
			Enabled: true,
			Dir:     DefaultPublicDir,
			Prefix:  DefaultStaticPrefix,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Header:  DefaultDevHeader,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true, Path: DefaultMetricsPath},
		Tracing: TracingConfig{SampleRatio: 1},
		CORS: CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Development reports whether the server runs in development mode.
func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Duration is a time.Duration that decodes from strings like "10s" in every
// supported file format.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}
