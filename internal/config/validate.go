package config

import (
	"fmt"
	"strings"

	fserrors "github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/internal/logging"
)

// Validate checks the configuration for required fields and valid values.
// All problems are reported together in one E141 error.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		problems = append(problems, "server.shutdown_timeout must not be negative")
	}
	if _, err := c.Server.TrustedPrefixes(); err != nil {
		problems = append(problems, fmt.Sprintf("server.trusted_proxies: %v", err))
	}

	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		problems = append(problems, fmt.Sprintf("env must be %q or %q, got %q", EnvProduction, EnvDevelopment, c.Env))
	}

	if strings.TrimSpace(c.Routes.Dir) == "" {
		problems = append(problems, "routes.dir is required")
	}

	if c.Static.Enabled {
		if !strings.HasPrefix(c.Static.Prefix, "/") || c.Static.Prefix == "/" {
			problems = append(problems, fmt.Sprintf("static.prefix must start with / and not be the root, got %q", c.Static.Prefix))
		}
		if c.Static.S3.Bucket == "" && c.Static.Dir == "" {
			problems = append(problems, "static.dir or static.s3.bucket is required when static is enabled")
		}
	}

	if c.RateLimit.Enabled && c.Development() && c.RateLimit.Header == "" {
		problems = append(problems, "rate_limit.header is required in development")
	}

	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		problems = append(problems, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("log.format must be %q or %q, got %q", logging.FormatText, logging.FormatJSON, c.Log.Format))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, fmt.Sprintf("metrics.path must start with /, got %q", c.Metrics.Path))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		problems = append(problems, fmt.Sprintf("tracing.sample_ratio must be between 0 and 1, got %v", c.Tracing.SampleRatio))
	}

	if len(problems) == 0 {
		return nil
	}
	err := fserrors.New("E141").WithDetail(strings.Join(problems, "; "))
	if c.path != "" {
		err = err.WithPath(c.path)
	}
	return err
}
