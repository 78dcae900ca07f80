package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	fserrors "github.com/vango-dev/fsroute/internal/errors"
)

// EnvConfigPath names the env var holding an explicit config file path.
const EnvConfigPath = "FSROUTE_CONFIG"

// candidates are tried in order when no path is given.
var candidates = []string{
	"fsroute.yaml",
	"fsroute.yml",
	"fsroute.toml",
	"fsroute.json",
}

// Load loads configuration from the layered sources described in the
// package documentation. configPath may be empty.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if path := discoverConfigFile(configPath); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// discoverConfigFile returns the explicit path, then FSROUTE_CONFIG, then the
// first existing candidate in the working directory.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		return envPath
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadFile decodes the file at path over cfg. Fields absent from the file
// keep their current values. The format follows the extension.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fserrors.New("E140").
				WithPath(path).
				WithDetail("The configuration file does not exist.").
				WithSuggestion("Check --config or FSROUTE_CONFIG").
				Wrap(err)
		}
		return fserrors.New("E140").WithPath(path).Wrap(err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		err = dec.Decode(cfg)
	default:
		return fserrors.New("E142").
			WithPath(path).
			WithDetailf("Unknown extension %q. Configuration files must end in .yaml, .yml, .toml or .json.", ext)
	}
	if err != nil {
		return fserrors.New("E140").
			WithPath(path).
			WithDetail("The configuration file could not be parsed.").
			Wrap(err)
	}

	cfg.path = path
	return nil
}

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// applyEnvOverrides maps the deployment's environment variables onto cfg.
// Unparseable values are reported rather than ignored.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(key, v, err)
		}
		*dst = b
		return nil
	}

	str("APP_HOST", &cfg.Server.Host)
	if v, ok := lookup("APP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return envError("APP_PORT", v, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup("APP_TRUSTED_PROXIES"); ok && v != "" {
		cfg.Server.TrustedProxies = strings.Split(v, ",")
	}
	str("APP_ENV", &cfg.Env)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("ROUTES_DIR", &cfg.Routes.Dir)
	str("PUBLIC_DIR", &cfg.Static.Dir)
	str("STATIC_S3_BUCKET", &cfg.Static.S3.Bucket)
	str("STATIC_S3_REGION", &cfg.Static.S3.Region)
	str("STATIC_S3_ENDPOINT", &cfg.Static.S3.Endpoint)
	str("RATELIMIT_DB", &cfg.RateLimit.DB)
	str("RATELIMIT_HEADER", &cfg.RateLimit.Header)

	for key, dst := range map[string]*bool{
		"RATELIMIT_ENABLED": &cfg.RateLimit.Enabled,
		"METRICS_ENABLED":   &cfg.Metrics.Enabled,
		"TRACING_ENABLED":   &cfg.Tracing.Enabled,
		"CORS_ENABLED":      &cfg.CORS.Enabled,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func envError(key, value string, err error) error {
	return fserrors.New("E141").
		WithDetailf("Environment variable %s has invalid value %q.", key, value).
		Wrap(err)
}

// resolveFileReferences fills secret fields from their _file counterparts
// when the value itself is empty.
func resolveFileReferences(cfg *Config) error {
	refs := []struct {
		name string
		file string
		dst  *string
	}{
		{"rate_limit.db_file", cfg.RateLimit.DBFile, &cfg.RateLimit.DB},
		{"static.s3.secret_access_key_file", cfg.Static.S3.SecretAccessKeyFile, &cfg.Static.S3.SecretAccessKey},
	}
	for _, ref := range refs {
		if ref.file == "" || *ref.dst != "" {
			continue
		}
		val, err := readSecretFile(ref.file)
		if err != nil {
			return fserrors.New("E140").
				WithPath(ref.file).
				WithDetailf("Reading %s.", ref.name).
				Wrap(err)
		}
		*ref.dst = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
