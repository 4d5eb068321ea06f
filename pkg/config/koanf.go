package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the variable holding the YAML config file path.
const ConfigPathEnvVar = "KINDLE_SHELF_CONFIG"

// DotEnvFiles are loaded in order; earlier files win since no file overrides
// a variable that is already set.
var DotEnvFiles = []string{".env.local", ".env"}

// envMappings maps environment variable names to koanf paths.
var envMappings = map[string]string{
	"CATALOG_COOKIES":         "catalog.cookies",
	"CATALOG_BASE_URL":        "catalog.base_url",
	"CATALOG_CONTENT_TYPES":   "catalog.content_types",
	"CATALOG_DEVICE_FAMILIES": "catalog.device_families",
	"CATALOG_TIMEOUT":         "catalog.timeout",
	"MAX_PAGES":               "catalog.max_pages",

	"PAAPI_ACCESS_KEY":  "paapi.access_key",
	"PAAPI_SECRET_KEY":  "paapi.secret_key",
	"PAAPI_PARTNER_TAG": "paapi.partner_tag",
	"PAAPI_HOST":        "paapi.host",
	"PAAPI_REGION":      "paapi.region",
	"PAAPI_MARKETPLACE": "paapi.marketplace",
	"PAAPI_BASE_URL":    "paapi.base_url",
	"PAAPI_TIMEOUT":     "paapi.timeout",

	"ENRICH_WORKERS": "enrich.workers",

	"SNAPSHOT_BACKEND": "snapshot.backend",
	"SNAPSHOT_PATH":    "snapshot.path",
	"SNAPSHOT_NAME":    "snapshot.name",
	"REDIS_URL":        "snapshot.redis_url",

	"OUTPUT_HTML":  "output.html",
	"OUTPUT_TITLE": "output.title",

	"LOG_LEVEL": "logging.level",
	"LOG_JSON":  "logging.json",
}

// sliceConfigPaths are parsed from comma-separated environment values. An
// empty value restores the default.
var sliceConfigPaths = map[string]func(*Config) []string{
	"catalog.content_types":   func(c *Config) []string { return c.Catalog.ContentTypes },
	"catalog.device_families": func(c *Config) []string { return c.Catalog.DeviceFamilies },
}

// Load builds the configuration from defaults, the optional YAML file at
// configPath (or KINDLE_SHELF_CONFIG when empty), dotenv files and the
// environment.
func Load(configPath string) (*Config, error) {
	if err := LoadDotEnv(DotEnvFiles...); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath == "" {
		configPath = os.Getenv(ConfigPathEnvVar)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads dotenv files into the process environment. Missing files
// are ignored and variables already set are kept.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// envTransformFunc maps known variables to koanf paths and skips the rest.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToUpper(key)]; ok {
		return mapped
	}
	return ""
}

// processSliceFields converts comma-separated string values to slices.
func processSliceFields(k *koanf.Koanf) error {
	defaults := DefaultConfig()
	for path, defaultValue := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		var parts []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			parts = defaultValue(defaults)
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
