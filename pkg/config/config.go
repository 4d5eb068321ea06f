// Package config loads kindle-shelf configuration.
//
// Configuration is layered, later layers overriding earlier ones:
//
//  1. Defaults built into DefaultConfig
//  2. Optional YAML file (--config flag or KINDLE_SHELF_CONFIG)
//  3. Environment variables, after .env.local and .env are loaded into the
//     process environment without overriding variables already set
//
// Credentials are never required at load time. Commands call
// ValidateCatalog or ValidateEnrichment before doing any network work.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/enrich"
	"github.com/Sternrassler/kindle-shelf/pkg/paapi"
	"github.com/Sternrassler/kindle-shelf/pkg/pagination"
	"github.com/Sternrassler/kindle-shelf/pkg/render"
	"github.com/Sternrassler/kindle-shelf/pkg/snapshot"
)

// ErrMissingCredentials is wrapped by every credential validation failure.
var ErrMissingCredentials = errors.New("missing credentials")

// Config is the complete application configuration.
type Config struct {
	Catalog  CatalogConfig  `koanf:"catalog"`
	PAAPI    PAAPIConfig    `koanf:"paapi"`
	Enrich   EnrichConfig   `koanf:"enrich"`
	Snapshot SnapshotConfig `koanf:"snapshot"`
	Output   OutputConfig   `koanf:"output"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// CatalogConfig configures the listing client and collector.
type CatalogConfig struct {
	BaseURL             string        `koanf:"base_url"`
	Cookies             string        `koanf:"cookies"`
	ContentTypes        []string      `koanf:"content_types"`
	DeviceFamilies      []string      `koanf:"device_families"`
	SubscriptionPresent bool          `koanf:"subscription_present"`
	Timeout             time.Duration `koanf:"timeout"`
	MaxPages            int           `koanf:"max_pages"`
}

// PAAPIConfig configures the product-metadata lookup client.
type PAAPIConfig struct {
	AccessKey   string        `koanf:"access_key"`
	SecretKey   string        `koanf:"secret_key"`
	PartnerTag  string        `koanf:"partner_tag"`
	Host        string        `koanf:"host"`
	Region      string        `koanf:"region"`
	Marketplace string        `koanf:"marketplace"`
	BaseURL     string        `koanf:"base_url"`
	Timeout     time.Duration `koanf:"timeout"`
}

// EnrichConfig configures the enricher.
type EnrichConfig struct {
	Workers int `koanf:"workers"`
}

// SnapshotConfig selects the snapshot backend.
type SnapshotConfig struct {
	Backend  string `koanf:"backend"`
	Path     string `koanf:"path"`
	RedisURL string `koanf:"redis_url"`
	Name     string `koanf:"name"`
}

// OutputConfig configures the rendered document.
type OutputConfig struct {
	HTML           string `koanf:"html"`
	Title          string `koanf:"title"`
	ProductURLBase string `koanf:"product_url_base"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	listing := catalog.DefaultConfig("")
	lookup := paapi.DefaultConfig("", "", "")

	return &Config{
		Catalog: CatalogConfig{
			BaseURL:             listing.BaseURL,
			ContentTypes:        listing.ContentTypes,
			DeviceFamilies:      listing.DeviceFamilies,
			SubscriptionPresent: listing.SubscriptionPresent,
			Timeout:             30 * time.Second,
			MaxPages:            pagination.DefaultConfig().MaxPages,
		},
		PAAPI: PAAPIConfig{
			Host:        lookup.Host,
			Region:      lookup.Region,
			Marketplace: lookup.Marketplace,
			Timeout:     lookup.Timeout,
		},
		Enrich: EnrichConfig{
			Workers: 1,
		},
		Snapshot: SnapshotConfig{
			Backend:  "file",
			Path:     "kindle_plus_books.json",
			RedisURL: "localhost:6379",
			Name:     "default",
		},
		Output: OutputConfig{
			HTML:           "index.html",
			Title:          render.DefaultTitle,
			ProductURLBase: render.DefaultProductURLBase,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks settings that do not depend on credentials.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Snapshot.Backend) {
	case "file":
		if c.Snapshot.Path == "" {
			errs = append(errs, "SNAPSHOT_PATH is required for the file backend")
		}
	case "redis":
		if c.Snapshot.RedisURL == "" {
			errs = append(errs, "REDIS_URL is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("SNAPSHOT_BACKEND must be file or redis, got %q", c.Snapshot.Backend))
	}

	if c.Catalog.MaxPages < 1 {
		errs = append(errs, "MAX_PAGES must be at least 1")
	}
	if c.Enrich.Workers < 1 {
		errs = append(errs, "ENRICH_WORKERS must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// MissingError lists the unset variables a command needs.
type MissingError struct {
	Vars []string
}

// Error implements the error interface.
func (e *MissingError) Error() string {
	return fmt.Sprintf("%v: set %s", ErrMissingCredentials, strings.Join(e.Vars, ", "))
}

// Unwrap makes errors.Is(err, ErrMissingCredentials) true.
func (e *MissingError) Unwrap() error {
	return ErrMissingCredentials
}

// ValidateCatalog checks that listing credentials are present.
func (c *Config) ValidateCatalog() error {
	if strings.TrimSpace(c.Catalog.Cookies) == "" {
		return &MissingError{Vars: []string{"CATALOG_COOKIES"}}
	}
	return nil
}

// ValidateEnrichment checks that lookup credentials are present.
func (c *Config) ValidateEnrichment() error {
	var missing []string
	if c.PAAPI.AccessKey == "" {
		missing = append(missing, "PAAPI_ACCESS_KEY")
	}
	if c.PAAPI.SecretKey == "" {
		missing = append(missing, "PAAPI_SECRET_KEY")
	}
	if c.PAAPI.PartnerTag == "" {
		missing = append(missing, "PAAPI_PARTNER_TAG")
	}
	if len(missing) > 0 {
		return &MissingError{Vars: missing}
	}
	return nil
}

// CatalogClientConfig returns the listing client configuration.
func (c *Config) CatalogClientConfig() catalog.Config {
	return catalog.Config{
		BaseURL:             c.Catalog.BaseURL,
		Cookies:             c.Catalog.Cookies,
		ContentTypes:        c.Catalog.ContentTypes,
		DeviceFamilies:      c.Catalog.DeviceFamilies,
		SubscriptionPresent: c.Catalog.SubscriptionPresent,
		Timeout:             c.Catalog.Timeout,
	}
}

// CollectorConfig returns the collector configuration.
func (c *Config) CollectorConfig() pagination.Config {
	return pagination.Config{MaxPages: c.Catalog.MaxPages}
}

// PAAPIClientConfig returns the lookup client configuration.
func (c *Config) PAAPIClientConfig() paapi.Config {
	cfg := paapi.DefaultConfig(c.PAAPI.AccessKey, c.PAAPI.SecretKey, c.PAAPI.PartnerTag)
	cfg.Host = c.PAAPI.Host
	cfg.Region = c.PAAPI.Region
	cfg.Marketplace = c.PAAPI.Marketplace
	cfg.BaseURL = c.PAAPI.BaseURL
	cfg.Timeout = c.PAAPI.Timeout
	return cfg
}

// EnricherConfig returns the enricher configuration.
func (c *Config) EnricherConfig() enrich.Config {
	cfg := enrich.DefaultConfig()
	cfg.Workers = c.Enrich.Workers
	return cfg
}

// SnapshotOptions returns the snapshot backend options.
func (c *Config) SnapshotOptions() snapshot.Options {
	return snapshot.Options{
		Backend:  c.Snapshot.Backend,
		Path:     c.Snapshot.Path,
		RedisURL: c.Snapshot.RedisURL,
		Name:     c.Snapshot.Name,
	}
}

// RenderOptions returns the document options.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		Title:          c.Output.Title,
		ProductURLBase: c.Output.ProductURLBase,
	}
}
