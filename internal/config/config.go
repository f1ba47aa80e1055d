// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full service configuration, populated from environment
// variables with the VENDOR_ prefix (e.g. VENDOR_SERVER_PORT).
type Config struct {
	Service   ServiceConfig
	Server    ServerConfig
	Warehouse WarehouseConfig
	Auth      AuthConfig
	NATS      NATSConfig
	Cache     CacheConfig
	Health    HealthConfig
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name        string `default:"vendor-onboarding"`
	Version     string `default:"dev"`
	Environment string `default:"development"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `default:"8080"`
	ReadTimeout     time.Duration `default:"15s" split_words:"true"`
	WriteTimeout    time.Duration `default:"30s" split_words:"true"`
	IdleTimeout     time.Duration `default:"60s" split_words:"true"`
	ShutdownTimeout time.Duration `default:"10s" split_words:"true"`
}

// WarehouseConfig identifies the GraphQL data warehouse endpoint. The endpoint
// URL is composed from the workspace and API identifiers.
type WarehouseConfig struct {
	WorkspaceID string        `required:"true" split_words:"true"`
	APIID       string        `required:"true" envconfig:"API_ID"`
	Timeout     time.Duration `default:"20s"`
}

// Endpoint returns the composed GraphQL endpoint URL.
func (w WarehouseConfig) Endpoint() string {
	return fmt.Sprintf("https://%s.appsync-api.%s.amazonaws.com/graphql", w.APIID, w.WorkspaceID)
}

// AuthConfig holds session-token verification settings.
type AuthConfig struct {
	JWTSecret string `required:"true" split_words:"true"`
}

// NATSConfig holds the notification broker address. Empty URL disables
// publishing.
type NATSConfig struct {
	URL string `default:""`
}

// CacheConfig controls the reference-data TTL cache.
type CacheConfig struct {
	ReferenceTTL time.Duration `default:"24h" split_words:"true"`
}

// HealthConfig controls the background warehouse health check.
type HealthConfig struct {
	Interval time.Duration `default:"30m"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("vendor", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
