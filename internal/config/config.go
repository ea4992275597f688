// Package config loads the service configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Admin    AdminConfig    `yaml:"admin"`
	Site     SiteConfig     `yaml:"site"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Name          string `yaml:"name"`
	SSLMode       string `yaml:"ssl_mode"`
	MigrationsDir string `yaml:"migrations_dir"`
}

// DSN assembles a key/value connection string for pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr              string `yaml:"addr"`
	Password          string `yaml:"password"`
	DB                int    `yaml:"db"`
	CatalogTTLSeconds int    `yaml:"catalog_ttl_seconds"`
}

type AdminConfig struct {
	BearerToken string `yaml:"bearer_token"`
}

type SiteConfig struct {
	// WhatsAppNumber is digits only, country code included (e.g. 5591985810208).
	WhatsAppNumber string `yaml:"whatsapp_number"`
	// BaseURL is the public site origin used when composing share links.
	BaseURL string `yaml:"base_url"`
	// GoogleAPIKey enables the Google Places reviews proxy when set.
	GoogleAPIKey string `yaml:"google_api_key"`
	// GooglePlaceID is the agency's place on Google Maps.
	GooglePlaceID string `yaml:"google_place_id"`
}

// Load reads and parses the YAML config at path and validates the fields the
// service cannot run without.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Admin.BearerToken == "" {
		return nil, fmt.Errorf("config %s: admin.bearer_token is required", path)
	}
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.Database.MigrationsDir == "" {
		cfg.Database.MigrationsDir = "migrations"
	}
	if cfg.Redis.CatalogTTLSeconds <= 0 {
		cfg.Redis.CatalogTTLSeconds = 60
	}

	return &cfg, nil
}
