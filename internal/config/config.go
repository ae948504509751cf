package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envConfigFile  = "IHUB_OAUTH_CONFIG"
	envRedisURL    = "REDIS_URL"
	envDatabaseURL = "DATABASE_URL"

	defaultConfigFile = "/etc/ihub-oauth/config.yaml"
)

type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	OAuth       OAuthConfig       `yaml:"oauth" json:"oauth"`
	Session     SessionConfig     `yaml:"session" json:"session"`
	Store       StoreConfig       `yaml:"store" json:"store"`
	ClientStore ClientStoreConfig `yaml:"clientStore" json:"clientStore"`
	Clients     []ClientConfig    `yaml:"clients" json:"clients"`
}

// Load reads the YAML configuration file named by IHUB_OAUTH_CONFIG, applies
// environment overrides and validates the result.
func Load() (*Config, error) {
	fileName := defaultConfigFile
	if fn := os.Getenv(envConfigFile); fn != "" {
		fileName = fn
	}
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file '%s': %w", fileName, err)
	}
	cfg.applyEnv()
	if err := cfg.ValidateAndInitialize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envRedisURL); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv(envDatabaseURL); v != "" {
		c.ClientStore.DSN = v
	}
}

func (c *Config) ValidateAndInitialize() error {
	// Apply defaults.
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	c.OAuth.applyDefaults()
	c.Session.applyDefaults()
	c.Store.applyDefaults()
	c.ClientStore.applyDefaults()
	if c.Clients == nil {
		c.Clients = []ClientConfig{}
	}

	// Validate.
	if err := c.OAuth.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if err := c.ClientStore.validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Clients))
	for i := range c.Clients {
		cl := &c.Clients[i]
		if err := cl.validateAndInitialize(); err != nil {
			return fmt.Errorf("invalid clients[%d]: %w", i, err)
		}
		if _, ok := seen[cl.ID]; ok {
			return fmt.Errorf("duplicate client id '%s'", cl.ID)
		}
		seen[cl.ID] = struct{}{}
	}

	return nil
}

// ConsentMemory is the lifetime of a remembered consent grant.
func (o *OAuthConfig) ConsentMemory() time.Duration {
	return time.Duration(o.ConsentMemoryDays) * 24 * time.Hour
}

func validateRedirectURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse redirect URI '%s': %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("redirect URI '%s' must be absolute", raw)
	}
	if u.Fragment != "" {
		return fmt.Errorf("redirect URI '%s' must not contain a fragment", raw)
	}
	return nil
}
