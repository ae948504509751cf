package config

import "fmt"

const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"

	ClientStoreDriverStatic   = "static"
	ClientStoreDriverPostgres = "postgres"

	defaultRedisKeyPrefix = "ihub-oauth"
	defaultMaxCodes       = 60000
)

// StoreConfig selects the backend of the code, consent and OAuth session stores.
type StoreConfig struct {
	Driver    string `yaml:"driver" json:"driver"`
	RedisURL  string `yaml:"redisURL" json:"redisURL"`
	KeyPrefix string `yaml:"keyPrefix" json:"keyPrefix"`
	MaxCodes  int    `yaml:"maxCodes" json:"maxCodes"`
}

type ClientStoreConfig struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
}

func (s *StoreConfig) applyDefaults() {
	if s.Driver == "" {
		s.Driver = StoreDriverMemory
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = defaultRedisKeyPrefix
	}
	if s.MaxCodes == 0 {
		s.MaxCodes = defaultMaxCodes
	}
}

func (s *StoreConfig) validate() error {
	switch s.Driver {
	case StoreDriverMemory:
	case StoreDriverRedis:
		if s.RedisURL == "" {
			return fmt.Errorf("store.redisURL must be set when store.driver is '%s'", StoreDriverRedis)
		}
	default:
		return fmt.Errorf("unsupported store.driver '%s'", s.Driver)
	}
	if s.MaxCodes < 0 {
		return fmt.Errorf("store.maxCodes must be positive")
	}
	return nil
}

func (c *ClientStoreConfig) applyDefaults() {
	if c.Driver == "" {
		c.Driver = ClientStoreDriverStatic
	}
}

func (c *ClientStoreConfig) validate() error {
	switch c.Driver {
	case ClientStoreDriverStatic:
	case ClientStoreDriverPostgres:
		if c.DSN == "" {
			return fmt.Errorf("clientStore.dsn must be set when clientStore.driver is '%s'", ClientStoreDriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported clientStore.driver '%s'", c.Driver)
	}
	return nil
}
