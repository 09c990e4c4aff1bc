package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // presence-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Redis struct {
	Addr     string `yaml:"addr"` // empty: in-memory store (dev/tests)
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Presence struct {
	TTL       time.Duration `yaml:"ttl"`       // liveness marker lifetime
	Heartbeat time.Duration `yaml:"heartbeat"` // advertised client interval
}

type Auth struct {
	JWTSecret string `yaml:"jwtSecret"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Presence Presence `yaml:"presence"`
	Auth     Auth     `yaml:"auth"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}

	if c.Presence.TTL == 0 {
		c.Presence.TTL = 60 * time.Second
	}
	if c.Presence.Heartbeat == 0 {
		c.Presence.Heartbeat = 20 * time.Second
	}
	// the marker must survive at least one missed heartbeat
	if c.Presence.TTL <= c.Presence.Heartbeat {
		return fmt.Errorf("presence.ttl (%s) must exceed presence.heartbeat (%s)",
			c.Presence.TTL, c.Presence.Heartbeat)
	}

	if c.Logging.Service == "" {
		c.Logging.Service = "presence-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}
