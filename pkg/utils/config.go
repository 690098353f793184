package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig is parsed from MECHSATHI_* environment variables.
type ServerConfig struct {
	HTTPAddr  string `env:"MECHSATHI_HTTP_ADDR" envDefault:":8080"`
	TCPAddr   string `env:"MECHSATHI_TCP_ADDR" envDefault:":7070"`
	UDPAddr   string `env:"MECHSATHI_UDP_ADDR" envDefault:":9090"`
	JWTSecret string `env:"MECHSATHI_JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer string `env:"MECHSATHI_JWT_ISSUER" envDefault:"mechsathi"`
	JWTTTLHrs int    `env:"MECHSATHI_JWT_TTL_HOURS" envDefault:"24"`
}

func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTTTLHrs <= 0 {
		cfg.JWTTTLHrs = 24
	}
	return cfg, nil
}

func (c ServerConfig) JWTDuration() time.Duration {
	return time.Duration(c.JWTTTLHrs) * time.Hour
}
