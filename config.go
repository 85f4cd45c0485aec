package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port            string
	DBDSN           string
	AutoMigrate     bool
	Debug           bool
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	UserRate        string // authenticated quota, limiter format (e.g. "500-D")
	AnonRate        string // anonymous quota, limiter format (e.g. "5-M")
	TimeZone        *time.Location
	TrustedProxies  []string
}

// NewConfig reads the environment. JWT_SECRET and DB_DSN have no workable
// defaults and are required.
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8081"),
		DBDSN:     os.Getenv("DB_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		UserRate:  getEnv("THROTTLE_USER_RATE", "500-D"),
		AnonRate:  getEnv("THROTTLE_ANON_RATE", "5-M"),
		Debug:     isTruthy(getEnv("DEBUG", "false")),
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.AutoMigrate = true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		cfg.AutoMigrate = isTruthy(v)
	}

	var err error
	if cfg.AccessTokenTTL, err = time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}
	if cfg.RefreshTokenTTL, err = time.ParseDuration(getEnv("REFRESH_TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL: %w", err)
	}
	if cfg.TimeZone, err = time.LoadLocation(getEnv("TIME_ZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
