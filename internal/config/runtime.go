package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr      = ":8080"
	defaultJWTAccessTTL    = "24h"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultCapacityCeiling = "2"
	defaultUploadDir       = "uploads"
)

// RuntimeConfig is loaded once at startup. CapacityCeiling is the hard upper
// bound AdjustCapacity may raise any room to; the policy changed between
// revisions of the deployment so it is env-driven rather than hard-coded.
type RuntimeConfig struct {
	AppEnv          string
	ListenAddr      string
	DatabaseURL     string
	JWTSecret       string
	JWTAccessTTL    time.Duration
	CapacityCeiling int
	UploadDir       string
}

func LoadRuntimeConfig() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getEnv("LISTEN_ADDR", defaultListenAddr)
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.UploadDir = getEnv("UPLOAD_DIR", defaultUploadDir)

	ttl, err := time.ParseDuration(getEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TTL: %w", err)
	}
	cfg.JWTAccessTTL = ttl

	ceiling, err := strconv.Atoi(getEnv("CAPACITY_CEILING", defaultCapacityCeiling))
	if err != nil || ceiling < 1 {
		return nil, fmt.Errorf("invalid CAPACITY_CEILING: %q", getEnv("CAPACITY_CEILING", defaultCapacityCeiling))
	}
	cfg.CapacityCeiling = ceiling

	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
