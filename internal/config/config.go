package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects every runtime setting once at startup. The signing secret
// and token lifetime are injected into the session manager from here rather
// than read from the environment at call sites.
type Config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   []byte
	TokenTTL    time.Duration
	CORSOrigins []string
}

// Load reads the environment, applying development defaults where unset.
// In release mode a missing JWT_SECRET is fatal.
func Load() Config {
	cfg := Config{
		Port:     getenv("PORT", "8080"),
		TokenTTL: time.Duration(getenvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		CORSOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "dev-secret-key-change-in-production" // Development fallback only
	}
	cfg.JWTSecret = []byte(secret)

	host := getenv("DB_HOST", "localhost")
	port := getenv("DB_PORT", "5432")
	user := getenv("DB_USER", "postgres")
	password := getenv("DB_PASSWORD", "postgres")
	name := getenv("DB_NAME", "auth_system")
	sslMode := getenv("DB_SSLMODE", "disable")
	cfg.DatabaseDSN = "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslMode

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
