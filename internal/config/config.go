package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the login throttle when the environment leaves them unset.
const (
	DefaultMaxLoginAttempts = 5
	DefaultLoginTimeout     = 300 * time.Second
)

type Config struct {
	Port             string
	DbURL            string
	JwtSecret        string
	AdminKeyPrefix   string
	MaxLoginAttempts int
	LoginTimeout     time.Duration
}

// Load reads the configuration from a .env file or environment variables and
// returns a Config struct. The signing secret and admin key prefix have no
// defaults: they must be supplied by the deployment, never baked into source.
func Load() (*Config, error) {
	// Try to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	dbURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	adminKeyPrefix := os.Getenv("ADMIN_KEY_PREFIX")

	if port == "" || dbURL == "" || jwtSecret == "" || adminKeyPrefix == "" {
		return nil, fmt.Errorf("missing required environment variables: PORT=%q, DATABASE_URL set=%v, JWT_SECRET set=%v, ADMIN_KEY_PREFIX set=%v",
			port, dbURL != "", jwtSecret != "", adminKeyPrefix != "")
	}

	maxAttempts := DefaultMaxLoginAttempts
	if v := os.Getenv("MAX_LOGIN_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_LOGIN_ATTEMPTS: %q", v)
		}
		maxAttempts = n
	}

	loginTimeout := DefaultLoginTimeout
	if v := os.Getenv("LOGIN_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid LOGIN_TIMEOUT_SECONDS: %q", v)
		}
		loginTimeout = time.Duration(n) * time.Second
	}

	return &Config{
		Port:             port,
		DbURL:            dbURL,
		JwtSecret:        jwtSecret,
		AdminKeyPrefix:   adminKeyPrefix,
		MaxLoginAttempts: maxAttempts,
		LoginTimeout:     loginTimeout,
	}, nil
}
