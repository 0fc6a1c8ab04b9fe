package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultPort               = 3318
	DefaultDatabaseType       = "sqlite"
	DefaultDatabaseURL        = "vouchers.db"
	DefaultImageDir           = "data/images"
	DefaultTransitionCooldown = 3 * time.Second
	DefaultSessionTTL         = 7 * 24 * time.Hour
	DefaultMaxImageBytes      = 5 << 20
)

type Config struct {
	Port               int
	DatabaseURL        string
	DatabaseType       string
	SessionSecret      string
	SessionTTL         time.Duration
	ImageDir           string
	MaxImageBytes      int64
	PublicBaseURL      string
	BrandsFile         string
	TransitionCooldown time.Duration
	LogLevel           string
	LogFormat          string
	TrustProxy         bool
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first when present;
// real environment variables win over it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	fs := flag.NewFlagSet("voucher-manager", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or sqlite file path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.ImageDir, "images", "", "Directory for uploaded voucher images")
	fs.StringVar(&cfg.PublicBaseURL, "base-url", "", "Public base URL used in image links")
	fs.StringVar(&cfg.BrandsFile, "brands", "", "Brand catalog file (JSON or HuJSON)")
	fs.DurationVar(&cfg.TransitionCooldown, "cooldown", -1, "Minimum time between status changes of one voucher")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Take client IPs from X-Forwarded-For (only behind a reverse proxy)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session token secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultDatabaseURL
	}

	if cfg.ImageDir == "" {
		cfg.ImageDir = envOr("IMAGE_DIR", DefaultImageDir)
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = envOr("PUBLIC_BASE_URL", "http://localhost:"+strconv.Itoa(cfg.Port))
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if cfg.BrandsFile == "" {
		cfg.BrandsFile = os.Getenv("BRANDS_FILE")
	}

	if cfg.TransitionCooldown < 0 {
		d, err := envDuration("TRANSITION_COOLDOWN", DefaultTransitionCooldown)
		if err != nil {
			return Config{}, err
		}
		cfg.TransitionCooldown = d
	}

	ttl, err := envDuration("SESSION_TTL", DefaultSessionTTL)
	if err != nil {
		return Config{}, err
	}
	if ttl <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	cfg.SessionTTL = ttl

	cfg.MaxImageBytes = DefaultMaxImageBytes
	if raw := os.Getenv("MAX_IMAGE_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, errors.New("invalid MAX_IMAGE_BYTES env variable")
		}
		cfg.MaxImageBytes = n
	}

	if !cfg.TrustProxy {
		if raw := os.Getenv("TRUST_PROXY"); raw != "" {
			trust, err := strconv.ParseBool(raw)
			if err != nil {
				return Config{}, errors.New("invalid TRUST_PROXY env variable")
			}
			cfg.TrustProxy = trust
		}
	}

	cfg.LogLevel = envOr("LOG_LEVEL", "info")
	cfg.LogFormat = envOr("LOG_FORMAT", "text")

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
