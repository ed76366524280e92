// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/metonline/hesap-paylas/auth"
	"github.com/metonline/hesap-paylas/resolver"
)

// Store types
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreBadger   = "badger"
	StoreMemory   = "memory"
)

const (
	DefaultPort      = 3318
	DefaultPublicURL = "https://metonline.github.io/hesap-paylas/"
	DefaultRPS       = 5.0
	minSessionKeyLen = 32
)

type Config struct {
	Port           int
	BackendURL     string
	StoreType      string
	DatabaseURL    string
	SessionKey     []byte
	PublicURL      string
	QRScheme       string
	BackendRPS     float64
	AllowedOrigins []string
	Debug          bool
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c Config) SecureCookies() bool {
	return strings.HasPrefix(c.PublicURL, "https://")
}

// LoadEnvFile loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// ParseFlags reads flags, falling back to environment variables.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var sessionKey, origins, rps string

	fs := flag.NewFlagSet("hesap-paylas", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.BackendURL, "b", "", "Backend API base URL")
	fs.StringVar(&cfg.StoreType, "t", "", "Store type (sqlite, postgres, badger or memory)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or badger directory")
	fs.StringVar(&cfg.PublicURL, "public-url", "", "Web app URL used in share links")
	fs.StringVar(&cfg.QRScheme, "qr-scheme", "", "URI scheme printed into QR codes")
	fs.StringVar(&rps, "backend-rps", "", "Outbound requests per second to the backend")
	fs.StringVar(&origins, "origins", "", "Comma separated CORS origins")
	fs.BoolVar(&cfg.Debug, "v", false, "Debug logging")

	// Secret (prefer env, but allow CLI for dev)
	fs.StringVar(&sessionKey, "session-key", "", "Cookie signing key (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

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

	if cfg.BackendURL == "" {
		cfg.BackendURL = os.Getenv("BACKEND_URL")
	}
	if cfg.BackendURL == "" {
		return Config{}, errors.New("backend URL required (use -b or BACKEND_URL env)")
	}
	if u, err := url.Parse(cfg.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("invalid backend URL %q", cfg.BackendURL)
	}

	if cfg.StoreType == "" {
		cfg.StoreType = os.Getenv("STORE_TYPE")
		if cfg.StoreType == "" {
			cfg.StoreType = StoreSQLite
		}
	}
	switch cfg.StoreType {
	case StoreSQLite, StorePostgres, StoreBadger, StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.StoreType != StoreMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if sessionKey == "" {
		sessionKey = os.Getenv("SESSION_KEY")
	}
	if sessionKey == "" {
		return Config{}, errors.New("SESSION_KEY required")
	}
	cfg.SessionKey = auth.SessionKey(sessionKey)
	if len(cfg.SessionKey) < minSessionKeyLen {
		return Config{}, fmt.Errorf("SESSION_KEY must be at least %d bytes", minSessionKeyLen)
	}

	if cfg.PublicURL == "" {
		cfg.PublicURL = envOr("PUBLIC_URL", DefaultPublicURL)
	}
	if cfg.QRScheme == "" {
		cfg.QRScheme = envOr("QR_SCHEME", resolver.DefaultScheme)
	}

	if rps == "" {
		rps = os.Getenv("BACKEND_RPS")
	}
	cfg.BackendRPS = DefaultRPS
	if rps != "" {
		v, err := strconv.ParseFloat(rps, 64)
		if err != nil || v < 0 {
			return Config{}, fmt.Errorf("invalid BACKEND_RPS %q", rps)
		}
		cfg.BackendRPS = v
	}

	if origins == "" {
		origins = os.Getenv("ALLOWED_ORIGINS")
	}
	cfg.AllowedOrigins = splitList(origins)

	if !cfg.Debug {
		cfg.Debug = strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
