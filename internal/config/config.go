// Package config resolves explorer settings from .env, the environment and
// command-line overrides.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/idna"
)

const (
	DefaultAPIURL      = "http://localhost:8000"
	DefaultTimeout     = 30 * time.Second
	DefaultLogFile     = "explorer.log"
	DefaultDBPath      = "explorer.db"
	DefaultListen      = ":8000"
	DefaultCORSOrigin  = "http://localhost:3000"
	DefaultServerLimit = 1000
)

// Environment variable names.
const (
	EnvAPIURL      = "EXPLORER_API_URL"
	EnvTimeout     = "EXPLORER_TIMEOUT"
	EnvLimit       = "EXPLORER_LIMIT"
	EnvLogFile     = "EXPLORER_LOG_FILE"
	EnvDBPath      = "EXPLORER_DB"
	EnvListen      = "EXPLORER_LISTEN"
	EnvCatalog     = "EXPLORER_CATALOG"
	EnvCORSOrigins = "EXPLORER_CORS_ORIGINS"
)

// Config holds everything the explorer binaries need.
type Config struct {
	// Client
	APIURL  string        // base endpoint of the data API
	Timeout time.Duration // per-request timeout, 0 disables it
	Limit   int           // row limit sent to /data, 0 leaves it to the server
	LogFile string        // TUI log destination

	// Bundled server
	DBPath      string
	Listen      string
	CatalogPath string // optional YAML override of the embedded catalog
	CORSOrigins []string

	Verbose bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		Timeout:     DefaultTimeout,
		LogFile:     DefaultLogFile,
		DBPath:      DefaultDBPath,
		Listen:      DefaultListen,
		CORSOrigins: []string{DefaultCORSOrigin},
	}
}

// Load reads .env (if present) and the environment on top of the defaults.
func Load() (Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv applies environment values from lookup on top of the defaults.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup(EnvLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvLimit, v, err)
		}
		cfg.Limit = n
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		cfg.LogFile = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := lookup(EnvListen); ok && v != "" {
		cfg.Listen = v
	}
	if v, ok := lookup(EnvCatalog); ok {
		cfg.CatalogPath = v
	}
	if v, ok := lookup(EnvCORSOrigins); ok && v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings and normalises the API URL in place.
func (c *Config) Validate() error {
	normalized, err := NormalizeBaseURL(c.APIURL)
	if err != nil {
		return err
	}
	c.APIURL = normalized

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}
	return nil
}

// NormalizeBaseURL checks that raw is an absolute http(s) URL, converts an
// internationalised host to its ASCII form and drops any trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("API URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid API URL %q: scheme must be http or https", raw)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid API URL %q: missing host", raw)
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		host, err = idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("invalid API host %q: %w", u.Hostname(), err)
		}
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}

	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
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
