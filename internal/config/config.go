// Package config provides trustlab configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDB        = "TRUSTLAB_DB"
	EnvCatalog   = "TRUSTLAB_CATALOG"
	EnvExportDir = "TRUSTLAB_EXPORT_DIR"
	EnvUserAgent = "TRUSTLAB_USER_AGENT"
	EnvEphemeral = "TRUSTLAB_EPHEMERAL"
	EnvTimezone  = "TZ"
)

// Config holds all application configuration.
type Config struct {
	DBPath      string
	CatalogPath string // "" selects the built-in catalog
	ExportDir   string
	UserAgent   string
	Timezone    string
	Ephemeral   bool // keep the session in memory only
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Defaults returns the configuration used when no variable is set.
func Defaults() *Config {
	return &Config{
		DBPath:    "trustlab.db",
		ExportDir: "exports",
		UserAgent: "trustlab-cli",
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	def := Defaults()
	cfg := &Config{
		DBPath:      getEnv(EnvDB, def.DBPath),
		CatalogPath: getEnv(EnvCatalog, def.CatalogPath),
		ExportDir:   getEnv(EnvExportDir, def.ExportDir),
		UserAgent:   getEnv(EnvUserAgent, def.UserAgent),
		Timezone:    getEnv(EnvTimezone, def.Timezone),
		Ephemeral:   getEnvBool(EnvEphemeral, def.Ephemeral),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.DBPath == "" && !c.Ephemeral {
		return fmt.Errorf("%s cannot be empty", EnvDB)
	}
	if c.ExportDir == "" {
		return fmt.Errorf("%s cannot be empty", EnvExportDir)
	}
	return nil
}

// LocalTimezone returns the IANA name of the local time zone, or "" when it
// cannot be determined.
func LocalTimezone() string {
	return zoneName(time.Local, "/etc/localtime")
}

// zoneName prefers the location's own name. A location loaded from the
// system default is only called "Local", so the zoneinfo path that link
// points at is used instead.
func zoneName(loc *time.Location, link string) string {
	if name := loc.String(); name != "" && name != "Local" {
		return name
	}
	target, err := os.Readlink(link)
	if err != nil {
		return ""
	}
	if _, name, ok := strings.Cut(target, "zoneinfo/"); ok && name != "" {
		return name
	}
	return ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
