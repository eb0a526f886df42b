package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDB, EnvCatalog, EnvExportDir, EnvUserAgent, EnvEphemeral, EnvTimezone} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DBPath:    "trustlab.db",
		ExportDir: "exports",
		UserAgent: "trustlab-cli",
	}, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDB, "/tmp/x.db")
	t.Setenv(EnvCatalog, "catalog.yaml")
	t.Setenv(EnvExportDir, " out ")
	t.Setenv(EnvUserAgent, "kiosk-3")
	t.Setenv(EnvTimezone, "Europe/Berlin")
	t.Setenv(EnvEphemeral, "yes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, "out", cfg.ExportDir)
	assert.Equal(t, "kiosk-3", cfg.UserAgent)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.True(t, cfg.Ephemeral)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvExportDir, "")

	_, err := Load()
	assert.ErrorContains(t, err, EnvExportDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{DBPath: "a.db", ExportDir: "out"}, false},
		{"no db", Config{ExportDir: "out"}, true},
		{"no db but ephemeral", Config{ExportDir: "out", Ephemeral: true}, false},
		{"no export dir", Config{DBPath: "a.db"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetEnvBool_Unparseable(t *testing.T) {
	t.Setenv(EnvEphemeral, "maybe")
	assert.True(t, getEnvBool(EnvEphemeral, true))
	assert.False(t, getEnvBool(EnvEphemeral, false))
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRUSTLAB_DB=from-dotenv.db\nTRUSTLAB_USER_AGENT=dotenv\n"), 0o644))
	t.Setenv(EnvUserAgent, "already-set")

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv(EnvDB) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.DBPath)
	assert.Equal(t, "already-set", cfg.UserAgent)
}

func TestLoadDotEnv_MissingIsIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestZoneName(t *testing.T) {
	dir := t.TempDir()
	berlin := filepath.Join(dir, "berlin")
	require.NoError(t, os.Symlink("/usr/share/zoneinfo/Europe/Berlin", berlin))
	other := filepath.Join(dir, "other")
	require.NoError(t, os.Symlink("/opt/tz", other))
	local := time.FixedZone("Local", 0)

	tests := []struct {
		name string
		loc  *time.Location
		link string
		want string
	}{
		{"named location", time.UTC, berlin, "UTC"},
		{"local resolved from link", local, berlin, "Europe/Berlin"},
		{"link outside zoneinfo", local, other, ""},
		{"no link", local, filepath.Join(dir, "missing"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zoneName(tt.loc, tt.link))
		})
	}
}

func TestLocalTimezone_NeverLocal(t *testing.T) {
	assert.NotEqual(t, "Local", LocalTimezone())
}
