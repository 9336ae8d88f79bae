package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

const regionsYAML = `
default: uk
regions:
  - id: uk
    name: United Kingdom
    start_date: 2027-02-08
  - id: pk
    name: Pakistan
    start_date: "2027-02-09"
`

func TestParseRegionsYAML(t *testing.T) {
	f, err := ParseRegionsYAML([]byte(regionsYAML))
	require.NoError(t, err)

	assert.Equal(t, "uk", f.Default)
	require.Len(t, f.Regions, 2)
	assert.Equal(t, domain.MustParseDate("2027-02-08"), f.Regions[0].StartDate)
	assert.Equal(t, domain.MustParseDate("2027-02-09"), f.Regions[1].StartDate)
	assert.Equal(t, "Pakistan", f.Regions[1].Name)

	_, err = ParseRegionsYAML([]byte("regions: []"))
	assert.Error(t, err)

	_, err = ParseRegionsYAML([]byte("regions:\n  - id: x\n    start_date: 2027-13-40\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestParseInlineRegions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"Single", "global=2027-02-08", 1, false},
		{"Several with spaces", " a=2027-02-08 , b=2027-02-09,", 2, false},
		{"Missing separator", "a2027-02-08", 0, true},
		{"Bad date", "a=2027-2-8", 0, true},
		{"Empty", " , ", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInlineRegions(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "")
		t.Setenv("TRACKER_REGIONS_FILE", "")
		t.Setenv("TRACKER_REGIONS", "")
		t.Setenv("TRACKER_DEFAULT_REGION", "")
		t.Setenv("TRACKER_TIMEZONE", "UTC")
		t.Setenv("TRACKER_STORE_TIMEOUT", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pgx", cfg.DB.Driver)
		assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
		assert.Equal(t, "usa_saudi", cfg.Catalog.DefaultID())
		assert.Len(t, cfg.Catalog.Regions(), 2)
		assert.Equal(t, "UTC", cfg.Location.String())
	})

	t.Run("Inline regions and sqlite", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite3")
		t.Setenv("SQLITE_PATH", ":memory:")
		t.Setenv("TRACKER_REGIONS_FILE", "")
		t.Setenv("TRACKER_REGIONS", "a=2027-02-08,b=2027-02-09")
		t.Setenv("TRACKER_DEFAULT_REGION", "b")
		t.Setenv("TRACKER_TIMEZONE", "Europe/Rome")
		t.Setenv("STORE_RETRY_ATTEMPTS", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":memory:", cfg.DB.DSN())
		assert.Equal(t, "b", cfg.Catalog.DefaultID())
		assert.Equal(t, 5, cfg.StoreRetryAttempts)
	})

	t.Run("Regions file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "regions.yaml")
		require.NoError(t, os.WriteFile(path, []byte(regionsYAML), 0o600))

		t.Setenv("DB_DRIVER", "")
		t.Setenv("TRACKER_REGIONS_FILE", path)
		t.Setenv("TRACKER_DEFAULT_REGION", "")
		t.Setenv("TRACKER_TIMEZONE", "UTC")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "uk", cfg.Catalog.DefaultID())
	})

	t.Run("Invalid values", func(t *testing.T) {
		t.Setenv("TRACKER_REGIONS_FILE", "")
		t.Setenv("TRACKER_REGIONS", "")
		t.Setenv("TRACKER_TIMEZONE", "UTC")

		t.Setenv("DB_DRIVER", "mysql")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_DRIVER")

		t.Setenv("DB_DRIVER", "pgx")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
		_, err = Load()
		assert.ErrorContains(t, err, "RATE_LIMIT_PER_MINUTE")

		t.Setenv("RATE_LIMIT_PER_MINUTE", "")
		t.Setenv("TRACKER_DEFAULT_REGION", "atlantis")
		_, err = Load()
		assert.ErrorIs(t, err, domain.ErrUnknownRegion)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	c := DatabaseConfig{Driver: "pgx", User: "u", Password: "p", Host: "h", Port: "5432", Name: "db"}
	assert.Equal(t, "postgres://u:p@h:5432/db?sslmode=disable", c.DSN())
	assert.True(t, c.IsSQL())
	assert.False(t, DatabaseConfig{Driver: "memory"}.IsSQL())
}

func TestDefaultRegionsMatchShippedFile(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "configs", "regions.yaml"))
	require.NoError(t, err)

	f, err := ParseRegionsYAML(data)
	require.NoError(t, err)

	assert.Equal(t, f.Default, defaultRegions[0].ID)
	assert.Equal(t, f.Regions, defaultRegions)
}
