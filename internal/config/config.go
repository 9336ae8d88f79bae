package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

// Used when neither TRACKER_REGIONS_FILE nor TRACKER_REGIONS is set. Kept in
// step with configs/regions.yaml.
var defaultRegions = []domain.Region{
	{ID: "usa_saudi", Name: "USA, Saudi Arabia & Others", StartDate: domain.MustParseDate("2027-02-08")},
	{ID: "south_asia", Name: "India, Pakistan, Bangladesh, Malaysia & Others", StartDate: domain.MustParseDate("2027-02-09")},
}

// DatabaseConfig selects the tracker store. Driver "memory" keeps everything
// in process and is meant for local runs only.
type DatabaseConfig struct {
	Driver     string
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	SQLitePath string
}

func (c DatabaseConfig) IsSQL() bool { return c.Driver != "memory" }

func (c DatabaseConfig) DSN() string {
	if c.Driver == "sqlite3" {
		return c.SQLitePath
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type Config struct {
	Port               string
	DB                 DatabaseConfig
	Redis              cache.Config
	JWTSecret          string
	JWTIssuer          string
	Location           *time.Location
	Catalog            *domain.RegionCatalog
	RateLimitPerMinute int
	StoreRetryAttempts int
	SessionIdleTTL     time.Duration
	StoreTimeout       time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[CONFIG] Ignoring unreadable .env: %v", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		DB: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "pgx"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			Name:       os.Getenv("DB_NAME"),
			SQLitePath: getEnv("SQLITE_PATH", "sawm.db"),
		},
		Redis: cache.Config{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getEnv("JWT_ISSUER", "sawm-sync-engine"),
	}

	var err error
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	if cfg.StoreRetryAttempts, err = getEnvInt("STORE_RETRY_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = time.ParseDuration(getEnv("TRACKER_SESSION_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("invalid TRACKER_SESSION_TTL: %w", err)
	}
	if cfg.StoreTimeout, err = time.ParseDuration(getEnv("TRACKER_STORE_TIMEOUT", "2s")); err != nil {
		return nil, fmt.Errorf("invalid TRACKER_STORE_TIMEOUT: %w", err)
	}

	switch cfg.DB.Driver {
	case "pgx", "postgres", "sqlite3", "memory":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want pgx, postgres, sqlite3 or memory", cfg.DB.Driver)
	}

	if cfg.Location, err = time.LoadLocation(getEnv("TRACKER_TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("invalid TRACKER_TIMEZONE: %w", err)
	}

	if cfg.Catalog, err = loadCatalog(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadCatalog() (*domain.RegionCatalog, error) {
	defaultID := os.Getenv("TRACKER_DEFAULT_REGION")

	if path := os.Getenv("TRACKER_REGIONS_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read regions file: %w", err)
		}
		file, err := ParseRegionsYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse regions file %s: %w", path, err)
		}
		if defaultID == "" {
			defaultID = file.Default
		}
		return domain.NewRegionCatalog(defaultID, file.Regions...)
	}

	if inline := os.Getenv("TRACKER_REGIONS"); inline != "" {
		regions, err := ParseInlineRegions(inline)
		if err != nil {
			return nil, fmt.Errorf("invalid TRACKER_REGIONS: %w", err)
		}
		return domain.NewRegionCatalog(defaultID, regions...)
	}

	return domain.NewRegionCatalog(defaultID, defaultRegions...)
}

type RegionsFile struct {
	Default string          `yaml:"default"`
	Regions []domain.Region `yaml:"regions"`
}

func ParseRegionsYAML(data []byte) (RegionsFile, error) {
	var f RegionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RegionsFile{}, err
	}
	if len(f.Regions) == 0 {
		return RegionsFile{}, fmt.Errorf("no regions defined")
	}
	return f, nil
}

// ParseInlineRegions reads "id=YYYY-MM-DD,id2=YYYY-MM-DD".
func ParseInlineRegions(s string) ([]domain.Region, error) {
	var out []domain.Region
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, date, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("region %q: expected id=YYYY-MM-DD", part)
		}
		start, err := domain.ParseDate(strings.TrimSpace(date))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", id, err)
		}
		out = append(out, domain.Region{ID: strings.TrimSpace(id), StartDate: start})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no regions defined")
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
