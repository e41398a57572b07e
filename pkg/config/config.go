package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the harvester reads
const EnvPrefix = "AQISCRAPER_"

// Config holds every deploy-time setting of the harvester
type Config struct {
	AirNow    AirNowConfig    `yaml:"airnow" json:"airnow"`
	Harvest   HarvestConfig   `yaml:"harvest" json:"harvest"`
	Retry     RetryConfig     `yaml:"retry" json:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// AirNowConfig describes the remote observation endpoint
type AirNowConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	APIKey         string        `yaml:"api_key" json:"-"`
	Distance       int           `yaml:"distance" json:"distance"`
	Format         string        `yaml:"format" json:"format"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// HarvestConfig fixes the work plan and the pacing between units
type HarvestConfig struct {
	Locations      []string      `yaml:"locations" json:"locations"`
	Years          []int         `yaml:"years" json:"years"`
	PacingInterval time.Duration `yaml:"pacing_interval" json:"pacing_interval"`
}

// RetryConfig controls retries of connection-establishment failures
type RetryConfig struct {
	ConnectRetries    int           `yaml:"connect_retries" json:"connect_retries"`
	BackoffBase       time.Duration `yaml:"backoff_base" json:"backoff_base"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// RateLimitConfig caps outbound requests per hour; 0 disables the cap
type RateLimitConfig struct {
	RequestsPerHour int `yaml:"requests_per_hour" json:"requests_per_hour"`
}

// StorageConfig locates the SQLite database
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" json:"database_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns the compiled-in configuration
func DefaultConfig() *Config {
	return &Config{
		AirNow: AirNowConfig{
			BaseURL:        "https://www.airnowapi.org/aq/observation/zipCode/historical",
			Distance:       25,
			Format:         "application/json",
			RequestTimeout: 10 * time.Second,
		},
		Harvest: HarvestConfig{
			Locations:      []string{"02109", "02119"},
			Years:          []int{2022, 2023},
			PacingInterval: 8 * time.Second,
		},
		Retry: RetryConfig{
			ConnectRetries:    3,
			BackoffBase:       500 * time.Millisecond,
			BackoffMultiplier: 2.0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerHour: 0,
		},
		Storage: StorageConfig{
			DatabasePath: "aqi_data.db",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "aqi_script.log",
		},
	}
}

// LoadFromEnv overrides fields from AQISCRAPER_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := getenv("API_KEY"); v != "" {
		c.AirNow.APIKey = v
	}
	if v := getenv("BASE_URL"); v != "" {
		c.AirNow.BaseURL = v
	}
	if v := getenv("LOCATIONS"); v != "" {
		c.Harvest.Locations = splitList(v)
	}
	if v := getenv("YEARS"); v != "" {
		years, err := parseYears(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			c.Harvest.Years = years
		}
	}
	if err := envDuration("PACING_INTERVAL", &c.Harvest.PacingInterval); err != nil {
		errs = append(errs, err)
	}
	if err := envDuration("REQUEST_TIMEOUT", &c.AirNow.RequestTimeout); err != nil {
		errs = append(errs, err)
	}
	if err := envInt("REQUESTS_PER_HOUR", &c.RateLimit.RequestsPerHour); err != nil {
		errs = append(errs, err)
	}
	if err := envInt("CONNECT_RETRIES", &c.Retry.ConnectRetries); err != nil {
		errs = append(errs, err)
	}
	if v := getenv("DATABASE_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_FILE"); ok {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile merges a YAML file over the current values. An empty path
// searches the standard locations and is not an error when nothing is found.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	locations := []string{
		".aqiscraper.yaml",
		".aqiscraper.yml",
	}
	if home != "" {
		locations = append(locations,
			filepath.Join(home, ".config", "aqiscraper", "config.yaml"),
			filepath.Join(home, ".config", "aqiscraper", "config.yml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.AirNow.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("airnow base URL %q is not an absolute URL", c.AirNow.BaseURL))
	}
	if c.AirNow.Distance <= 0 {
		errs = append(errs, errors.New("airnow distance must be positive"))
	}
	if c.AirNow.Format != "application/json" {
		errs = append(errs, fmt.Errorf("airnow format %q is not supported; only application/json responses can be stored", c.AirNow.Format))
	}
	if c.AirNow.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if len(c.Harvest.Locations) == 0 {
		errs = append(errs, errors.New("at least one location is required"))
	}
	seenLocations := make(map[string]bool)
	for _, loc := range c.Harvest.Locations {
		if strings.TrimSpace(loc) == "" {
			errs = append(errs, errors.New("locations must not be blank"))
			continue
		}
		if seenLocations[loc] {
			errs = append(errs, fmt.Errorf("location %s is listed twice", loc))
		}
		seenLocations[loc] = true
	}

	if len(c.Harvest.Years) == 0 {
		errs = append(errs, errors.New("at least one year is required"))
	}
	seenYears := make(map[int]bool)
	for _, year := range c.Harvest.Years {
		if year < 1 || year > 9999 {
			errs = append(errs, fmt.Errorf("year %d is out of range", year))
		}
		if seenYears[year] {
			errs = append(errs, fmt.Errorf("year %d is listed twice", year))
		}
		seenYears[year] = true
	}
	if c.Harvest.PacingInterval < 0 {
		errs = append(errs, errors.New("pacing interval cannot be negative"))
	}

	if c.Retry.ConnectRetries < 0 {
		errs = append(errs, errors.New("connect retries cannot be negative"))
	}
	if c.Retry.BackoffBase < 0 {
		errs = append(errs, errors.New("backoff base cannot be negative"))
	}
	if c.Retry.BackoffMultiplier < 1 {
		errs = append(errs, errors.New("backoff multiplier must be at least 1"))
	}

	if c.RateLimit.RequestsPerHour < 0 {
		errs = append(errs, errors.New("requests per hour cannot be negative"))
	}

	if c.Storage.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Load resolves configuration with precedence
// environment > .env file > config file > defaults, then validates it.
// The config file path comes from AQISCRAPER_CONFIG when set.
func Load() (*Config, error) {
	// .env values never override variables already present in the environment
	_ = godotenv.Load(".env")

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(getenv("CONFIG")); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func envDuration(name string, target *time.Duration) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*target = d
	return nil
}

func envInt(name string, target *int) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*target = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseYears(v string) ([]int, error) {
	var years []int
	for _, part := range splitList(v) {
		year, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid %sYEARS entry %q: %w", EnvPrefix, part, err)
		}
		years = append(years, year)
	}
	return years, nil
}
