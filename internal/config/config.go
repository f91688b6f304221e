package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings for the fetch and analyze commands, populated
// from an optional YAML file and CROPSHOCK_* environment variables.
type Config struct {
	NOAA    NOAAConfig    `mapstructure:"noaa"`
	USDA    USDAConfig    `mapstructure:"usda"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Paths   PathsConfig   `mapstructure:"paths"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// NOAAConfig holds Climate Data Online API settings.
type NOAAConfig struct {
	Token     string        `mapstructure:"token"`
	BaseURL   string        `mapstructure:"base_url"`
	Dataset   string        `mapstructure:"dataset"`
	Datatypes []string      `mapstructure:"datatypes"`
	Stations  []string      `mapstructure:"stations"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// USDAConfig holds NASS Quick Stats API settings.
type USDAConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Crops   []string      `mapstructure:"crops"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FetchConfig holds the shared fetch window and resilience settings.
type FetchConfig struct {
	YearStart      int           `mapstructure:"year_start"`
	YearEnd        int           `mapstructure:"year_end"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay  time.Duration `mapstructure:"retry_max_delay"`
}

// PathsConfig holds the data and results directories.
type PathsConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	ResultsDir string `mapstructure:"results_dir"`
}

// HTTPConfig holds the health/metrics server settings used during fetch.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (optional when empty) and
// the environment, applying defaults where unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CROPSHOCK")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateFetch checks the settings only the fetch command needs.
// API credentials are not required for offline analysis.
func (c *Config) ValidateFetch() error {
	if c.NOAA.Token == "" {
		return errors.New("noaa.token is required (CROPSHOCK_NOAA_TOKEN)")
	}
	if c.USDA.APIKey == "" {
		return errors.New("usda.api_key is required (CROPSHOCK_USDA_API_KEY)")
	}
	if len(c.NOAA.Stations) == 0 {
		return errors.New("noaa.stations must list at least one station")
	}
	return nil
}

func (c *Config) validate() error {
	if c.Fetch.YearStart <= 0 || c.Fetch.YearEnd <= 0 {
		return errors.New("fetch.year_start and fetch.year_end are required")
	}
	if c.Fetch.YearEnd < c.Fetch.YearStart {
		return fmt.Errorf("fetch.year_end %d precedes fetch.year_start %d", c.Fetch.YearEnd, c.Fetch.YearStart)
	}
	if c.NOAA.Timeout <= 0 || c.USDA.Timeout <= 0 {
		return errors.New("API timeouts must be positive")
	}
	if c.Paths.DataDir == "" || c.Paths.ResultsDir == "" {
		return errors.New("paths.data_dir and paths.results_dir are required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("noaa.base_url", "https://www.ncei.noaa.gov/cdo-web/api/v2")
	v.SetDefault("noaa.dataset", "GSOM")
	v.SetDefault("noaa.datatypes", []string{"TAVG", "PRCP"})
	v.SetDefault("noaa.stations", []string{"GHCND:USW00023174"}) // LAX
	v.SetDefault("noaa.timeout", "30s")

	v.SetDefault("usda.base_url", "https://quickstats.nass.usda.gov/api/api_GET/")
	v.SetDefault("usda.crops", []string{"CORN", "WHEAT"})
	v.SetDefault("usda.timeout", "30s")

	v.SetDefault("fetch.year_start", 2010)
	v.SetDefault("fetch.year_end", 2024)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.retry_base_delay", "500ms")
	v.SetDefault("fetch.retry_max_delay", "10s")

	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.results_dir", "results")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
