package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Addon     AddonConfig     `mapstructure:"addon"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MetadataConfig holds upstream provider configuration.
type MetadataConfig struct {
	Mock    bool          `mapstructure:"mock"` // serve canned data instead of calling upstreams
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	MDBList MDBListConfig `mapstructure:"mdblist"`
	RPDB    RPDBConfig    `mapstructure:"rpdb"`
}

// TMDBConfig holds The Movie Database API settings.
type TMDBConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	ImageBaseURL      string  `mapstructure:"image_base_url"`
	Timeout           int     `mapstructure:"timeout"` // seconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Retries           uint    `mapstructure:"retries"`
}

// MDBListConfig holds list provider settings. The API key is per user and
// travels in the addon configuration, not here.
type MDBListConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Timeout     int    `mapstructure:"timeout"` // seconds
	Concurrency int    `mapstructure:"concurrency"`
}

// RPDBConfig holds poster override settings.
type RPDBConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	ProbeTimeoutMS   int    `mapstructure:"probe_timeout_ms"`
	ProbeConcurrency int    `mapstructure:"probe_concurrency"`
}

// ProbeTimeout returns the per-probe timeout.
func (c RPDBConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

// CacheConfig holds detail cache tiers and lookup cache settings.
type CacheConfig struct {
	MaxEntries          int           `mapstructure:"max_entries"`
	MovieMaxAge         time.Duration `mapstructure:"movie_max_age"`
	EndedSeriesMaxAge   time.Duration `mapstructure:"ended_series_max_age"`
	OngoingSeriesMaxAge time.Duration `mapstructure:"ongoing_series_max_age"`
	StaleRevalidate     time.Duration `mapstructure:"stale_revalidate"`
	StaleIfError        time.Duration `mapstructure:"stale_if_error"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
	LookupTTL           time.Duration `mapstructure:"lookup_ttl"`
	LookupMaxItems      int           `mapstructure:"lookup_max_items"`
}

// CatalogConfig holds manifest option settings.
type CatalogConfig struct {
	Years         int      `mapstructure:"years"`
	WarmLanguages []string `mapstructure:"warm_languages"`
}

// AddonConfig holds the manifest envelope.
type AddonConfig struct {
	ID           string `mapstructure:"id"`
	Name         string `mapstructure:"name"`
	Version      string `mapstructure:"version"`
	Description  string `mapstructure:"description"`
	Logo         string `mapstructure:"logo"`
	Configurable bool   `mapstructure:"configurable"`
}

// SchedulerConfig holds background task intervals.
type SchedulerConfig struct {
	CacheSweepInterval     time.Duration `mapstructure:"cache_sweep_interval"`
	OptionsRefreshInterval time.Duration `mapstructure:"options_refresh_interval"`
	HealthCheckInterval    time.Duration `mapstructure:"health_check_interval"`
	HealthCheckTimeout     time.Duration `mapstructure:"health_check_timeout"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 1337,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Metadata: MetadataConfig{
			TMDB: TMDBConfig{
				APIKey:            EmbeddedTMDBKey,
				BaseURL:           "https://api.themoviedb.org/3",
				ImageBaseURL:      "https://image.tmdb.org/t/p",
				Timeout:           15,
				RequestsPerSecond: 40,
				Retries:           3,
			},
			MDBList: MDBListConfig{
				BaseURL:     "https://api.mdblist.com",
				Timeout:     15,
				Concurrency: 5,
			},
			RPDB: RPDBConfig{
				BaseURL:          "https://api.ratingposterdb.com",
				ProbeTimeoutMS:   2000,
				ProbeConcurrency: 8,
			},
		},
		Cache: CacheConfig{
			MaxEntries:          5000,
			MovieMaxAge:         14 * 24 * time.Hour,
			EndedSeriesMaxAge:   14 * 24 * time.Hour,
			OngoingSeriesMaxAge: 24 * time.Hour,
			StaleRevalidate:     20 * 24 * time.Hour,
			StaleIfError:        30 * 24 * time.Hour,
			FetchTimeout:        20 * time.Second,
			LookupTTL:           12 * time.Hour,
			LookupMaxItems:      2000,
		},
		Catalog: CatalogConfig{
			Years:         20,
			WarmLanguages: []string{"en-US"},
		},
		Addon: AddonConfig{
			ID:           "org.tmdbcat.catalog",
			Name:         "The Movie Database",
			Version:      "1.0.0",
			Description:  "Catalogs and metadata from The Movie Database and MDBList.",
			Configurable: true,
		},
		Scheduler: SchedulerConfig{
			CacheSweepInterval:     10 * time.Minute,
			OptionsRefreshInterval: time.Hour,
			HealthCheckInterval:    15 * time.Minute,
			HealthCheckTimeout:     10 * time.Second,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.tmdbcat")
	}

	v.SetEnvPrefix("TMDBCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Metadata.TMDB.APIKey == "" {
		cfg.Metadata.TMDB.APIKey = EmbeddedTMDBKey
	}

	return cfg, nil
}

// setDefaults mirrors Default into viper so every key is bindable from env.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	v.SetDefault("metadata.mock", false)
	v.SetDefault("metadata.tmdb.api_key", "")
	v.SetDefault("metadata.tmdb.base_url", d.Metadata.TMDB.BaseURL)
	v.SetDefault("metadata.tmdb.image_base_url", d.Metadata.TMDB.ImageBaseURL)
	v.SetDefault("metadata.tmdb.timeout", d.Metadata.TMDB.Timeout)
	v.SetDefault("metadata.tmdb.requests_per_second", d.Metadata.TMDB.RequestsPerSecond)
	v.SetDefault("metadata.tmdb.retries", d.Metadata.TMDB.Retries)

	v.SetDefault("metadata.mdblist.base_url", d.Metadata.MDBList.BaseURL)
	v.SetDefault("metadata.mdblist.timeout", d.Metadata.MDBList.Timeout)
	v.SetDefault("metadata.mdblist.concurrency", d.Metadata.MDBList.Concurrency)

	v.SetDefault("metadata.rpdb.base_url", d.Metadata.RPDB.BaseURL)
	v.SetDefault("metadata.rpdb.probe_timeout_ms", d.Metadata.RPDB.ProbeTimeoutMS)
	v.SetDefault("metadata.rpdb.probe_concurrency", d.Metadata.RPDB.ProbeConcurrency)

	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.movie_max_age", d.Cache.MovieMaxAge)
	v.SetDefault("cache.ended_series_max_age", d.Cache.EndedSeriesMaxAge)
	v.SetDefault("cache.ongoing_series_max_age", d.Cache.OngoingSeriesMaxAge)
	v.SetDefault("cache.stale_revalidate", d.Cache.StaleRevalidate)
	v.SetDefault("cache.stale_if_error", d.Cache.StaleIfError)
	v.SetDefault("cache.fetch_timeout", d.Cache.FetchTimeout)
	v.SetDefault("cache.lookup_ttl", d.Cache.LookupTTL)
	v.SetDefault("cache.lookup_max_items", d.Cache.LookupMaxItems)

	v.SetDefault("catalog.years", d.Catalog.Years)
	v.SetDefault("catalog.warm_languages", d.Catalog.WarmLanguages)

	v.SetDefault("addon.id", d.Addon.ID)
	v.SetDefault("addon.name", d.Addon.Name)
	v.SetDefault("addon.version", d.Addon.Version)
	v.SetDefault("addon.description", d.Addon.Description)
	v.SetDefault("addon.logo", d.Addon.Logo)
	v.SetDefault("addon.configurable", d.Addon.Configurable)

	v.SetDefault("scheduler.cache_sweep_interval", d.Scheduler.CacheSweepInterval)
	v.SetDefault("scheduler.options_refresh_interval", d.Scheduler.OptionsRefreshInterval)
	v.SetDefault("scheduler.health_check_interval", d.Scheduler.HealthCheckInterval)
	v.SetDefault("scheduler.health_check_timeout", d.Scheduler.HealthCheckTimeout)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
