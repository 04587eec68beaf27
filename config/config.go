package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Model    ModelConfig    `mapstructure:"model"`
	Chart    ChartConfig    `mapstructure:"chart"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type QueueConfig struct {
	ScrapeQueue string `mapstructure:"scrape_queue"`
	MaxWorkers  int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// ScraperConfig drives the ETL side: which external sources exist, how hard
// the adapter retries, and the optional daily schedule.
type ScraperConfig struct {
	Season       string         `mapstructure:"season"`
	MaxAttempts  int            `mapstructure:"max_attempts"`
	RetryBaseMS  int            `mapstructure:"retry_base_ms"`
	TimeoutSecs  int            `mapstructure:"timeout_secs"`
	UserAgent    string         `mapstructure:"user_agent"`
	Sources      []SourceConfig `mapstructure:"sources"`
	ScheduleHour int            `mapstructure:"schedule_hour"`
	Scheduled    bool           `mapstructure:"scheduled"`
}

// SourceConfig describes one external stats site. Paths maps sport name to an
// endpoint template with {category} and {season} placeholders.
type SourceConfig struct {
	Name    string            `mapstructure:"name"`
	BaseURL string            `mapstructure:"base_url"`
	Paths   map[string]string `mapstructure:"paths"`
}

// ModelConfig configures the optional LLM backend for free-text questions.
// An empty BaseURL means no backend: the chat dispatcher degrades to the
// deterministic intent grammar only.
type ModelConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Name        string `mapstructure:"name"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	TopN   int `mapstructure:"top_n"`
}

func (c *ScraperConfig) RetryBase() time.Duration {
	if c.RetryBaseMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.RetryBaseMS) * time.Millisecond
}

func (c *ScraperConfig) Timeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// SourceByName returns the source config with the given name.
func (c *ScraperConfig) SourceByName(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}

func Load(configPath string) (*Config, error) {
	// Prefer config.local.yaml when present (real credentials, not committed).
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
