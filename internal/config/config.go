package config

import (
	"errors"
	"fmt"
	"os"

	"glowup/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Redis      RedisConfig      `yaml:"redis"`
	Local      LocalConfig      `yaml:"local"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Admin      AdminConfig      `yaml:"admin"`
	Advice     AdviceConfig     `yaml:"advice"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Exports    ExportConfig     `yaml:"exports"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit ServerRateLimit `yaml:"rate_limit"`
}

type ServerRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// StoreConfig selects the persistence backend once at startup.
// Backend "auto" uses redis when an address is configured and reachable,
// otherwise falls back to the local store.
type StoreConfig struct {
	Backend string `yaml:"backend"` // auto, redis, local
}

const (
	BackendAuto  = "auto"
	BackendRedis = "redis"
	BackendLocal = "local"
)

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LocalConfig struct {
	Path           string `yaml:"path"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type AdminConfig struct {
	Token            string `yaml:"token"`
	UpdateTimeoutSec int    `yaml:"update_timeout_sec"`
}

type AdviceConfig struct {
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url"`
	SystemInstruction string `yaml:"system_instruction"`
	ApologyText       string `yaml:"apology_text"`
	TimeoutSec        int    `yaml:"timeout_sec"`
}

type TelegramConfig struct {
	BotToken string  `yaml:"bot_token"`
	ChatIDs  []int64 `yaml:"chat_ids"`
	Debug    bool    `yaml:"debug"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; env vars may come from the environment directly
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendAuto, BackendLocal:
	case BackendRedis:
		if c.Redis.Address == "" {
			return errors.New("store.backend=redis requires redis.address")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}

	if c.Local.Path == "" {
		return errors.New("local store path is required")
	}

	if c.Admin.Token == "" {
		return errors.New("admin token is required")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = BackendAuto
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Local.Path == "" {
		c.Local.Path = "data/bookings"
	}
	if c.Local.PollIntervalMS == 0 {
		c.Local.PollIntervalMS = models.DefaultPollInterval
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "configs/catalog.yaml"
	}
	if c.Admin.UpdateTimeoutSec == 0 {
		c.Admin.UpdateTimeoutSec = models.DefaultUpdateTimeout
	}
	if c.Advice.Model == "" {
		c.Advice.Model = "gemini-2.5-flash"
	}
	if c.Advice.BaseURL == "" {
		c.Advice.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Advice.TimeoutSec == 0 {
		c.Advice.TimeoutSec = models.DefaultAdviceTimeout
	}
	if c.Advice.ApologyText == "" {
		c.Advice.ApologyText = "Sorry, the beauty advisor is unavailable right now. Please try again in a moment."
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
