package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type APIConfig struct {
	Port          int           `yaml:"port"`
	MetricsPort   int           `yaml:"metrics_port"`
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTTTL        time.Duration `yaml:"jwt_ttl"`
	RateLimit     int           `yaml:"rate_limit"`        // requests per window per user
	RateWindow    time.Duration `yaml:"rate_window"`
	DailyQuota    int           `yaml:"daily_quota"`       // generations per user per day
	AllowedOrigin string        `yaml:"allowed_origin"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	AccessKey string        `yaml:"access_key"`
	SecretKey string        `yaml:"secret_key"`
	Bucket    string        `yaml:"bucket"`
	UseSSL    bool          `yaml:"use_ssl"`
	SignTTL   time.Duration `yaml:"sign_ttl"`
	PublicURL string        `yaml:"public_url"` // optional public bucket base; skips signing
}

type AIConfig struct {
	GeminiKey        string `yaml:"gemini_key"`
	GeminiURL        string `yaml:"gemini_url"`
	GeminiImageModel string `yaml:"gemini_image_model"`
	GeminiVideoModel string `yaml:"gemini_video_model"`
	OpenAIKey        string `yaml:"openai_key"`
	OpenAIImageModel string `yaml:"openai_image_model"`
	DefaultProvider  string `yaml:"default_provider"` // gemini | openai
}

type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`     // claim-loop tick
	BackoffBase time.Duration `yaml:"backoff_base"` // first poll delay
	BackoffCap  time.Duration `yaml:"backoff_cap"`
	MaxElapsed  time.Duration `yaml:"max_elapsed"`  // job fails after this
	JanitorAge  time.Duration `yaml:"janitor_age"`  // stale-job reap age
	Workers     int           `yaml:"workers"`
}

type UploadConfig struct {
	MaxBytes     int64 `yaml:"max_bytes"`     // reject above this
	TargetBytes  int64 `yaml:"target_bytes"`  // re-encode down to roughly this
	MaxDimension int   `yaml:"max_dimension"` // longest edge after resize
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Poller   PollerConfig   `yaml:"poller"`
	Upload   UploadConfig   `yaml:"upload"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.MetricsPort == 0 {
		c.API.MetricsPort = 9091
	}
	if c.API.JWTTTL <= 0 {
		c.API.JWTTTL = 24 * time.Hour
	}
	if c.API.RateLimit <= 0 {
		c.API.RateLimit = 30
	}
	if c.API.RateWindow <= 0 {
		c.API.RateWindow = time.Minute
	}
	if c.API.DailyQuota <= 0 {
		c.API.DailyQuota = 50
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = time.Hour
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "tryonjewel"
	}
	if c.Storage.SignTTL <= 0 {
		c.Storage.SignTTL = time.Hour
	}
	if c.AI.GeminiImageModel == "" {
		c.AI.GeminiImageModel = "gemini-2.5-flash-image-preview"
	}
	if c.AI.GeminiVideoModel == "" {
		c.AI.GeminiVideoModel = "veo-3.0-generate-001"
	}
	if c.AI.OpenAIImageModel == "" {
		c.AI.OpenAIImageModel = "gpt-image-1"
	}
	if c.AI.DefaultProvider == "" {
		c.AI.DefaultProvider = "gemini"
	}
	if c.Poller.Interval <= 0 {
		c.Poller.Interval = 2 * time.Second
	}
	if c.Poller.BackoffBase <= 0 {
		c.Poller.BackoffBase = 5 * time.Second
	}
	if c.Poller.BackoffCap <= 0 {
		c.Poller.BackoffCap = 40 * time.Second
	}
	if c.Poller.MaxElapsed <= 0 {
		c.Poller.MaxElapsed = 10 * time.Minute
	}
	if c.Poller.JanitorAge <= 0 {
		c.Poller.JanitorAge = time.Hour
	}
	if c.Poller.Workers <= 0 {
		c.Poller.Workers = 4
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 10 << 20
	}
	if c.Upload.TargetBytes <= 0 {
		c.Upload.TargetBytes = 2 << 20
	}
	if c.Upload.MaxDimension <= 0 {
		c.Upload.MaxDimension = 2048
	}
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("config: database.url is required")
	}
	if c.Storage.Endpoint == "" {
		return errors.New("config: storage.endpoint is required")
	}
	if c.API.JWTSecret == "" && !c.Runtime.Dev {
		return errors.New("config: api.jwt_secret is required outside dev mode")
	}
	return nil
}
