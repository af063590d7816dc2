package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shouni/gemini-studio-kit/pkg/generator"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	APIKey string           `yaml:"api_key"`
	Models generator.Models `yaml:"models"`

	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Auth   AuthConfig   `yaml:"auth"`
	Video  VideoConfig  `yaml:"video"`
}

type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	Environment string `yaml:"environment"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	// SecretsLocation は GOOGLE_CLIENT_ID を含む実行時設定ドキュメントのパスまたは URL です。
	SecretsLocation string `yaml:"secrets"`
	ClientSecret    string `yaml:"client_secret"`
	RedirectURL     string `yaml:"redirect_url"`
}

type VideoConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	// MaxPolls が 0 の場合は上限なしです。
	MaxPolls int `yaml:"max_polls"`
}

// Default は既定値だけを入れた設定を返します。
func Default() *Config {
	return &Config{
		Models: generator.DefaultModels(),
		Server: ServerConfig{ListenAddr: ":8080", Environment: EnvDevelopment},
		Store:  StoreConfig{Path: "studio.db"},
		Auth: AuthConfig{
			SecretsLocation: "secrets.json",
			RedirectURL:     "http://localhost:8080/api/v1/auth/callback",
		},
		Video: VideoConfig{PollInterval: 10 * time.Second},
	}
}

// Load は YAML ファイル（任意）を読み、環境変数で上書きしてから検証します。
// path が空ならファイルは読みません。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Models = cfg.Models.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.APIKey = getEnv("API_KEY", c.APIKey)
	c.APIKey = getEnv("GEMINI_API_KEY", c.APIKey)

	c.Store.Path = getEnv("STUDIO_DB_PATH", c.Store.Path)
	c.Server.ListenAddr = getEnv("STUDIO_LISTEN_ADDR", c.Server.ListenAddr)
	c.Server.Environment = getEnv("STUDIO_ENV", c.Server.Environment)

	c.Auth.SecretsLocation = getEnv("STUDIO_SECRETS", c.Auth.SecretsLocation)
	c.Auth.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", c.Auth.ClientSecret)
	c.Auth.RedirectURL = getEnv("STUDIO_REDIRECT_URL", c.Auth.RedirectURL)

	c.Models.Image = getEnv("STUDIO_IMAGE_MODEL", c.Models.Image)
	c.Models.Edit = getEnv("STUDIO_EDIT_MODEL", c.Models.Edit)
	c.Models.Video = getEnv("STUDIO_VIDEO_MODEL", c.Models.Video)
	c.Models.Text = getEnv("STUDIO_TEXT_MODEL", c.Models.Text)

	if v := os.Getenv("STUDIO_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STUDIO_POLL_INTERVAL: %w", err)
		}
		c.Video.PollInterval = d
	}
	if v := os.Getenv("STUDIO_MAX_POLLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STUDIO_MAX_POLLS: %w", err)
		}
		c.Video.MaxPolls = n
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("GEMINI_API_KEY is required"))
	}
	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store path is required"))
	}
	if c.Server.ListenAddr == "" {
		errs = append(errs, fmt.Errorf("listen address is required"))
	}
	if c.Video.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("video poll interval must be positive, got %s", c.Video.PollInterval))
	}
	if c.Video.MaxPolls < 0 {
		errs = append(errs, fmt.Errorf("video max polls must not be negative, got %d", c.Video.MaxPolls))
	}
	return errors.Join(errs...)
}

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
