package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName               string        `mapstructure:"app_name"`
	Env                   string        `mapstructure:"app_env"`
	LogLevel              string        `mapstructure:"log_level"`
	APIURL                string        `mapstructure:"api_url"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	Port               int      `mapstructure:"port"`
	FrontendPort       int      `mapstructure:"frontend_port"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	PublishersFile     string   `mapstructure:"publishers_file"`

	StorageType                 string        `mapstructure:"storage_type"`
	BBoltPath                   string        `mapstructure:"bbolt_path"`
	SeedData                    bool          `mapstructure:"seed_data"`
	StartupRetries              int           `mapstructure:"startup_retries"`
	StartupRetryIntervalSeconds int64         `mapstructure:"startup_retry_interval_seconds"`
	StartupRetryInterval        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "vercel-render")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_url", "")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("port", 8000)
	v.SetDefault("frontend_port", 5173)
	v.SetDefault("cors_allowed_origins", []string{"*"})
	v.SetDefault("publishers_file", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/items.db")
	v.SetDefault("seed_data", true)
	v.SetDefault("startup_retries", 10)
	v.SetDefault("startup_retry_interval_seconds", 5)

	// The frontend build historically read VITE_API_URL; keep honoring it.
	if err := v.BindEnv("api_url", "API_URL", "VITE_API_URL"); err != nil {
		return nil, fmt.Errorf("bind api_url env: %w", err)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)

	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.FrontendPort <= 0 || cfg.FrontendPort > 65535 {
		return fmt.Errorf("invalid frontend_port %d", cfg.FrontendPort)
	}

	switch cfg.StorageType {
	case "bbolt":
		if strings.TrimSpace(cfg.BBoltPath) == "" {
			return fmt.Errorf("bbolt_path is required for bbolt storage")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported storage_type %q", cfg.StorageType)
	}

	if cfg.StartupRetries < 0 {
		return fmt.Errorf("invalid startup_retries (must not be negative)")
	}
	if cfg.StartupRetryIntervalSeconds <= 0 {
		return fmt.Errorf("invalid startup_retry_interval_seconds (must be positive seconds)")
	}
	cfg.StartupRetryInterval = time.Duration(cfg.StartupRetryIntervalSeconds) * time.Second

	cfg.CORSAllowedOrigins = splitOrigins(cfg.CORSAllowedOrigins)
	return nil
}

// splitOrigins flattens comma separated env values ("a,b") into a clean list.
func splitOrigins(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BackendAddr is the listen address of the items backend.
func (cfg *Config) BackendAddr() string {
	return fmt.Sprintf(":%d", cfg.Port)
}

// FrontendAddr is the listen address of the UI shell.
func (cfg *Config) FrontendAddr() string {
	return fmt.Sprintf(":%d", cfg.FrontendPort)
}
