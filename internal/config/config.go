package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Config struct {
	Env            string         `mapstructure:"env"`
	Addr           string         `mapstructure:"addr"`
	LogLevel       string         `mapstructure:"log_level"`
	LogFile        string         `mapstructure:"log_file"`
	StorageBackend string         `mapstructure:"storage_backend"` // sqlite or postgres
	SQLitePath     string         `mapstructure:"sqlite_path"`
	PostgresDSN    string         `mapstructure:"postgres_dsn"`
	SubjectID      string         `mapstructure:"subject_id"`
	Provider       ProviderConfig `mapstructure:"provider"`
}

// Load reads configuration from an optional yaml file plus HEALTHSYNC_*
// environment variables, environment taking precedence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("HEALTHSYNC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("env", "development")
	v.SetDefault("addr", ":8088")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("storage_backend", "sqlite")
	v.SetDefault("sqlite_path", "data/healthsync.db")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("subject_id", "user_123")
	v.SetDefault("provider.base_url", "http://localhost:11434")
	v.SetDefault("provider.model", "meditron")
	v.SetDefault("provider.timeout", "60s")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required when storage_backend=sqlite")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("postgres_dsn is required when storage_backend=postgres")
		}
	default:
		return fmt.Errorf("storage_backend must be sqlite or postgres, got %q", c.StorageBackend)
	}
	if c.SubjectID == "" {
		return errors.New("subject_id must not be empty")
	}
	if c.Provider.BaseURL == "" {
		return errors.New("provider.base_url must not be empty")
	}
	return nil
}
