package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration. Components receive the
// slice they need explicitly; nothing reads viper after Load returns.
type Config struct {
	Port string     `mapstructure:"port"`
	DB   DBConfig   `mapstructure:"db"`
	Log  LogConfig  `mapstructure:"log"`
	Auth AuthConfig `mapstructure:"auth"`
	Demo DemoConfig `mapstructure:"demo"`
	WS   WSConfig   `mapstructure:"ws"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty: stdout only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// DemoConfig drives the synthetic roast used for walkthroughs.
type DemoConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Username string        `mapstructure:"username"`
	Tick     time.Duration `mapstructure:"tick"`
	// Speed is how many roast seconds pass per tick.
	Speed int `mapstructure:"speed"`
}

type WSConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

const envPrefix = "ROASTLOG"

var errNoSigningKey = errors.New("auth.signing_key must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "roastlog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	// keys without a real default still need registering so AutomaticEnv
	// reaches them when no config file declares them
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("demo.enabled", false)
	v.SetDefault("demo.username", "demo")
	v.SetDefault("demo.tick", time.Second)
	v.SetDefault("demo.speed", 10)
	v.SetDefault("ws.interval", time.Second)
}

// Load reads configs/config.yml (or the file at path), then ROASTLOG_* env
// overrides such as ROASTLOG_AUTH_SIGNING_KEY. A missing file is not an error.
// The result is validated for serving the API.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for offline commands that only need the
// database and logging settings.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errNoSigningKey
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Demo.Enabled && (c.Demo.Tick <= 0 || c.Demo.Speed <= 0) {
		return fmt.Errorf("demo.tick and demo.speed must be positive")
	}
	if c.WS.Interval <= 0 {
		c.WS.Interval = time.Second
	}
	return nil
}
