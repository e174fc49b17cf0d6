package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither an explicit path nor MIRU_CONFIG_PATH is set.
const DefaultPath = "configs/config.yaml"

// EnvPath selects the config file.
const EnvPath = "MIRU_CONFIG_PATH"

type Config struct {
	Server struct {
		Address        string   `yaml:"address"`
		RateLimitRPS   float64  `yaml:"rate_limit_rps"`
		RateLimitBurst int      `yaml:"rate_limit_burst"`
		CORSOrigins    []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup BackupConfig `yaml:"backup"`

	Client struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		RejectPolicy   string `yaml:"reject_policy"`
	} `yaml:"client"`

	Mirror struct {
		Backend string `yaml:"backend"` // file or redis
		Path    string `yaml:"path"`
		Key     string `yaml:"key"`
	} `yaml:"mirror"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Load reads the YAML config. A .env file in the working directory is loaded first
// so that ${VAR} placeholders can refer to it. A missing default file yields defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		path = DefaultPath
		explicit = false
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// built-in defaults only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/miru.db"
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:8080"
	}
	if c.Mirror.Backend == "" {
		c.Mirror.Backend = "file"
	}
	if c.Mirror.Path == "" {
		c.Mirror.Path = "data/miru_bookings.json"
	}
	if c.Mirror.Key == "" {
		c.Mirror.Key = "miru_bookings"
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// EnsureDataDir creates the directory of the database file.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(filepath.Dir(c.Database.Path), 0o755)
}

func (c *Config) ClientTimeout() time.Duration {
	if c.Client.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Client.TimeoutSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) RateLimit() (rate.Limit, int) {
	rps := c.Server.RateLimitRPS
	if rps <= 0 {
		rps = 20
	}
	burst := c.Server.RateLimitBurst
	if burst <= 0 {
		burst = int(rps * 2)
	}
	return rate.Limit(rps), burst
}

func (c *Config) CORSOrigins() []string {
	if len(c.Server.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return c.Server.CORSOrigins
}

func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level))
	if err != nil || c.Logging.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// UseRedisMirror reports whether the local mirror lives in Redis.
func (c *Config) UseRedisMirror() bool {
	return strings.EqualFold(c.Mirror.Backend, "redis")
}
