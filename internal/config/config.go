package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Database   DatabaseConfig   `mapstructure:"database"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Sweeper    SweeperConfig    `mapstructure:"sweeper"`
	Audit      AuditConfig      `mapstructure:"audit"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type GeminiConfig struct {
	// APIKey is environment-only; it never lives in the config file.
	APIKey string `mapstructure:"-"`
	Model  string `mapstructure:"model"`
}

type UploadConfig struct {
	StagingDir   string `mapstructure:"staging_dir"`
	MaxSizeBytes int64  `mapstructure:"max_size_bytes"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
}

type SweeperConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// envOverrides are values that only ever come from the environment.
type envOverrides struct {
	Port         int    `envconfig:"PORT"`
	Env          string `envconfig:"APP_ENV"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// The file is optional; defaults plus env cover a bare deployment.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if env.Port != 0 {
		config.Server.Port = env.Port
	}
	if env.Env != "" {
		config.Server.Env = env.Env
	}
	if env.GeminiModel != "" {
		config.Gemini.Model = env.GeminiModel
	}
	if env.DatabaseURL != "" {
		config.Database.DSN = env.DatabaseURL
	}
	config.Gemini.APIKey = env.GeminiAPIKey

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("gemini.model", "gemini-2.5-pro")
	viper.SetDefault("upload.staging_dir", "uploads/prescriptions")
	viper.SetDefault("upload.max_size_bytes", 10<<20)
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.rps", 10)
	viper.SetDefault("rate_limit.burst", 20)
	viper.SetDefault("security.allowed_origins", []string{"*"})
	viper.SetDefault("monitoring.prometheus_enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
	viper.SetDefault("sweeper.interval", "10m")
	viper.SetDefault("sweeper.max_age", "1h")
	viper.SetDefault("audit.retention_days", 30)
	viper.SetDefault("audit.cleanup_interval", "24h")
}

// IsProduction reports whether diagnostic detail should be withheld from
// error responses.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
