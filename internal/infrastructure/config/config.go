package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/tracksync/internal/shared/config"
)

// Config is read once at startup and handed to components; nothing reads it globally.
type Config struct {
	Server     sharedConfig.ServerConfig     `mapstructure:"server"`
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	Auth       sharedConfig.AuthConfig       `mapstructure:"auth"`
	Webhook    sharedConfig.WebhookConfig    `mapstructure:"webhook"`
	Linear     sharedConfig.LinearConfig     `mapstructure:"linear"`
	AI         sharedConfig.AIConfig         `mapstructure:"ai"`
	Pagination sharedConfig.PaginationConfig `mapstructure:"pagination"`
	Sweeper    sharedConfig.SweeperConfig    `mapstructure:"sweeper"`
	RateLimit  sharedConfig.RateLimitConfig  `mapstructure:"ratelimit"`
	Telemetry  sharedConfig.TelemetryConfig  `mapstructure:"telemetry"`
}

// Options tweak where Load looks for the config file.
type Options struct {
	// ConfigFile, when set, is used instead of searching the default paths.
	ConfigFile string
	// Optional tolerates a missing config file; defaults and env vars still apply.
	Optional bool
}

// Load loads configuration from file and environment variables
func Load(env string, opts ...Options) (*Config, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	v := viper.New()
	if opt.ConfigFile != "" {
		v.SetConfigFile(opt.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("TRACKSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !opt.Optional || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Pagination.DefaultLimit < 1 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return fmt.Errorf("invalid pagination limits: default=%d max=%d",
			c.Pagination.DefaultLimit, c.Pagination.MaxLimit)
	}
	if c.Webhook.MaxConflictRetry < 0 {
		return fmt.Errorf("webhook.max_conflict_retries must not be negative")
	}
	if c.Sweeper.Enabled {
		if c.Sweeper.Interval <= 0 {
			return fmt.Errorf("sweeper.interval must be positive")
		}
		// A create still waiting on the tracker must never look orphaned.
		if floor := 2 * c.Linear.Timeout; c.Sweeper.GracePeriod < floor || c.Sweeper.GracePeriod <= 0 {
			return fmt.Errorf("sweeper.grace_period %s must be at least %s (twice linear.timeout)",
				c.Sweeper.GracePeriod, floor)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "tracksync_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.slow_threshold_ms", 200)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.api_bearer_token", "")

	// Webhook defaults
	v.SetDefault("webhook.bearer_token", "")
	v.SetDefault("webhook.signing_secret", "")
	v.SetDefault("webhook.optimistic_locking", true)
	v.SetDefault("webhook.max_conflict_retries", 3)
	v.SetDefault("webhook.dedupe_ttl", 24*time.Hour)

	// Linear defaults
	v.SetDefault("linear.endpoint", "https://api.linear.app/graphql")
	v.SetDefault("linear.timeout", 15*time.Second)
	v.SetDefault("linear.default_label", "customer-request")
	v.SetDefault("linear.type_labels", map[string]string{
		"bug":     "Bug",
		"feature": "Feature",
	})
	v.SetDefault("linear.oauth.token_url", "https://api.linear.app/oauth/token")

	// AI defaults
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "claude-3-5-haiku-latest")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.timeout", 20*time.Second)
	v.SetDefault("ai.language", "Spanish")

	v.SetDefault("pagination.default_limit", 20)
	v.SetDefault("pagination.max_limit", 100)

	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.interval", 5*time.Minute)
	v.SetDefault("sweeper.grace_period", 10*time.Minute)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests", 120)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.stdout", false)
	v.SetDefault("telemetry.service_name", "tracksync")
}
