package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the driver with Driver (mysql, postgres or sqlite).
// For sqlite, Database is the file path (or ":memory:").
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	SlowThreshold   int    `mapstructure:"slow_threshold_ms"`
}

func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig guards the customer request API. An empty token rejects every call.
type AuthConfig struct {
	APIBearerToken string `mapstructure:"api_bearer_token"`
}

type WebhookConfig struct {
	BearerToken       string        `mapstructure:"bearer_token"`
	SigningSecret     string        `mapstructure:"signing_secret"`
	OptimisticLocking bool          `mapstructure:"optimistic_locking"`
	MaxConflictRetry  int           `mapstructure:"max_conflict_retries"`
	DedupeTTL         time.Duration `mapstructure:"dedupe_ttl"`
}

// Unauthenticated reports whether neither webhook credential is configured.
func (w *WebhookConfig) Unauthenticated() bool {
	return w.BearerToken == "" && w.SigningSecret == ""
}

// LinearScope maps a caller-facing scope id to the Linear team (and optional project)
// that receives the ticket.
type LinearScope struct {
	TeamID    string `mapstructure:"team_id"`
	ProjectID string `mapstructure:"project_id"`
}

type LinearOAuthConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

func (o *LinearOAuthConfig) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

type LinearConfig struct {
	APIKey       string                 `mapstructure:"api_key"`
	Endpoint     string                 `mapstructure:"endpoint"`
	Timeout      time.Duration          `mapstructure:"timeout"`
	DefaultLabel string                 `mapstructure:"default_label"`
	TypeLabels   map[string]string      `mapstructure:"type_labels"`
	Scopes       map[string]LinearScope `mapstructure:"scopes"`
	OAuth        LinearOAuthConfig      `mapstructure:"oauth"`
}

type AIConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int64         `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Language  string        `mapstructure:"language"`
}

// Active reports whether text generation can actually be used.
func (a *AIConfig) Active() bool {
	return a.Enabled && a.APIKey != ""
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type SweeperConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Interval    time.Duration `mapstructure:"interval"`
	GracePeriod time.Duration `mapstructure:"grace_period"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Stdout       bool   `mapstructure:"stdout"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}
