package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Resolver ResolverConfig `yaml:"resolver" mapstructure:"resolver"`
	Publish  PublishConfig  `yaml:"publish" mapstructure:"publish"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres database.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SourceConfig configures the remote statistics service.
type SourceConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Token       string  `yaml:"token" mapstructure:"token"`
	ReportPath  string  `yaml:"report_path" mapstructure:"report_path"`
	RankingPath string  `yaml:"ranking_path" mapstructure:"ranking_path"`
	SignalPath  string  `yaml:"signal_path" mapstructure:"signal_path"`
	NetworkPath string  `yaml:"network_path" mapstructure:"network_path"`
	AntennaPath string  `yaml:"antenna_path" mapstructure:"antenna_path"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Timeout returns the per-request timeout.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// Validate rejects a source without a base URL or token.
func (s SourceConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(s.BaseURL) == "" {
		missing = append(missing, "source.base_url")
	}
	if strings.TrimSpace(s.Token) == "" {
		missing = append(missing, "source.token")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ResolverConfig configures antenna resolution.
type ResolverConfig struct {
	CacheTTLMins int `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// CacheTTL returns how long a known antenna is remembered.
func (r ResolverConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLMins) * time.Minute
}

// PublishConfig configures view refresh and snapshot sinks. Snapshots go to
// Dir when set and to S3Bucket when set.
type PublishConfig struct {
	Views       []string `yaml:"views" mapstructure:"views"`
	Dir         string   `yaml:"dir" mapstructure:"dir"`
	S3Bucket    string   `yaml:"s3_bucket" mapstructure:"s3_bucket"`
	S3Prefix    string   `yaml:"s3_prefix" mapstructure:"s3_prefix"`
	S3Region    string   `yaml:"s3_region" mapstructure:"s3_region"`
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"`
}

// ScheduleConfig configures the recurring monthly import.
type ScheduleConfig struct {
	Cron      string `yaml:"cron" mapstructure:"cron"`
	LagMonths int    `yaml:"lag_months" mapstructure:"lag_months"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Validate checks the port range.
func (s ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return eris.Errorf("config: invalid server.port %d", s.Port)
	}
	return nil
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NETUSAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.token", "")
	v.SetDefault("source.report_path", "report")
	v.SetDefault("source.ranking_path", "ranking")
	v.SetDefault("source.signal_path", "signal")
	v.SetDefault("source.network_path", "network")
	v.SetDefault("source.antenna_path", "antenna")
	v.SetDefault("source.timeout_secs", 60)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.rate_limit", 5.0)
	v.SetDefault("resolver.cache_ttl_mins", 60)
	v.SetDefault("publish.views", []string{"gsm_count_by_carrier", "gsm_signal_statistic_by_carrier"})
	v.SetDefault("publish.dir", "snapshots")
	v.SetDefault("publish.s3_bucket", "")
	v.SetDefault("publish.s3_prefix", "snapshots")
	v.SetDefault("publish.s3_region", "")
	v.SetDefault("publish.concurrency", 4)
	v.SetDefault("schedule.cron", "0 6 5 * *")
	v.SetDefault("schedule.lag_months", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
