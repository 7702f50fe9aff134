package config

import (
	"dating_scan_backend/internal/scoring"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AI        AIConfig        `mapstructure:"ai"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Retake    RetakeConfig    `mapstructure:"retake"`

	// runtime flags, set from the command line
	MigrateOnly bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests" validate:"gte=1"`
	WindowMinutes int `mapstructure:"window_minutes" validate:"gte=1"`
}

type AIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" validate:"required"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver" validate:"oneof=mysql sqlite"`
	Path      string `mapstructure:"path"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	DBName    string `mapstructure:"dbname"`
	Charset   string `mapstructure:"charset"`
	ParseTime bool   `mapstructure:"parsetime"`
	LogLevel  string `mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret" validate:"required"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type" validate:"oneof=local minio oss"`
	ArchiveResult bool   `mapstructure:"archive_results"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	ResultTTLMinutes int    `mapstructure:"result_ttl_minutes" validate:"gte=0"`
}

// ScoringConfig holds the engine thresholds. The Likert scale is fixed at 1-5.
type ScoringConfig struct {
	StraightLineThreshold float64 `mapstructure:"straight_line_threshold" validate:"gte=0"`
	MinSampleForVariance  int     `mapstructure:"min_sample_for_variance" validate:"gte=1"`
	RushedThresholdMs     float64 `mapstructure:"rushed_threshold_ms" validate:"gte=0"`
	TieEpsilon            float64 `mapstructure:"tie_epsilon" validate:"gte=0"`
	SecondaryBand         float64 `mapstructure:"secondary_band" validate:"gte=0,lte=100"`
	MaxSecondary          int     `mapstructure:"max_secondary" validate:"gte=0"`
	BlindspotMinGap       float64 `mapstructure:"blindspot_min_gap" validate:"gte=0,lte=100"`
	BlindspotTopN         int     `mapstructure:"blindspot_top_n" validate:"gte=1"`
}

func (s ScoringConfig) Engine() scoring.Config {
	return scoring.Config{
		StraightLineThreshold: s.StraightLineThreshold,
		MinSampleForVariance:  s.MinSampleForVariance,
		RushedThresholdMs:     s.RushedThresholdMs,
		TieEpsilon:            s.TieEpsilon,
		SecondaryBand:         s.SecondaryBand,
		MaxSecondary:          s.MaxSecondary,
		BlindspotMinGap:       s.BlindspotMinGap,
		BlindspotTopN:         s.BlindspotTopN,
	}
}

type RetakeConfig struct {
	CooldownDays         int `mapstructure:"cooldown_days" validate:"gte=0"`
	AbandonAfterHours    int `mapstructure:"abandon_after_hours" validate:"gte=1"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gte=1"`
}

func (r RetakeConfig) Cooldown() time.Duration {
	return time.Duration(r.CooldownDays) * 24 * time.Hour
}

func (r RetakeConfig) AbandonAfter() time.Duration {
	return time.Duration(r.AbandonAfterHours) * time.Hour
}

func (r RetakeConfig) SweepInterval() time.Duration {
	return time.Duration(r.SweepIntervalMinutes) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.path", "data/dating_scan.db")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("redis.result_ttl_minutes", 60)
	v.SetDefault("ai.timeout_seconds", 60)
	v.SetDefault("rate_limit.max_requests", 120)
	v.SetDefault("rate_limit.window_minutes", 1)

	d := scoring.DefaultConfig()
	v.SetDefault("scoring.straight_line_threshold", d.StraightLineThreshold)
	v.SetDefault("scoring.min_sample_for_variance", d.MinSampleForVariance)
	v.SetDefault("scoring.rushed_threshold_ms", d.RushedThresholdMs)
	v.SetDefault("scoring.tie_epsilon", d.TieEpsilon)
	v.SetDefault("scoring.secondary_band", d.SecondaryBand)
	v.SetDefault("scoring.max_secondary", d.MaxSecondary)
	v.SetDefault("scoring.blindspot_min_gap", d.BlindspotMinGap)
	v.SetDefault("scoring.blindspot_top_n", d.BlindspotTopN)

	v.SetDefault("retake.cooldown_days", 30)
	v.SetDefault("retake.abandon_after_hours", 72)
	v.SetDefault("retake.sweep_interval_minutes", 30)
}

func LoadConfig(path string) (*Config, error) {
	// .env is optional and only used in local development
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("DATING_SCAN")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// AI
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Storage / OSS
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

var validate = validator.New()

// Validate checks struct constraints plus the cross-field rules.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// release mode requires a real JWT secret
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		return errors.New("invalid config: database.path is required for the sqlite driver")
	}
	return nil
}
