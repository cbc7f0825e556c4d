package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	redisdb "github.com/freitasmatheusrn/fleamarket-inventory/internal/database/redis"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/storage"
	"github.com/spf13/viper"
)

type Configs struct {
	DBDriver        string   `mapstructure:"DB_DRIVER"`
	DBHost          string   `mapstructure:"DB_HOST"`
	DBName          string   `mapstructure:"DB_NAME"`
	DBPort          string   `mapstructure:"DB_PORT"`
	DBUser          string   `mapstructure:"DB_USER"`
	DBPassword      string   `mapstructure:"DB_PASSWORD"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	WebServerPort   string   `mapstructure:"WEB_SERVER_PORT"`
	TLSCertFile     string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile      string   `mapstructure:"TLS_KEY_FILE"`
	AllowOrigins    []string `mapstructure:"ALLOW_ORIGINS"`
	JWTSecret       string   `mapstructure:"JWT_SECRET"`
	RedisHost       string   `mapstructure:"REDIS_HOST"`
	RedisPort       string   `mapstructure:"REDIS_PORT"`
	RedisPassword   string   `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int      `mapstructure:"REDIS_DB"`
	RedisURL        string   `mapstructure:"REDIS_URL"`
	S3Bucket        string   `mapstructure:"S3_BUCKET"`
	S3Endpoint      string   `mapstructure:"S3_ENDPOINT"`
	S3PublicBaseURL string   `mapstructure:"S3_PUBLIC_BASE_URL"`
	AWSRegion       string   `mapstructure:"AWS_REGION"`
	SMTP_HOST       string   `mapstructure:"SMTP_HOST"`
	SMTP_PORT       int      `mapstructure:"SMTP_PORT"`
	SMTP_USER       string   `mapstructure:"SMTP_USER"`
	SMTP_PASS       string   `mapstructure:"SMTP_PASS"`
	SMTP_FROM       string   `mapstructure:"SMTP_FROM"`

	ImportUploadConcurrency int `mapstructure:"IMPORT_UPLOAD_CONCURRENCY"`
	ImportDBBatchSize       int `mapstructure:"IMPORT_DB_BATCH_SIZE"`
	ImportMaxErrors         int `mapstructure:"IMPORT_MAX_ERRORS"`
	ImportTimeoutSeconds    int `mapstructure:"IMPORT_TIMEOUT_SECONDS"` // outer ceiling for one import request
	ImportResultTTL         int `mapstructure:"IMPORT_RESULT_TTL"`      // seconds the latest result is kept

	StagingCleanupCron string   `mapstructure:"STAGING_CLEANUP_CRON"` // 6 fields with seconds
	StagingMaxAgeHours int      `mapstructure:"STAGING_MAX_AGE_HOURS"`
	LogPath            string   `mapstructure:"LOG_PATH"`         // Path to log file (e.g., "/var/log/fleamarket.log")
	AlertRecipients    []string `mapstructure:"ALERT_RECIPIENTS"` // Email recipients for error alerts
}

func LoadConfig(path string) (*Configs, error) {
	var cfg *Configs
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigFile(filepath.Join(path, ".env"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can fill it on Unmarshal.
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_NAME", "fleamarket")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("WEB_SERVER_PORT", ":8080")
	v.SetDefault("TLS_CERT_FILE", "")
	v.SetDefault("TLS_KEY_FILE", "")
	v.SetDefault("ALLOW_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("S3_BUCKET", "product-images")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
	v.SetDefault("AWS_REGION", "ap-northeast-1")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("SMTP_FROM", "")

	v.SetDefault("IMPORT_UPLOAD_CONCURRENCY", 8)
	v.SetDefault("IMPORT_DB_BATCH_SIZE", 20)
	v.SetDefault("IMPORT_MAX_ERRORS", 100)
	v.SetDefault("IMPORT_TIMEOUT_SECONDS", 60)
	v.SetDefault("IMPORT_RESULT_TTL", 86400)

	// Sweep staged uploads at the top of every hour
	v.SetDefault("STAGING_CLEANUP_CRON", "0 0 * * * *")
	v.SetDefault("STAGING_MAX_AGE_HOURS", 24)

	// Set default for log path (empty means stdout only)
	v.SetDefault("LOG_PATH", "")

	// Set default for alert recipients (empty means no alerts)
	v.SetDefault("ALERT_RECIPIENTS", []string{})

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN prefers DATABASE_URL (Dokku), otherwise builds from individual params.
func (c *Configs) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s", c.DBDriver, c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Redis connects using REDIS_URL if available, otherwise the individual params.
func (c *Configs) Redis() (*redisdb.Client, error) {
	if c.RedisURL != "" {
		return redisdb.NewClientFromURL(c.RedisURL)
	}
	return redisdb.NewClient(redisdb.Config{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
}

func (c *Configs) Storage() storage.Config {
	return storage.Config{
		Bucket:        c.S3Bucket,
		Region:        c.AWSRegion,
		Endpoint:      c.S3Endpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	}
}
