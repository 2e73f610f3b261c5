package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers supported by the storage package.
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
	StorageS3    = "s3"
)

// Database drivers supported by the repository package.
const (
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Driver             string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// ConnectMaxRetries bounds the connection manager; 0 retries forever.
	ConnectMaxRetries  int
	MonitorIntervalSec int
}

// MongoConfig holds MongoDB settings used when Database.Driver is "mongo".
type MongoConfig struct {
	URI      string
	Database string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3Config holds settings for the AWS S3 storage driver.
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// LocalStorageConfig holds settings for the filesystem storage driver.
type LocalStorageConfig struct {
	Root          string
	PublicBaseURL string
}

// StorageConfig selects and configures the active storage adapter.
type StorageConfig struct {
	Driver       string
	SignedURLTTL time.Duration
	Local        LocalStorageConfig
	MinIO        MinIOConfig
	S3           S3Config
}

// UploadConfig bounds incoming uploads.
type UploadConfig struct {
	MaxBytes      int64
	RatePerMinute int
	Burst         int
}

// AuthConfig holds the shared secret used to verify admin tokens.
type AuthConfig struct {
	JWTSecret string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables (and optionally a YAML file named by CONFIG_FILE).
// Sensitive values are not hardcoded.
type AppConfig struct {
	Env      string
	AppHost  string
	Port     string
	LogLevel string
	Timezone string
	Database DatabaseConfig
	Mongo    MongoConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Auth     AuthConfig
}

// Location returns the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// IsDevelopment reports whether the app runs in development mode.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_HOST", "localhost:8080")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TZ", "UTC")

	v.SetDefault("DB_DRIVER", DatabasePostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SEC", 300)
	v.SetDefault("DB_CONNECT_MAX_RETRIES", 0)
	v.SetDefault("DB_MONITOR_INTERVAL_SEC", 30)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "portal")

	v.SetDefault("STORAGE_DRIVER", StorageLocal)
	v.SetDefault("SIGNED_URL_TTL_SEC", 300)
	v.SetDefault("LOCAL_STORAGE_ROOT", "uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_REGION", "us-east-1")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PATH_STYLE", false)

	v.SetDefault("UPLOAD_MAX_BYTES", 50<<20)
	v.SetDefault("UPLOAD_RATE_PER_MIN", 30)
	v.SetDefault("UPLOAD_RATE_BURST", 5)
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// When CONFIG_FILE points at a YAML file its keys (same names as the env vars) are read first;
// real environment variables take precedence.
func Load() (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &AppConfig{
		Env:      v.GetString("APP_ENV"),
		AppHost:  v.GetString("APP_HOST"),
		Port:     v.GetString("PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Timezone: v.GetString("TZ"),
		Database: DatabaseConfig{
			Driver:             strings.ToLower(v.GetString("DB_DRIVER")),
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: v.GetInt("DB_CONN_MAX_LIFETIME_SEC"),
			ConnectMaxRetries:  v.GetInt("DB_CONNECT_MAX_RETRIES"),
			MonitorIntervalSec: v.GetInt("DB_MONITOR_INTERVAL_SEC"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
			SignedURLTTL: time.Duration(v.GetInt("SIGNED_URL_TTL_SEC")) * time.Second,
			Local: LocalStorageConfig{
				Root:          v.GetString("LOCAL_STORAGE_ROOT"),
				PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			},
			MinIO: MinIOConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				Bucket:    v.GetString("MINIO_BUCKET"),
				Region:    v.GetString("MINIO_REGION"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
			},
			S3: S3Config{
				Region:    v.GetString("S3_REGION"),
				Bucket:    v.GetString("S3_BUCKET"),
				Endpoint:  v.GetString("S3_ENDPOINT"),
				AccessKey: v.GetString("S3_ACCESS_KEY"),
				SecretKey: v.GetString("S3_SECRET_KEY"),
				PathStyle: v.GetBool("S3_PATH_STYLE"),
			},
		},
		Upload: UploadConfig{
			MaxBytes:      v.GetInt64("UPLOAD_MAX_BYTES"),
			RatePerMinute: v.GetInt("UPLOAD_RATE_PER_MIN"),
			Burst:         v.GetInt("UPLOAD_RATE_BURST"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver selections and required secrets.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case DatabasePostgres, DatabaseMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case StorageLocal, StorageMinIO, StorageS3:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.SignedURLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL_SEC must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}
