package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"contact-agenda/internal/infrastructure/database"
)

const defaultSessionSecret = "change-me-session-secret"

// Config is the whole application configuration, read from the environment.
type Config struct {
	App      AppConfig
	Database *database.DBConfig
	Redis    RedisConfig
	Session  SessionConfig
	MinIO    MinIOConfig
	Upload   UploadConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	BaseURL     string
	LogLevel    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret      string
	CookieName  string
	FlashCookie string
	TTL         time.Duration
	FlashTTL    time.Duration
	Secure      bool
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // base URL pictures are served from
}

type UploadConfig struct {
	MaxPictureBytes     int64
	MaxPictureDimension int
	MaxPicturePixels    int64 // decoded width * height
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	dbCfg, err := LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Contact Agenda"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: dbCfg,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Secret:      getEnv("SESSION_SECRET", defaultSessionSecret),
			CookieName:  getEnv("SESSION_COOKIE", "sessionid"),
			FlashCookie: getEnv("FLASH_COOKIE", "flashid"),
			TTL:         getEnvDuration("SESSION_TTL", 14*24*time.Hour),
			FlashTTL:    getEnvDuration("FLASH_TTL", 5*time.Minute),
			Secure:      getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "contact-agenda"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MEDIA_URL", ""),
		},
		Upload: UploadConfig{
			MaxPictureBytes:     int64(getEnvInt("UPLOAD_MAX_PICTURE_BYTES", 5*1024*1024)),
			MaxPictureDimension: getEnvInt("UPLOAD_MAX_PICTURE_DIMENSION", 1600),
			MaxPicturePixels:    int64(getEnvInt("UPLOAD_MAX_PICTURE_PIXELS", 24_000_000)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the application cannot run with.
func (c *Config) Validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Upload.MaxPictureBytes <= 0 {
		return errors.New("UPLOAD_MAX_PICTURE_BYTES must be positive")
	}
	if c.Upload.MaxPictureDimension <= 0 {
		return errors.New("UPLOAD_MAX_PICTURE_DIMENSION must be positive")
	}
	if c.Upload.MaxPicturePixels <= 0 {
		return errors.New("UPLOAD_MAX_PICTURE_PIXELS must be positive")
	}

	if c.IsProduction() {
		if c.Session.Secret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be set in production")
		}
		if c.Database != nil && c.Database.Password == "" {
			return errors.New("DB_PASSWORD must be set in production")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
