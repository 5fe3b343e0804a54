package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	Storage  StorageConfig
	AWS      AWSConfig
	Bulk     BulkConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	BaseURL            string // public base URL used in invitation links and image URLs
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret               string
	SessionExpireHours   int
	InvitationExpireDays int
}

// EmailConfig holds SMTP / OAuth2 mail transport settings.
// When OAuth2ClientID is set the transport authenticates with XOAUTH2
// (Office 365 client credentials); otherwise plain SMTP auth over STARTTLS.
type EmailConfig struct {
	FromAddress         string
	FromName            string
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPass            string
	OAuth2ClientID      string
	OAuth2ClientSecret  string
	OAuth2TokenURL      string
	OAuth2Scope         string
	DefaultSubject      string // fallback subject for invitation emails
	ConfirmationSubject string // fallback subject for confirmation emails
}

// StorageConfig holds upload storage settings.
type StorageConfig struct {
	UploadDir string // local directory for uploads; used when S3 is not configured
}

// AWSConfig holds optional S3 settings for upload storage.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UploadsBucket   string
}

// BulkConfig bounds the invitation send fan-out.
type BulkConfig struct {
	SendConcurrency int
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "60"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "3000"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			BaseURL:            getEnv("BASE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "events"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:               getEnv("JWT_SECRET", "change-me-in-production"),
			SessionExpireHours:   getEnvInt("JWT_SESSION_EXPIRE_HOURS", 24),
			InvitationExpireDays: getEnvInt("JWT_INVITATION_EXPIRE_DAYS", 30),
		},
		Email: EmailConfig{
			FromAddress:         getEnv("EMAIL_USER", ""),
			FromName:            getEnv("EMAIL_FROM_NAME", "Events Team"),
			SMTPHost:            getEnv("EMAIL_HOST", ""),
			SMTPPort:            getEnvInt("EMAIL_PORT", 587),
			SMTPUser:            getEnv("EMAIL_USER", ""),
			SMTPPass:            getEnv("EMAIL_PASSWORD", ""),
			OAuth2ClientID:      getEnv("EMAIL_OAUTH_CLIENT_ID", ""),
			OAuth2ClientSecret:  getEnv("EMAIL_OAUTH_CLIENT_SECRET", ""),
			OAuth2TokenURL:      getEnv("EMAIL_OAUTH_TOKEN_URL", ""),
			OAuth2Scope:         getEnv("EMAIL_OAUTH_SCOPE", "https://outlook.office365.com/.default"),
			DefaultSubject:      getEnv("EMAIL_DEFAULT_SUBJECT", "You are invited"),
			ConfirmationSubject: getEnv("EMAIL_CONFIRMATION_SUBJECT", "Registration confirmed"),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			UploadsBucket:   getEnv("AWS_S3_UPLOADS_BUCKET", ""),
		},
		Bulk: BulkConfig{
			SendConcurrency: getEnvInt("BULK_SEND_CONCURRENCY", 8),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
