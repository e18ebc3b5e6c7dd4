// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Shopify     ShopifyConfig
	Database    DatabaseConfig
	AWS         AWSConfig
	Sync        SyncConfig
	Upload      UploadConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
}

// ShopifyConfig carries the Admin API credentials for the shop this
// instance serves. Session tokens from the embedded admin UI are
// verified against APISecret.
type ShopifyConfig struct {
	ShopDomain string
	AdminToken string
	APIKey     string
	APISecret  string
	APIVersion string
	MaxRetries int
	RetryDelay int // milliseconds, base delay for throttled retries
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

// SyncConfig names the metafield the checkout-time cart transform
// function reads. The namespace/key pair is fixed per deployment.
type SyncConfig struct {
	MetafieldNamespace string
	MetafieldKey       string
}

type UploadConfig struct {
	PollIntervalMs int
	MaxPolls       int
	MaxImageBytes  int64
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
		},
		Shopify: ShopifyConfig{
			ShopDomain: getEnv("SHOPIFY_SHOP_DOMAIN", ""),
			AdminToken: getEnv("SHOPIFY_ADMIN_TOKEN", ""),
			APIKey:     getEnv("SHOPIFY_API_KEY", ""),
			APISecret:  getEnv("SHOPIFY_API_SECRET", ""),
			APIVersion: getEnv("SHOPIFY_API_VERSION", "2024-07"),
			MaxRetries: getEnvAsInt("SHOPIFY_MAX_RETRIES", 3),
			RetryDelay: getEnvAsInt("SHOPIFY_RETRY_DELAY_MS", 500),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "bundle_engine"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "bundle-engine-assets"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Sync: SyncConfig{
			MetafieldNamespace: getEnv("SYNC_METAFIELD_NAMESPACE", "bundle_engine"),
			MetafieldKey:       getEnv("SYNC_METAFIELD_KEY", "active_bundles"),
		},
		Upload: UploadConfig{
			PollIntervalMs: getEnvAsInt("UPLOAD_POLL_INTERVAL_MS", 1000),
			MaxPolls:       getEnvAsInt("UPLOAD_MAX_POLLS", 10),
			MaxImageBytes:  int64(getEnvAsInt("UPLOAD_MAX_IMAGE_MB", 10)) * 1024 * 1024,
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Shopify.ShopDomain == "" {
		return fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}

	if c.Shopify.AdminToken == "" {
		return fmt.Errorf("SHOPIFY_ADMIN_TOKEN is required")
	}

	if c.Shopify.APISecret == "" && c.Environment == "production" {
		return fmt.Errorf("SHOPIFY_API_SECRET is required in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
