// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail providers understood by MailProvider.
const (
	MailProviderSES  = "ses"
	MailProviderSMTP = "smtp"
	MailProviderLog  = "log"
)

// Store backends understood by StoreBackend.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string
	S3Bucket  string

	// Storage
	StoreBackend string
	BuildersCSV  string
	DBMigrate    bool

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBMaxConns int

	// Redis builder cache
	RedisURL        string
	BuilderCacheTTL time.Duration

	// Mail
	MailProvider   string
	SESSenderEmail string
	SESConfigSet   string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFromEmail  string
	SMTPFromName   string

	// SMS
	SMSEnabled       bool
	SMSDefaultRegion string
	SMSSenderID      string

	// Notification queue
	NotifierWorkers   int
	NotifierRate      float64
	NotifierBurst     int
	NotifierQueueSize int

	// Matching and routing
	AppBaseURL       string
	TradeShowCatalog string
	ReRouteAfter     time.Duration

	// Application
	Port           string
	Stage          string
	LogLevel       string
	LambdaFunction string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion: getEnv("AWS_REGION", "eu-central-1"),
		S3Bucket:  getEnv("S3_BUCKET", "stand-lead-imports-dev"),

		// Storage
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
		BuildersCSV:  getEnv("BUILDERS_CSV", ""),
		DBMigrate:    getEnvBool("DB_MIGRATE", false),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBName:     getEnv("DB_NAME", "stand_leads"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 10),

		// Redis
		RedisURL:        getEnv("REDIS_URL", ""),
		BuilderCacheTTL: getEnvDuration("BUILDER_CACHE_TTL", 5*time.Minute),

		// Mail
		MailProvider:   strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderLog)),
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		SESConfigSet:   getEnv("SES_CONFIGURATION_SET", ""),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvInt("SMTP_PORT", 587),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:  getEnv("SMTP_FROM_EMAIL", ""),
		SMTPFromName:   getEnv("SMTP_FROM_NAME", "Stand Lead Engine"),

		// SMS
		SMSEnabled:       getEnvBool("SMS_ENABLED", false),
		SMSDefaultRegion: getEnv("SMS_DEFAULT_REGION", "DE"),
		SMSSenderID:      getEnv("SMS_SENDER_ID", "StandLeads"),

		// Notification queue
		NotifierWorkers:   getEnvInt("NOTIFIER_WORKERS", 4),
		NotifierRate:      getEnvFloat("NOTIFIER_RATE_PER_SECOND", 10),
		NotifierBurst:     getEnvInt("NOTIFIER_BURST", 5),
		NotifierQueueSize: getEnvInt("NOTIFIER_QUEUE_SIZE", 256),

		// Matching and routing
		AppBaseURL:       strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		TradeShowCatalog: getEnv("TRADE_SHOW_CATALOG", ""),
		ReRouteAfter:     getEnvDuration("REROUTE_AFTER", 48*time.Hour),

		// Application
		Port:     getEnv("PORT", "8080"),
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LambdaFunction: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// InLambda reports whether the process runs inside AWS Lambda.
func (c *Config) InLambda() bool {
	return c.LambdaFunction != ""
}

// DashboardURL is the builder dashboard linked from lead notifications.
func (c *Config) DashboardURL() string {
	return c.AppBaseURL + "/builder/dashboard"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("48h") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
