package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Echo store backends
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Spreadsheet endpoint
	SheetsScriptURL string
	SheetsTimeout   time.Duration
	SheetLeads      string
	SheetFollowUps  string
	SheetEnquiries  string
	SheetLogin      string

	// Echo store
	EchoStoreBackend string
	RedisURL         string
	SeedDemoData     bool

	// JWT & Security
	JWTSecret          string
	JWTExpirationHours int
	UserEmailDomain    string

	// CORS
	CORSAllowedOrigins []string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int
	LoginRateLimitPerMinute    int

	// Logging
	LogLevel string

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Forms
	PhoneDefaultRegion string
	Timezone           string

	// Exports
	ExportLocalPath    string
	ExportS3Bucket     string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string

	// Notifications
	SlackWebhookURL string
	SendGridAPIKey  string
	EmailFrom       string
	EmailFromName   string
	TeamEmail       string

	// Background refresh schedule; "off" disables it
	RefreshCron string
}

// Load reads .env when present, then the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️  Failed to read .env: %v", err)
	}

	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// Sheets
		SheetsScriptURL: getEnv("SHEETS_SCRIPT_URL", ""),
		SheetsTimeout:   getEnvAsDuration("SHEETS_TIMEOUT", 15*time.Second),
		SheetLeads:      getEnv("SHEET_LEADS", "FMS"),
		SheetFollowUps:  getEnv("SHEET_FOLLOWUPS", "Flw-Up"),
		SheetEnquiries:  getEnv("SHEET_ENQUIRIES", "Enquiery"),
		SheetLogin:      getEnv("SHEET_LOGIN", "Login"),

		// Echo store
		EchoStoreBackend: strings.ToLower(getEnv("ECHO_STORE_BACKEND", StoreRedis)),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		SeedDemoData:     getEnvAsBool("SEED_DEMO_DATA", false),

		// JWT
		JWTSecret:          getEnv("JWT_SECRET", "change-this-in-production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		UserEmailDomain:    getEnv("USER_EMAIL_DOMAIN", "leadtoorder.com"),

		// CORS
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		LoginRateLimitPerMinute:    getEnvAsInt("LOGIN_RATE_LIMIT_PER_MINUTE", 5),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),

		// Forms
		PhoneDefaultRegion: getEnv("PHONE_DEFAULT_REGION", "IN"),
		Timezone:           getEnv("TZ_NAME", "Asia/Kolkata"),

		// Exports
		ExportLocalPath:    getEnv("EXPORT_LOCAL_PATH", "./data/exports"),
		ExportS3Bucket:     getEnv("EXPORT_S3_BUCKET", ""),
		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT_URL", ""),

		// Notifications
		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:       getEnv("EMAIL_FROM", "noreply@leadtoorder.com"),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "Lead to Order"),
		TeamEmail:       getEnv("TEAM_EMAIL", ""),

		RefreshCron: getEnv("REFRESH_CRON", "@every 5m"),
	}
}

// Location returns the configured timezone, falling back to local time
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("⚠️  Unknown timezone %q, using local time", c.Timezone)
		return time.Local
	}
	return loc
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration accepts Go durations ("20s") or plain seconds ("20")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
