package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Site
	SiteURL    string
	BookingURL string

	// Referral program
	WorkbookPath       string
	ReferralCodePrefix string
	PayoutAmountCents  int64
	PayoutReminderCron string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string

	// Email
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string
	OperatorEmail  string

	// Admin auth
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Redis (optional, webhook event dedup)
	RedisURL string

	// CORS
	CORSAllowedOrigins []string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	siteURL := strings.TrimRight(getEnv("SITE_URL", "https://jlcstudio.art"), "/")

	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// Site
		SiteURL:    siteURL,
		BookingURL: getEnv("BOOKING_URL", siteURL+"/booking"),

		// Referral program
		WorkbookPath:       getEnv("REFERRAL_WORKBOOK_PATH", "./data/referrals.xlsx"),
		ReferralCodePrefix: getEnv("REFERRAL_CODE_PREFIX", "JLC"),
		PayoutAmountCents:  getEnvAsInt64("REFERRAL_PAYOUT_CENTS", 5000),
		PayoutReminderCron: getEnv("PAYOUT_REMINDER_CRON", "0 9 * * *"),

		// Stripe
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		// Email
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@jlcstudio.art"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "JLC Studio"),
		OperatorEmail:  getEnv("OPERATOR_EMAIL", "jlcstudiollc@gmail.com"),

		// Admin auth
		AdminUsername:     getEnv("ADMIN_USERNAME", "jlcstudio"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		// JWT
		JWTSecret:          getEnv("JWT_SECRET", "change-this-in-production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// CORS
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			siteURL,
			"https://www.jlcstudio.art",
		}),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", getEnv("API_ENVIRONMENT", "development")),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
