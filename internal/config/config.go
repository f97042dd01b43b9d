package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/lkendi/Task-Management-System/internal/logging"
)

type Config struct {
	Port                string
	DatabaseURL         string
	RedisURL            string   // Notification queue; empty falls back to an in-process queue
	JWTSecret           string   // Secret key for session token signing
	JWTTTL              int      // Session lifetime in hours
	AppURL              string   // Public base URL used in notification links and QR codes
	LoginPath           string   // Where unauthenticated requests are redirected
	CookieSecure        bool     // Secure attribute of the session cookie
	CORSAllowedOrigins  []string // Origins accepted by the CORS middleware
	RateLimitRPS        float64  // Rate limit for general endpoints (requests per second)
	RateLimitBurst      int      // Burst size for general endpoints
	RateLimitLoginRPS   float64  // Rate limit for the login endpoint (stricter)
	RateLimitLoginBurst int      // Burst size for the login endpoint
	SMTPHost            string   // Empty host switches to the log-only mailer
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	MailFrom            string
	NotifyMaxRetries    int    // Delivery retries per notification
	RequeueSchedule     string // Cron spec for requeueing dead-lettered notifications
	LogLevel            string
	LogFile             string // When set, logs rotate through lumberjack
}

func Load() *Config {
	// .env is optional; real deployments pass the environment directly
	if err := godotenv.Load(); err != nil {
		logging.Logger.WithError(err).Info("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTTTL:              getEnvInt("JWT_TTL_HOURS", 24),
		AppURL:              strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		LoginPath:           getEnv("LOGIN_PATH", "/login"),
		CookieSecure:        getEnvBool("COOKIE_SECURE", false),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitRPS:        getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:      getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitLoginRPS:   getEnvFloat("RATE_LIMIT_LOGIN_RPS", 1),
		RateLimitLoginBurst: getEnvInt("RATE_LIMIT_LOGIN_BURST", 5),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		MailFrom:            getEnv("MAIL_FROM", "no-reply@localhost"),
		NotifyMaxRetries:    getEnvInt("NOTIFY_MAX_RETRIES", 3),
		RequeueSchedule:     getEnv("REQUEUE_SCHEDULE", "@every 1h"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFile:             getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
