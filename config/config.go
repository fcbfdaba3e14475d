package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DBDriver          string
	DBURL             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret        string
	JWTExpiry        time.Duration
	GuestTokenExpiry time.Duration

	CORSOrigins         []string
	BookingNumberPrefix string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string
	SendGridAPIKey       string
	SendGridFromEmail    string
	ReminderCron         string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBURL:                os.Getenv("DB_URL"),
		DBMaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime:    time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTExpiry:            time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		GuestTokenExpiry:     time.Duration(getEnvInt("GUEST_TOKEN_EXPIRY_HOURS", 720)) * time.Hour,
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		BookingNumberPrefix:  getEnv("BOOKING_NUMBER_PREFIX", "IC"),
		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:    os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioWhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail:    getEnv("SENDGRID_FROM_EMAIL", "bookings@instaclean.example"),
		ReminderCron:         getEnv("REMINDER_CRON", "0 9 * * *"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is required")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q, expected postgres or sqlite", cfg.DBDriver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
