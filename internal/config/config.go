package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	SMTP      SMTPConfig
	Telegram  TelegramConfig
	Scheduler SchedulerConfig
	Roster    RosterConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Env      string
	LogLevel string
	Timezone string
}

// SMTPConfig holds outbound email configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// TelegramConfig holds Telegram Bot API configuration
type TelegramConfig struct {
	BotToken   string
	APIBaseURL string
}

// SchedulerConfig holds background job cadence
type SchedulerConfig struct {
	ReconcileEnabled       bool
	ReconcileInterval      time.Duration
	AttendanceEnabled      bool
	AttendancePollInterval time.Duration
	RetentionEnabled       bool
	RetentionCheckInterval time.Duration
	RetentionRunHour       int
}

// RosterConfig points to the simulated attendance roster
type RosterConfig struct {
	Path string
	Seed int64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate: autoMigrate,
	}

	// Application configuration
	config.App = AppConfig{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "Asia/Jakarta"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
		FromName: getEnv("SMTP_FROM_NAME", "HRIS Attendance"),
	}

	// Telegram configuration
	config.Telegram = TelegramConfig{
		BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		APIBaseURL: getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
	}

	// Scheduler configuration
	config.Scheduler = SchedulerConfig{}
	if config.Scheduler.ReconcileEnabled, err = strconv.ParseBool(getEnv("RECONCILE_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_ENABLED: %w", err)
	}
	if config.Scheduler.ReconcileInterval, err = time.ParseDuration(getEnv("RECONCILE_INTERVAL", "6h")); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}
	if config.Scheduler.AttendanceEnabled, err = strconv.ParseBool(getEnv("AUTO_ATTENDANCE_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("invalid AUTO_ATTENDANCE_ENABLED: %w", err)
	}
	if config.Scheduler.AttendancePollInterval, err = time.ParseDuration(getEnv("AUTO_ATTENDANCE_POLL_INTERVAL", "30s")); err != nil {
		return nil, fmt.Errorf("invalid AUTO_ATTENDANCE_POLL_INTERVAL: %w", err)
	}
	if config.Scheduler.RetentionEnabled, err = strconv.ParseBool(getEnv("AUDIT_RETENTION_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_RETENTION_ENABLED: %w", err)
	}
	if config.Scheduler.RetentionCheckInterval, err = time.ParseDuration(getEnv("AUDIT_RETENTION_CHECK_INTERVAL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_RETENTION_CHECK_INTERVAL: %w", err)
	}
	if config.Scheduler.RetentionRunHour, err = strconv.Atoi(getEnv("AUDIT_RETENTION_RUN_HOUR", "2")); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_RETENTION_RUN_HOUR: %w", err)
	}

	// Roster configuration
	seed, err := strconv.ParseInt(getEnv("ROSTER_RANDOM_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ROSTER_RANDOM_SEED: %w", err)
	}
	config.Roster = RosterConfig{
		Path: getEnv("ROSTER_FILE", "roster.yaml"),
		Seed: seed,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Scheduler.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	if c.Scheduler.AttendancePollInterval <= 0 {
		return fmt.Errorf("AUTO_ATTENDANCE_POLL_INTERVAL must be positive")
	}
	if c.Scheduler.RetentionCheckInterval <= 0 {
		return fmt.Errorf("AUDIT_RETENTION_CHECK_INTERVAL must be positive")
	}
	if c.Scheduler.RetentionRunHour < 0 || c.Scheduler.RetentionRunHour > 23 {
		return fmt.Errorf("AUDIT_RETENTION_RUN_HOUR must be between 0 and 23")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	// The simulated attendance worker needs at least one delivery channel.
	if c.Scheduler.AttendanceEnabled {
		if c.Roster.Path == "" {
			return fmt.Errorf("ROSTER_FILE is required when AUTO_ATTENDANCE_ENABLED")
		}
		if c.SMTP.Host == "" && c.Telegram.BotToken == "" {
			return fmt.Errorf("SMTP_HOST or TELEGRAM_BOT_TOKEN is required when AUTO_ATTENDANCE_ENABLED")
		}
		if c.SMTP.Host != "" && c.SMTP.From == "" {
			return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
		}
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the business timezone used by the schedulers
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
