// Package config loads the payment service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Payment  PaymentConfig
	Mail     MailConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// StatementTimeout is sent as a session setting so a stuck row lock fails
	// the request instead of holding a pool connection.
	StatementTimeout time.Duration
	MaxOpenConns     int
	MaxIdleConns     int
}

// ApplicationName identifies this service's sessions in pg_stat_activity.
const ApplicationName = "storefront-payments"

// Gateway modes
const (
	ModeSandbox    = "sandbox"
	ModeProduction = "production"
	ModeSimulator  = "simulator"
)

// sandboxMerchantID is accepted by the ZarinPal sandbox, which ignores merchant validity.
const sandboxMerchantID = "00000000-0000-0000-0000-000000000000"

// GatewayConfig holds ZarinPal configuration. BaseURL overrides the mode's API host.
type GatewayConfig struct {
	MerchantID          string
	Mode                string
	BaseURL             string
	Timeout             time.Duration
	SimulatorFailRate   float64
	SimulatorMinLatency int
	SimulatorMaxLatency int
}

// PaymentConfig holds checkout flow settings
type PaymentConfig struct {
	AppURL                    string
	AllowClientAmountFallback bool
	VerifyTimeout             time.Duration
}

// MailConfig holds SMTP and notification settings
type MailConfig struct {
	SMTPHost    string
	SMTPPort    int
	User        string
	Password    string
	FromName    string
	AdminEmails []string
	JournalPath string
	SendTimeout time.Duration

	// DispatchTimeout bounds the whole background notification run for one payment.
	DispatchTimeout time.Duration
}

// Configured reports whether enough SMTP settings exist to attempt delivery.
func (m *MailConfig) Configured() bool {
	return m.SMTPHost != "" && m.User != "" && m.Password != ""
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", "30s"),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", DriverPostgres),
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnv("DB_PORT", "5432"),
			User:             getEnv("DB_USER", "postgres"),
			Password:         getEnv("DB_PASSWORD", "postgres"),
			DBName:           getEnv("DB_NAME", "storefront"),
			SSLMode:          getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
			ConnMaxIdleTime:  getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", "1m"),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", "15s"),
		},
		Gateway: GatewayConfig{
			MerchantID:          getEnv("ZARINPAL_MERCHANT_ID", sandboxMerchantID),
			Mode:                strings.ToLower(getEnv("ZARINPAL_MODE", ModeSandbox)),
			BaseURL:             getEnv("ZARINPAL_BASE_URL", ""),
			Timeout:             getEnvAsDuration("ZARINPAL_TIMEOUT", "10s"),
			SimulatorFailRate:   getEnvAsFloat("SIMULATOR_FAILURE_RATE", 0),
			SimulatorMinLatency: getEnvAsInt("SIMULATOR_MIN_LATENCY_MS", 0),
			SimulatorMaxLatency: getEnvAsInt("SIMULATOR_MAX_LATENCY_MS", 0),
		},
		Payment: PaymentConfig{
			AppURL:                    strings.TrimSuffix(getEnv("APP_URL", "http://localhost:3000"), "/"),
			AllowClientAmountFallback: getEnvAsBool("ALLOW_CLIENT_AMOUNT_FALLBACK", false),
			VerifyTimeout:             getEnvAsDuration("PAYMENT_VERIFY_TIMEOUT", "30s"),
		},
		Mail: MailConfig{
			SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:        getEnvAsInt("SMTP_PORT", 587),
			User:            getEnv("SMTP_USER", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			FromName:        getEnv("MAIL_FROM_NAME", "GStyle"),
			AdminEmails:     getEnvAsList("ADMIN_EMAILS"),
			JournalPath:     getEnv("NOTIFY_JOURNAL_PATH", "notifications.db"),
			SendTimeout:     getEnvAsDuration("MAIL_SEND_TIMEOUT", "10s"),
			DispatchTimeout: getEnvAsDuration("NOTIFY_DISPATCH_TIMEOUT", "1m"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host cannot be empty")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name cannot be empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or memory)", c.Database.Driver)
	}

	switch c.Gateway.Mode {
	case ModeProduction:
		if c.Gateway.MerchantID == "" || c.Gateway.MerchantID == sandboxMerchantID {
			return fmt.Errorf("a real zarinpal merchant id is required in production mode")
		}
	case ModeSandbox, ModeSimulator:
	default:
		return fmt.Errorf("invalid zarinpal mode: %s (must be sandbox, production, or simulator)", c.Gateway.Mode)
	}

	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("zarinpal timeout must be positive")
	}

	if c.Gateway.SimulatorFailRate < 0 || c.Gateway.SimulatorFailRate > 1 {
		return fmt.Errorf("simulator failure rate must be between 0 and 1, got %f", c.Gateway.SimulatorFailRate)
	}
	if c.Gateway.SimulatorMinLatency < 0 {
		return fmt.Errorf("simulator min latency cannot be negative")
	}
	if c.Gateway.SimulatorMaxLatency < c.Gateway.SimulatorMinLatency {
		return fmt.Errorf("simulator max latency (%d) must be >= min latency (%d)",
			c.Gateway.SimulatorMaxLatency, c.Gateway.SimulatorMinLatency)
	}

	if _, err := url.ParseRequestURI(c.Payment.AppURL); err != nil {
		return fmt.Errorf("invalid app url %q: %w", c.Payment.AppURL, err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	if c.Logger.Format != "json" && c.Logger.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logger.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, ApplicationName,
	)
	if c.StatementTimeout > 0 {
		// lib/pq forwards unknown keys as run-time parameters.
		dsn += fmt.Sprintf(" statement_timeout=%d", c.StatementTimeout.Milliseconds())
	}
	return dsn
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
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

// getEnvAsList splits a comma or semicolon separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	return SplitList(os.Getenv(key))
}

// SplitList splits s on commas and semicolons and trims each entry.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to parsing the default if provided value is invalid
		duration, err = time.ParseDuration(defaultValue)
		if err != nil {
			return 0
		}
	}
	return duration
}
