package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // NOTE_TIMEZONE must resolve on hosts without zoneinfo
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	S3         S3Config
	Attachment AttachmentConfig
	Note       NoteConfig
	Approval   ApprovalConfig
	Telemetry  TelemetryConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for delivery note attachments.
type S3Config struct {
	Enabled  bool
	Bucket   string
	Region   string
	Prefix   string // Path prefix within bucket (e.g., "kebutuhan/")
	Endpoint string // Optional, for S3 compatible servers
}

// AttachmentConfig holds the local attachment storage settings.
type AttachmentConfig struct {
	Dir      string
	MaxBytes int64
}

// NoteConfig holds delivery note ("Surat Jalan") settings.
type NoteConfig struct {
	UnitCode string // Number segment between sequence and month, e.g. "MUM/UPTBGOR"
	Place    string // Printed before the document date
	TimeZone string
	Company  string // Letterhead lines
	UnitName string
}

// ApprovalConfig holds approval workflow settings.
type ApprovalConfig struct {
	AllowShipped bool
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool
	ServiceName string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "kebutuhan_pln"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled:  getEnvAsBool("S3_ENABLED", false),
			Bucket:   getEnv("S3_BUCKET", ""),
			Region:   getEnv("S3_REGION", "us-east-1"),
			Prefix:   getEnv("S3_PREFIX", "kebutuhan/"),
			Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Attachment: AttachmentConfig{
			Dir:      getEnv("ATTACHMENT_DIR", "data/attachments"),
			MaxBytes: int64(getEnvAsInt("ATTACHMENT_MAX_BYTES", 10<<20)),
		},
		Note: NoteConfig{
			UnitCode: getEnv("NOTE_UNIT_CODE", "MUM/UPTBGOR"),
			Place:    getEnv("NOTE_PLACE", "Bogor"),
			TimeZone: getEnv("NOTE_TIMEZONE", "Asia/Jakarta"),
			Company:  getEnv("NOTE_COMPANY", "PT. PLN (PERSERO) UIT JAWA BAGIAN TENGAH"),
			UnitName: getEnv("NOTE_UNIT_NAME", "UPT BOGOR"),
		},
		Approval: ApprovalConfig{
			AllowShipped: getEnvAsBool("APPROVAL_ALLOW_SHIPPED", true),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnvAsBool("TELEMETRY_ENABLED", false),
			ServiceName: getEnv("TELEMETRY_SERVICE_NAME", "kebutuhan-pln"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("invalid server port: %d", c.Server.Port)
	}

	errs = append(errs, c.Database.validate())

	if c.Auth.APIKey == "" {
		add("API key is required")
	}

	if !validLogLevels[c.Logger.Level] {
		add("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		add("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled && c.S3.Bucket == "" {
		add("S3 bucket is required when S3 is enabled")
	}
	if c.S3.Enabled && c.S3.Region == "" {
		add("S3 region is required when S3 is enabled")
	}

	if c.Attachment.Dir == "" {
		add("attachment directory is required")
	}
	if c.Attachment.MaxBytes < 1 {
		add("attachment max bytes must be at least 1")
	}

	errs = append(errs, c.Note.validate())

	return errors.Join(errs...)
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (c *DatabaseConfig) validate() error {
	switch {
	case c.Host == "":
		return errors.New("database host is required")
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("invalid database port: %d", c.Port)
	case c.User == "":
		return errors.New("database user is required")
	case c.Database == "":
		return errors.New("database name is required")
	case c.MaxConnections < 1:
		return errors.New("database max connections must be at least 1")
	case c.MinConnections < 1:
		return errors.New("database min connections must be at least 1")
	case c.MinConnections > c.MaxConnections:
		return errors.New("database min connections cannot exceed max connections")
	}
	return nil
}

func (c *NoteConfig) validate() error {
	if c.UnitCode == "" {
		return errors.New("note unit code is required")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid note time zone %q: %w", c.TimeZone, err)
	}
	return nil
}

// Location returns the time zone used for note numbers and dates.
func (c *NoteConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt falls back to defaultValue when the variable is unset or not a number.
func getEnvAsInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvAsBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}
