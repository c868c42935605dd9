package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Mailer    MailerConfig
	Sheets    SheetsConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// MailerConfig contains credentials and addresses for the transactional
// mail API used by payment reminders.
type MailerConfig struct {
	BaseURL       string
	APIKey        string
	FromAddress   string
	ReminderEmail string
}

// SheetsConfig contains configuration required to export month reports to
// Google Sheets. Both fields empty disables the export feature.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// SchedulerConfig holds reminder scheduler settings.
type SchedulerConfig struct {
	Timezone string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "milkledger"),
		},
		Mailer: MailerConfig{
			BaseURL:       getenvWithDefault("MAILER_BASE_URL", "https://api.mailersend.com"),
			APIKey:        os.Getenv("MAILER_API_KEY"),
			FromAddress:   os.Getenv("MAILER_FROM"),
			ReminderEmail: os.Getenv("REMINDER_EMAIL"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Scheduler: SchedulerConfig{
			Timezone: getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Mailer.APIKey != "" {
		switch {
		case c.Mailer.BaseURL == "":
			return errors.New("MAILER_BASE_URL must not be empty")
		case c.Mailer.FromAddress == "":
			return errors.New("MAILER_FROM must be provided when MAILER_API_KEY is set")
		case c.Mailer.ReminderEmail == "":
			return errors.New("REMINDER_EMAIL must be provided when MAILER_API_KEY is set")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_EXPORT_ID must be set together")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Scheduler.Timezone, err)
	}

	return nil
}

// MailerEnabled reports whether reminder mail dispatch is configured.
func (c *Config) MailerEnabled() bool {
	return c.Mailer.APIKey != ""
}

// SheetsEnabled reports whether month report export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
