// Package config loads visaslot configuration from a YAML file with an
// optional .env overlay: secrets and deployment-specific knobs come from
// the environment, everything else from the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Applicant holds the personal details filled into the booking form.
type Applicant struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
}

// Booking configures the form workflow.
type Booking struct {
	URL            string   `yaml:"url"`
	Service        string   `yaml:"service"`
	PreferredDates []string `yaml:"preferred_dates"`
}

// Browser configures the session controller.
type Browser struct {
	Headless bool `yaml:"headless"`

	// ExtraProcessPatterns are additional glob patterns classifying
	// processes as browser family, for renamed or distro-specific
	// binaries.
	ExtraProcessPatterns []string `yaml:"extra_process_patterns"`

	// ShutdownTimeoutSeconds bounds the graceful shutdown poll before
	// kill escalation begins.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

// Telegram configures the operator notification bot.
type Telegram struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Config is the full application configuration.
type Config struct {
	Applicant Applicant `yaml:"applicant"`
	Booking   Booking   `yaml:"booking"`
	Browser   Browser   `yaml:"browser"`
	Telegram  Telegram  `yaml:"telegram"`

	// SchedulerPeriodMinutes is how often a booking attempt fires.
	SchedulerPeriodMinutes int `yaml:"scheduler_period_minutes"`
}

// Defaults mirror the deployment this tool was built for.
func defaults() Config {
	return Config{
		Booking: Booking{
			Service: "Processing a visa",
		},
		Browser: Browser{
			Headless:               true,
			ShutdownTimeoutSeconds: 5,
		},
		SchedulerPeriodMinutes: 1,
	}
}

// Load reads the YAML file at path, overlays environment variables, and
// validates the result. A missing file is fine when the environment
// provides enough; a missing path argument skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Best-effort .env load; the variables may come from the real
	// environment instead.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("SCHEDULER_PERIOD_IN_MINUTES"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil {
			c.SchedulerPeriodMinutes = mins
		}
	}
	if v := os.Getenv("BOOKING_URL"); v != "" {
		c.Booking.URL = v
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		if headless, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = headless
		}
	}
}

func (c *Config) validate() error {
	if c.Booking.URL == "" {
		return fmt.Errorf("booking.url is required")
	}
	if c.SchedulerPeriodMinutes <= 0 {
		return fmt.Errorf("scheduler_period_minutes must be positive, got %d", c.SchedulerPeriodMinutes)
	}
	if c.Browser.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("browser.shutdown_timeout_seconds must be positive, got %d", c.Browser.ShutdownTimeoutSeconds)
	}
	return nil
}

// SchedulerPeriod returns the attempt interval as a Duration.
func (c *Config) SchedulerPeriod() time.Duration {
	return time.Duration(c.SchedulerPeriodMinutes) * time.Minute
}

// ShutdownTimeout returns the graceful shutdown bound as a Duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Browser.ShutdownTimeoutSeconds) * time.Second
}

// NotificationsEnabled reports whether telegram credentials are configured.
func (c *Config) NotificationsEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}
