package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// MailConfig holds SMTP delivery settings for outbound notifications.
type MailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// AutomationConfig holds the lifecycle sweep policy knobs.
type AutomationConfig struct {
	FollowUpAfter time.Duration
	EscalateAfter time.Duration
	AdminEmail    string
	Owners        []string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	CronSecret      string
	Port            string
	OpsWebhookURL   string
	PhoneRegion     string
	Mail            MailConfig
	Automation      AutomationConfig
	RateLimitIntake RateLimitConfig
	TokenTTL        time.Duration
}

// Load reads configuration from environment variables and applies sane defaults.
// An empty DATABASE_URL switches the service to its in-memory stores.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		CronSecret:    os.Getenv("CRON_SECRET"),
		Port:          getEnv("PORT", "8080"),
		OpsWebhookURL: os.Getenv("OPS_WEBHOOK_URL"),
		PhoneRegion:   getEnv("DEFAULT_PHONE_REGION", "US"),
		TokenTTL:      parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		Mail: MailConfig{
			Host: getEnv("SMTP_HOST", "localhost"),
			Port: parseInt(getEnv("SMTP_PORT", "587"), 587),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: getEnv("MAIL_FROM", "no-reply@octobees.com"),
		},
		Automation: AutomationConfig{
			FollowUpAfter: parseDuration(getEnv("FOLLOW_UP_AFTER", "72h"), 72*time.Hour),
			EscalateAfter: parseDuration(getEnv("ESCALATE_AFTER", "336h"), 336*time.Hour),
			AdminEmail:    getEnv("ADMIN_EMAIL", "ops@octobees.com"),
			Owners:        splitList(os.Getenv("SALES_OWNERS")),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_INTAKE", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_INTAKE value: %w", err)
	}
	cfg.RateLimitIntake = rl

	if cfg.Automation.FollowUpAfter >= cfg.Automation.EscalateAfter {
		return nil, fmt.Errorf("FOLLOW_UP_AFTER (%s) must be shorter than ESCALATE_AFTER (%s)",
			cfg.Automation.FollowUpAfter, cfg.Automation.EscalateAfter)
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
