package config

import (
	"log"
	"net"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

// EnvWebhookURL is the environment variable holding the responder webhook
// endpoint. Exported because the responder client re-reads it on every call
// to tolerate the URL being configured after process start.
const EnvWebhookURL = "N8N_WEBHOOK_URL"

// Responder-failure surfacing modes. With request-failure a webhook failure
// becomes an HTTP error for the caller; with inline-message it is returned as
// a successful response whose reply carries the diagnostic, for UIs that
// render errors as a chat bubble.
const (
	ErrorModeRequestFailure = "request-failure"
	ErrorModeInlineMessage  = "inline-message"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort    string
	WebhookURL  string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	ErrorMode   string
	Environment string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	errorMode := getEnv("RESPONDER_ERROR_MODE", ErrorModeRequestFailure)
	if errorMode != ErrorModeRequestFailure && errorMode != ErrorModeInlineMessage {
		log.Printf("Warning: Invalid RESPONDER_ERROR_MODE '%s', using default '%s'.", errorMode, ErrorModeRequestFailure)
		errorMode = ErrorModeRequestFailure
	}

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "5000"),
		WebhookURL:  getEnv(EnvWebhookURL, ""),
		DBHost:      getEnv("DB_HOST", ""),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", ""),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", ""),
		DBSSLMode:   getEnv("DB_SSLMODE", "require"),
		ErrorMode:   errorMode,
		Environment: getEnv("APP_ENV", "development"),
	}

	log.Printf("Loaded config: Port=%s, WebhookURL=%s, DB=%s, ErrorMode=%s, Env=%s",
		cfg.HTTPPort, Presence(cfg.WebhookURL), Presence(cfg.DBHost), cfg.ErrorMode, cfg.Environment)

	return cfg, nil
}

// MissingDatabaseVars lists the required database variables that are unset.
// Persistence is all-or-nothing: any missing variable disables it entirely.
func (c *Config) MissingDatabaseVars() []string {
	required := []struct {
		name  string
		value string
	}{
		{"DB_HOST", c.DBHost},
		{"DB_USER", c.DBUser},
		{"DB_PASSWORD", c.DBPassword},
		{"DB_NAME", c.DBName},
	}

	var missing []string
	for _, v := range required {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	return missing
}

// DatabaseURL builds the pgx connection string from the individual settings.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// DevMode reports whether error responses may carry internal detail.
func (c *Config) DevMode() bool {
	return c.Environment == "development"
}

// Presence masks a config value, only revealing whether it is set.
func Presence(value string) string {
	if value == "" {
		return "NOT SET"
	}
	return "***configured***"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if fallback != "" {
		log.Printf("Env variable %s not set, using default: %s", key, fallback)
	}
	return fallback
}
