package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Email       EmailConfig
	CORS        CORSConfig
	Idempotency IdempotencyConfig
}

type AppConfig struct {
	Name    string
	Port    string
	GinMode string
}

// DatabaseConfig points at the catalog database. URL wins over the DB_* parts.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Debug    bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// EmailConfig holds the provider selection and the fixed addresses used for
// inquiry notifications.
type EmailConfig struct {
	Provider     string // "resend", "smtp", "console"
	ResendAPIKey string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	FromEmail     string
	FromName      string
	OperatorEmail string

	// ConfirmationToCustomer sends the confirmation straight to the visitor
	// instead of routing a copy to the operator for manual forwarding.
	ConfirmationToCustomer bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type IdempotencyConfig struct {
	TTL time.Duration
}

// FromAddress formats the sender as "Name <email>".
func (e EmailConfig) FromAddress() string {
	if e.FromName == "" {
		return e.FromEmail
	}
	return fmt.Sprintf("%s <%s>", e.FromName, e.FromEmail)
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	resendKey := envOrDefault("RESEND_API_KEY", "")
	defaultProvider := "console"
	if resendKey != "" {
		defaultProvider = "resend"
	}

	cfg := &Config{
		App: AppConfig{
			Name:    envOrDefault("APP_NAME", "The Villas Bedouin Resort"),
			Port:    envOrDefault("PORT", "8080"),
			GinMode: envOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL:      firstNonEmpty(os.Getenv("MYSQL_URL"), os.Getenv("DATABASE_URL")),
			Host:     envOrDefault("DB_HOST", "127.0.0.1"),
			Port:     envOrDefault("DB_PORT", "3306"),
			User:     envOrDefault("DB_USER", "root"),
			Password: envOrDefault("DB_PASS", ""),
			Name:     envOrDefault("DB_NAME", "villas_db"),
			Debug:    envAsBool("DB_DEBUG", false),
		},
		Redis: RedisConfig{
			Addr:     redisAddr(),
			Password: envOrDefault("REDIS_PASSWORD", ""),
			DB:       envAsInt("REDIS_DB", 0),
			TLS:      envAsBool("REDIS_TLS", false),
		},
		Email: EmailConfig{
			Provider:               strings.ToLower(envOrDefault("EMAIL_PROVIDER", defaultProvider)),
			ResendAPIKey:           resendKey,
			SMTPHost:               envOrDefault("SMTP_HOST", ""),
			SMTPPort:               envOrDefault("SMTP_PORT", "587"),
			SMTPUsername:           envOrDefault("SMTP_USERNAME", ""),
			SMTPPassword:           envOrDefault("SMTP_PASSWORD", ""),
			FromEmail:              envOrDefault("EMAIL_FROM", "onboarding@resend.dev"),
			FromName:               envOrDefault("EMAIL_FROM_NAME", "The Villas Bedouin Resort"),
			OperatorEmail:          envOrDefault("OPERATOR_EMAIL", "thevillaswr@gmail.com"),
			ConfirmationToCustomer: envAsBool("CONFIRMATION_TO_CUSTOMER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		},
		Idempotency: IdempotencyConfig{
			TTL: envAsDuration("IDEMPOTENCY_TTL", 10*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if c.Email.OperatorEmail == "" {
		return fmt.Errorf("OPERATOR_EMAIL must be set")
	}
	if c.Email.FromEmail == "" {
		return fmt.Errorf("EMAIL_FROM must be set")
	}
	switch c.Email.Provider {
	case "resend":
		if c.Email.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY must be set when EMAIL_PROVIDER=resend")
		}
	case "smtp":
		if c.Email.SMTPHost == "" || c.Email.SMTPUsername == "" || c.Email.SMTPPassword == "" {
			return fmt.Errorf("SMTP_HOST, SMTP_USERNAME and SMTP_PASSWORD must be set when EMAIL_PROVIDER=smtp")
		}
	case "console":
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER: %s", c.Email.Provider)
	}
	if c.Idempotency.TTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be greater than 0")
	}
	return nil
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func redisAddr() string {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		return host + ":" + port
	}
	return envOrDefault("REDIS_ADDR", "")
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envAsBool(key string, def bool) bool {
	v, err := strconv.ParseBool(envOrDefault(key, ""))
	if err != nil {
		return def
	}
	return v
}

func envAsInt(key string, def int) int {
	v, err := strconv.Atoi(envOrDefault(key, ""))
	if err != nil {
		return def
	}
	return v
}

func envAsDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(envOrDefault(key, ""))
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
