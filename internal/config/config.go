package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	App      AppConfig      `json:"app"`
	Redis    RedisConfig    `json:"redis"`
	Stripe   StripeConfig   `json:"stripe"`
	PayPal   PayPalConfig   `json:"paypal"`
	Email    EmailConfig    `json:"email"`
	Auth     AuthConfig     `json:"auth"`
}

type ServerConfig struct {
	Port string `json:"port"`
	Host string `json:"host"`
	Mode string `json:"mode"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type AppConfig struct {
	Environment string `json:"environment"`
	Debug       bool   `json:"debug"`
	Version     string `json:"version"`
	StoreName   string `json:"storeName"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

type StripeConfig struct {
	SecretKey     string `json:"-"`
	WebhookSecret string `json:"-"`
	SuccessURL    string `json:"successUrl"`
	CancelURL     string `json:"cancelUrl"`
	Currency      string `json:"currency"`
}

type PayPalConfig struct {
	ClientID string `json:"-"`
	Secret   string `json:"-"`
	BaseURL  string `json:"baseUrl"`
}

type EmailConfig struct {
	SendGridAPIKey string `json:"-"`
	SMTPHost       string `json:"smtpHost"`
	SMTPPort       int    `json:"smtpPort"`
	SMTPUsername   string `json:"-"`
	SMTPPassword   string `json:"-"`
	FromAddress    string `json:"fromAddress"`
	FromName       string `json:"fromName"`
	AdminAddress   string `json:"adminAddress"`
}

type AuthConfig struct {
	JWTSecret string `json:"-"`
	// SuperAdminEmails always resolve to super_admin regardless of the
	// stored role. Escape hatch for known operator accounts.
	SuperAdminEmails []string `json:"superAdminEmails"`
}

// NewConfig creates a new configuration instance from environment variables
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8086"),
			Host: getEnv("HOST", "0.0.0.0"),
			Mode: getEnv("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "storefront_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		App: AppConfig{
			Environment: getEnv("ENVIRONMENT", "development"),
			Debug:       getBoolEnv("DEBUG", true),
			Version:     getEnv("VERSION", "1.0.0"),
			StoreName:   getEnv("STORE_NAME", "Maison Cacao"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			SuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"),
			CancelURL:     getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),
			Currency:      getEnv("CHECKOUT_CURRENCY", "eur"),
		},
		PayPal: PayPalConfig{
			ClientID: os.Getenv("PAYPAL_CLIENT_ID"),
			Secret:   os.Getenv("PAYPAL_SECRET"),
			BaseURL:  getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		},
		Email: EmailConfig{
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPPort:       getIntEnv("SMTP_PORT", 587),
			SMTPUsername:   os.Getenv("SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
			FromAddress:    getEnv("EMAIL_FROM", "orders@maison-cacao.example"),
			FromName:       getEnv("EMAIL_FROM_NAME", "Maison Cacao"),
			AdminAddress:   getEnv("EMAIL_ADMIN", "shop@maison-cacao.example"),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			SuperAdminEmails: getListEnv("SUPER_ADMIN_EMAILS"),
		},
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Configured reports whether backend credentials are present. Without
// them the service runs on the static fixture data source.
func (c *DatabaseConfig) Configured() bool {
	return c.Host != ""
}

// IsDevelopment checks if the app is running in development mode
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if the app is running in production mode
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getBoolEnv gets boolean environment variable with fallback
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getIntEnv gets integer environment variable with fallback
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getListEnv gets a comma-separated environment variable as a slice
func getListEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
