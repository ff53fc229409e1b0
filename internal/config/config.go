package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Blob storage for uploaded design images
	StorageBucket        string
	StoragePublicBaseURL string
	MaxImageMB           int

	// Notification email
	EmailProvider    string // smtp | ses | sendgrid | stub | auto
	BusinessEmailTo  string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPFrom         string
	SESFromEmail     string
	SESFromName      string
	SendGridAPIKey   string
	SendGridFrom     string
	SendGridFromName string

	// Business contact shown on the landing page. Digits only with country
	// code and no leading '+' (wa.me link format).
	BusinessWhatsAppNumber string

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Intake policies, applied uniformly per deployment
	ImagePolicy     string // strict | lenient
	DetailPolicy    string // strict | placeholder
	NotifyPolicy    string // best_effort | strict
	RequireEmail    bool
	RequireShipping bool

	// Optional JSON file overriding the built-in combo catalog
	ComboCatalogPath string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		StorageBucket:        getEnv("STORAGE_BUCKET", "lead-images"),
		StoragePublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
		MaxImageMB:           getEnvAsInt("MAX_IMAGE_MB", 5),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		BusinessEmailTo:  getEnv("BUSINESS_EMAIL_TO", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:         getEnv("SMTP_FROM", getEnv("SMTP_USER", "")),
		SESFromEmail:     getEnv("SES_FROM_EMAIL", ""),
		SESFromName:      getEnv("SES_FROM_NAME", "Skins Intake"),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		SendGridFrom:     getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName: getEnv("SENDGRID_FROM_NAME", "Skins Intake"),

		BusinessWhatsAppNumber: getEnv("BUSINESS_WHATSAPP_NUMBER", "573001112233"),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		ImagePolicy:     strings.ToLower(getEnv("INTAKE_IMAGE_POLICY", "strict")),
		DetailPolicy:    strings.ToLower(getEnv("INTAKE_DETAIL_POLICY", "strict")),
		NotifyPolicy:    strings.ToLower(getEnv("INTAKE_NOTIFY_POLICY", "best_effort")),
		RequireEmail:    getEnvAsBool("INTAKE_REQUIRE_EMAIL", true),
		RequireShipping: getEnvAsBool("INTAKE_REQUIRE_SHIPPING", false),

		ComboCatalogPath: getEnv("COMBO_CATALOG_PATH", ""),
	}
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if strings.TrimSpace(c.StorageBucket) == "" {
		return fmt.Errorf("config: STORAGE_BUCKET is required")
	}
	if c.MaxImageMB <= 0 {
		return fmt.Errorf("config: MAX_IMAGE_MB must be positive, got %d", c.MaxImageMB)
	}
	switch c.ImagePolicy {
	case "strict", "lenient":
	default:
		return fmt.Errorf("config: INTAKE_IMAGE_POLICY must be strict or lenient, got %q", c.ImagePolicy)
	}
	switch c.DetailPolicy {
	case "strict", "placeholder":
	default:
		return fmt.Errorf("config: INTAKE_DETAIL_POLICY must be strict or placeholder, got %q", c.DetailPolicy)
	}
	switch c.NotifyPolicy {
	case "best_effort", "strict":
	default:
		return fmt.Errorf("config: INTAKE_NOTIFY_POLICY must be best_effort or strict, got %q", c.NotifyPolicy)
	}
	return nil
}

// MaxImageBytes converts the configured ceiling to bytes.
func (c *Config) MaxImageBytes() int64 {
	return int64(c.MaxImageMB) * 1024 * 1024
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
