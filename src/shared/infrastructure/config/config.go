package config

import "os"

// Config contiene la configuración del servicio leída del ambiente
type Config struct {
	Port string

	// PostgreSQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (bags de sesión)
	RedisAddr     string
	RedisPassword string

	// Kafka (eventos de orden confirmada); vacío deshabilita el broker
	KafkaBrokers string

	// Gateway de pagos
	StripePublicKey   string
	StripeSecretKey   string
	StripeWebhookKey  string
	PaymentGatewayURL string
	StripeCurrency    string

	// SMTP (confirmaciones); host vacío activa el modo consola
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
}

// Load lee la configuración del ambiente con defaults de desarrollo
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "boutique_ado"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		StripePublicKey:   getEnv("STRIPE_PUBLIC_KEY", ""),
		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookKey:  getEnv("STRIPE_WH_SECRET", ""),
		PaymentGatewayURL: getEnv("PAYMENT_GATEWAY_URL", ""),
		StripeCurrency:    getEnv("STRIPE_CURRENCY", "usd"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "boutiqueado@example.com"),
	}
}

// getEnv lee una variable de ambiente con valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
