package config

import "github.com/spf13/viper"

// Config holds all runtime configuration, loaded from environment variables
// with sensible defaults for local development.
type Config struct {
	AppPort     string
	DBDriver    string // "sqlite" or "postgres"
	DBDSN       string
	JWTSecret   string
	RabbitMQURL string // empty disables event publishing
	LogLevel    string
	Env         string
}

// Load reads configuration from the environment via Viper.
func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "pasar.db")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ENV", "development")
	viper.AutomaticEnv()

	return &Config{
		AppPort:     viper.GetString("APP_PORT"),
		DBDriver:    viper.GetString("DB_DRIVER"),
		DBDSN:       viper.GetString("DB_DSN"),
		JWTSecret:   viper.GetString("JWT_SECRET"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
		Env:         viper.GetString("APP_ENV"),
	}
}
