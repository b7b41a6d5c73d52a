/**
 * @description
 * This package handles configuration management for the GULL backend. It
 * uses the Viper library to read configuration from environment variables
 * (plus an optional .env file), providing a centralized way to manage
 * application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the GULL backend.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	SessionKeyPrefix     string `mapstructure:"SESSION_KEY_PREFIX"`
	SessionTTLHours      int    `mapstructure:"SESSION_TTL_HOURS"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	CORSAllowedOrigins   string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	DeductionGroupMS     int    `mapstructure:"DEDUCTION_GROUP_WINDOW_MS"`
	OfflineMode          bool   `mapstructure:"OFFLINE_MODE"`
	OfflineAdminUsername string `mapstructure:"OFFLINE_ADMIN_USERNAME"`
	OfflineAdminPassword string `mapstructure:"OFFLINE_ADMIN_PASSWORD"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SESSION_KEY_PREFIX", "gull:session")
	viper.SetDefault("SESSION_TTL_HOURS", 720)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DEDUCTION_GROUP_WINDOW_MS", 2000)
	viper.SetDefault("OFFLINE_MODE", false)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("SESSION_KEY_PREFIX")
	_ = viper.BindEnv("SESSION_TTL_HOURS")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")
	_ = viper.BindEnv("DEDUCTION_GROUP_WINDOW_MS")
	_ = viper.BindEnv("OFFLINE_MODE")
	_ = viper.BindEnv("OFFLINE_ADMIN_USERNAME")
	_ = viper.BindEnv("OFFLINE_ADMIN_PASSWORD")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.SessionKeyPrefix = strings.TrimSpace(config.SessionKeyPrefix)
	if config.SessionKeyPrefix == "" {
		config.SessionKeyPrefix = "gull:session"
	}
	if config.SessionTTLHours <= 0 {
		config.SessionTTLHours = 720
	}
	if config.DeductionGroupMS <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive deduction window; using default\" window_ms=%d", config.DeductionGroupMS)
		config.DeductionGroupMS = 2000
	}
	if config.OfflineMode && strings.TrimSpace(config.OfflineAdminUsername) == "" {
		log.Printf("level=warn component=config msg=\"offline mode without admin override credentials; all sign-ins will be guests\"")
	}

	return
}
