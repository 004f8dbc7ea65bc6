package config

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv loads environment variables from .env.local if APP_ENV is "local".
// It runs before the application logger exists, so it logs through the global zap logger.
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development" // Default to development if not set
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv == "local" {
		err := godotenv.Load(".env.local") // Assumes .env.local exists where the binary is run
		if err != nil {
			zap.L().Warn(".env.local not loaded, relying on system environment", zap.Error(err))
		} else {
			zap.L().Info("loaded .env.local for local development")
		}
	}
}
