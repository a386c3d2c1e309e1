package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; earlier files win because godotenv never
// overrides variables that are already set.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads environment variables from .env/.env.local if present.
// Variables already present in the process environment are not overwritten.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", "path", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", name)
	}
}
