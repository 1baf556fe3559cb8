package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var envOnce sync.Once

func Config(key string) string {
	envOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn(".env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

// ConfigOr returns the environment value for key, or fallback when it is unset.
func ConfigOr(key, fallback string) string {
	if v := Config(key); v != "" {
		return v
	}
	return fallback
}
