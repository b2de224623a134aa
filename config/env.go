package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvOwner        = "ARBX_OWNER"
	EnvBorrowAmount = "ARBX_BORROW_AMOUNT"
	EnvPremiumBps   = "ARBX_PREMIUM_BPS"
	EnvConfigPath   = "ARBX_CONFIG"
)

// LoadEnv loads environment variables from .env file
func LoadEnv() error {
	return godotenv.Load()
}

// GetEnvWithDefault gets an environment variable with a default value
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvOwner); v != "" {
		cfg.Owner = v
	}
	if v := os.Getenv(EnvBorrowAmount); v != "" {
		cfg.BorrowAmount = v
	}
	if v := os.Getenv(EnvPremiumBps); v != "" {
		if bps, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.PremiumBps = uint16(bps)
		}
	}
}
