package utils

import (
	"os"
	"strconv"

	"github.com/google/uuid"
)

// GetEnv returns the value of key, or fallback when it is unset or empty.
func GetEnv(key string, fallback ...string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

// GetEnvFloat parses key as a float64, returning fallback on absence or parse error.
func GetEnvFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func CreateFolder(folderPath string) error {
	return os.MkdirAll(folderPath, 0o755)
}

func DeleteFile(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return os.Remove(filePath)
	}
	return nil
}

// GenerateUniqueID returns a random identifier for stored analyses.
func GenerateUniqueID() string {
	return uuid.NewString()
}
