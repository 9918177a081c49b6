package util

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/studygraph/backend/pkg/logger"
)

// LoadEnv loads variables from a .env file when one exists. Variables
// already present in the process environment are never overridden.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using process environment")
	}
}

// GetEnv returns the raw value of key, or "" when unset.
func GetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return ""
	}
	return value
}

// GetEnvString returns the value of key, or defaultValue when unset.
func GetEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

// GetEnvInt parses key as an integer, falling back to defaultValue when
// unset or unparsable.
func GetEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetEnvNumeric parses key as a float64, falling back to defaultValue
// when unset or unparsable.
func GetEnvNumeric(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetEnvBool parses key as "true" or "false", falling back to
// defaultValue for anything else.
func GetEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return defaultValue
}
