package main

import (
	"os"
	"strconv"
	"time"
)

// RecorderConfig holds daemon-specific configuration
type RecorderConfig struct {
	ConfigPath   string        // Path to the service config YAML
	DataDir      string        // Archive root directory
	Interval     time.Duration // Time between capture passes
	OpenHour     int           // Session open hour in the configured timezone
	CloseHour    int           // Session close hour (exclusive)
	Timezone     string        // Timezone (default: America/Argentina/Buenos_Aires)
	StateFile    string        // File to track the last completed session date
	Workers      int           // Capture pool size
	RunOnStartup bool          // Start capturing immediately when inside the session
}

// LoadRecorderConfig loads configuration from environment variables
func LoadRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		ConfigPath:   os.Getenv("RECORDER_CONFIG_PATH"),
		DataDir:      getEnvOrDefault("RECORDER_DATA_DIR", "data"),
		Interval:     getEnvDurationOrDefault("RECORDER_INTERVAL", 5*time.Minute),
		OpenHour:     getEnvIntOrDefault("RECORDER_OPEN_HOUR", 11),
		CloseHour:    getEnvIntOrDefault("RECORDER_CLOSE_HOUR", 17),
		Timezone:     getEnvOrDefault("RECORDER_TIMEZONE", "America/Argentina/Buenos_Aires"),
		StateFile:    getEnvOrDefault("RECORDER_STATE_FILE", "data/.recorder-state"),
		Workers:      getEnvIntOrDefault("RECORDER_WORKERS", 3),
		RunOnStartup: getEnvBoolOrDefault("RECORDER_RUN_ON_STARTUP", true),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
