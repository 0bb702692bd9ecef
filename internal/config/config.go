package config

import (
	"os"
	"time"
)

// Config collects every environment knob the process reads. Defaults
// suit a local run against the file-backed store with no broker.
type Config struct {
	Port          string
	DataFile      string
	MongoURI      string
	MongoDatabase string

	JWTSecret   string
	TokenExpiry time.Duration

	AdminUsername string
	AdminPassword string

	MQTTBroker string
	MQTTTopic  string

	AssignTimeout time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DataFile:      getEnv("DATA_FILE", "data/state.json"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "fleet_dispatch"),

		JWTSecret:   getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		TokenExpiry: getDuration("JWT_EXPIRY", 24*time.Hour),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin@123"),

		MQTTBroker: os.Getenv("MQTT_BROKER"),
		MQTTTopic:  getEnv("MQTT_TOPIC", "fleet/stats"),

		AssignTimeout: getDuration("ASSIGN_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
