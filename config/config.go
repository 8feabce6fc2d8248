package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file from the current directory. Missing files are
// fine; the system environment takes over.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Can't find .env file, using environment variables from system")
	}
}

func Port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "4000"
}

func DBPath() string {
	if p := os.Getenv("DB_PATH"); p != "" {
		return p
	}
	return "spms.db"
}

// RedisAddr returns the redis address, or "" when redis is disabled.
func RedisAddr() string {
	return os.Getenv("REDIS_ADDR")
}

func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

func SessionSecret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "secret"
}

// SimInterval is the cadence of the energy simulator.
func SimInterval() time.Duration {
	return durationEnv("SIM_INTERVAL_SECONDS", 3*time.Second)
}

// ReadingRetention is how long energy readings are kept before being purged.
func ReadingRetention() time.Duration {
	return durationEnv("READING_RETENTION_SECONDS", 5*time.Minute)
}

// SpikeTopic is the pub/sub channel for startup-spike notifications.
func SpikeTopic() string {
	if t := os.Getenv("SPIKE_TOPIC"); t != "" {
		return t
	}
	return "energy-spike-topic"
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		log.Printf("Warning: invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return time.Duration(secs) * time.Second
}
