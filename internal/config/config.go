package config

import (
	"os"
	"time"
)

// Config holds all server settings, read from the environment.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// RoomsFile is the JSON snapshot path used when no database is set.
	// The special value ":memory:" keeps rooms in memory only.
	RoomsFile string

	// DatabaseURL, when non-empty, switches persistence to postgres.
	DatabaseURL string

	// HandshakeTimeout bounds the wait for the first USER_JOINED message.
	HandshakeTimeout time.Duration
}

func Load() Config {
	return Config{
		Addr:             getEnv("ADDR", ":8080"),
		RoomsFile:        getEnv("ROOMS_FILE", "rooms.json"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		HandshakeTimeout: getDuration("HANDSHAKE_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
