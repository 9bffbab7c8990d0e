package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Every value has a default so the server
// comes up with zero configuration in development; a missing database
// only degrades the store endpoints, it never prevents boot.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	StaticDir string // directory with the client assets (index, app.js, catalog)
	RabbitURL string // AMQP broker URL for the downstream event queue
}

// Load reads configuration values from environment variables and
// returns a Config, falling back to development defaults.
func Load() Config {
	return Config{
		Env:       getenv("APP_ENV", "dev"),
		Port:      getenv("APP_PORT", "8080"),
		DBUser:    getenv("DB_USER", "root"),
		DBPass:    os.Getenv("DB_PASS"), // empty password allowed
		DBHost:    getenv("DB_HOST", "localhost"),
		DBPort:    getenv("DB_PORT", "3306"),
		DBName:    getenv("DB_NAME", "stock_opname"),
		StaticDir: getenv("STATIC_DIR", "web"),
		RabbitURL: getenv("RABBITMQ_URL", ""),
	}
}

// getenv returns the environment value for key or def when unset/empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
