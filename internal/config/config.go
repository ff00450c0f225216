package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	AppName      string // application name, mixed into token labels
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	TokenSecret  string // secret used to sign bearer tokens
	TokenTTLH    int    // bearer token time-to-live in hours
	ResetTTLMin  int    // password-reset token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	StoragePath  string // root directory for stored profile images
	SweepAfterD  int    // days soft-deleted records survive before the sweep
	SweepSpec    string // cron spec for the cleanup job
	AMQPURL      string // message broker URL (optional, events disabled if empty)
	SeedBootUser bool   // seed a super-admin when the users table is empty
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		AppName:      getenvDefault("APP_NAME", "user-admin-api"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		TokenSecret:  must("TOKEN_SECRET"),
		TokenTTLH:    mustInt("TOKEN_TTL_HOURS"),
		ResetTTLMin:  mustInt("RESET_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),
		StoragePath:  getenvDefault("STORAGE_PATH", "storage"),
		SweepAfterD:  intDefault("SWEEP_AFTER_DAYS", 30),
		SweepSpec:    getenvDefault("SWEEP_CRON", "0 3 * * *"),
		AMQPURL:      os.Getenv("RABBITMQ_URL"), // empty disables event publishing
		SeedBootUser: getenvDefault("SEED_BOOT_USER", "true") == "true",
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
