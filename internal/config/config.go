// Package config assembles the process configuration once at start-up. The
// resulting AppConfig is passed to constructors; nothing else reads the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-jobly/pkg/database"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/utilities"
)

type ServerConfig struct {
	Addr string
	// AllowedOrigins feeds the CORS middleware.
	AllowedOrigins []string
}

type AuthConfig struct {
	SecretKey  string
	TokenTTL   time.Duration
	BcryptCost int
}

// ThrottleConfig limits failed logins per username. Disabled when RedisURL
// is empty.
type ThrottleConfig struct {
	RedisURL  string
	MaxFailed int
	Window    time.Duration
}

type AppConfig struct {
	Server        ServerConfig
	Database      database.Config
	Log           utilities.Config
	Auth          AuthConfig
	Throttle      ThrottleConfig
	EmptyPolicy   sqlbuilder.EmptyPolicy
	SnowflakeNode int64
}

func getOptionalEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getOptionalEnvInt(key string, def int, errs *[]string) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s'", key, v))
		return def
	}
	return n
}

func getOptionalEnvDuration(key string, def time.Duration, errs *[]string) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration, got '%s'", key, v))
		return def
	}
	return d
}

// Load reads the environment and reports every problem at once.
func Load() (*AppConfig, error) {
	var errs []string

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		errs = append(errs, "missing required environment variable: SECRET_KEY")
	}

	cost := getOptionalEnvInt("BCRYPT_WORK_FACTOR", 12, &errs)
	if cost < 4 || cost > 31 {
		errs = append(errs, fmt.Sprintf("BCRYPT_WORK_FACTOR %d out of range 4-31", cost))
	}

	policy, err := sqlbuilder.ParseEmptyPolicy(os.Getenv("SEARCH_EMPTY_RESULT"))
	if err != nil {
		errs = append(errs, err.Error())
	}

	node := getOptionalEnvInt("SNOWFLAKE_NODE", 1, &errs)
	if node < 0 || node > 1023 {
		errs = append(errs, fmt.Sprintf("SNOWFLAKE_NODE %d out of range 0-1023", node))
	}

	db := database.ConfigFromEnv()
	if db.Driver != database.DriverPQ && db.Driver != database.DriverPGX {
		errs = append(errs, fmt.Sprintf("DATABASE_DRIVER must be %q or %q, got %q", database.DriverPQ, database.DriverPGX, db.Driver))
	}

	var origins []string
	for _, o := range strings.Split(getOptionalEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	cfg := &AppConfig{
		Server: ServerConfig{
			Addr:           getOptionalEnv("HTTP_ADDR", "0.0.0.0:"+getOptionalEnv("PORT", "3000")),
			AllowedOrigins: origins,
		},
		Database: db,
		Log:      utilities.ConfigFromEnv(),
		Auth: AuthConfig{
			SecretKey:  secret,
			TokenTTL:   getOptionalEnvDuration("TOKEN_TTL", 24*time.Hour, &errs),
			BcryptCost: cost,
		},
		Throttle: ThrottleConfig{
			RedisURL:  os.Getenv("REDIS_URL"),
			MaxFailed: getOptionalEnvInt("LOGIN_MAX_FAILED", 6, &errs),
			Window:    getOptionalEnvDuration("LOGIN_LOCK_WINDOW", 15*time.Minute, &errs),
		},
		EmptyPolicy:   policy,
		SnowflakeNode: int64(node),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}
	return cfg, nil
}
