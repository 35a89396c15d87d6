package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Password schemes accepted by PASSWORD_SCHEME.
const (
	SchemeBcrypt      = "bcrypt"
	SchemeSHA256Crypt = "sha256_crypt"
	SchemeArgon2id    = "argon2id"
)

// minProdSecretLen is the shortest JWT_SECRET accepted when Env is "prod".
const minProdSecretLen = 32

type Config struct {
	Port string

	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	DBSSLMode string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int
	// DBConnMaxLifetime bounds how long a pooled connection is reused (default 30m).
	DBConnMaxLifetime time.Duration

	// JWTSecret signs new access tokens. Required; there is no built-in default.
	JWTSecret string
	// JWTPreviousSecrets are still accepted when verifying, so a secret can be
	// rotated without logging everybody out. Set via JWT_PREVIOUS_SECRETS (comma-separated).
	JWTPreviousSecrets []string

	// AccessTokenTTL is the token validity window (default 30 minutes).
	// Set via ACCESS_TOKEN_EXPIRE_MINUTES.
	AccessTokenTTL time.Duration

	// PasswordScheme is the scheme used for new hashes: "bcrypt" (default),
	// "sha256_crypt" or "argon2id". Hashes in the other schemes still verify.
	PasswordScheme string
	// BcryptCost is the bcrypt work factor for new hashes (default 10).
	BcryptCost int
	// SHA256CryptRounds is the sha256_crypt round count for new hashes (default 535000).
	SHA256CryptRounds int

	// Env is "dev" (default) or "prod".
	Env string

	// LogFormat is "text" (default) or "json"; LogLevel is debug|info|warn|error.
	LogFormat string
	LogLevel  string

	// RequestTimeout bounds every request, including its store calls (default 15s).
	RequestTimeout time.Duration

	// AuthRatePerMinute and AuthRateBurst throttle POST /token and POST /users per client IP.
	AuthRatePerMinute int
	AuthRateBurst     int

	// MaxBodyBytes caps request bodies (default 1 MiB).
	MaxBodyBytes int64

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// ActivityRetention is how long activity log entries are kept (default 90 days).
	ActivityRetention time.Duration
	// ActivityPruneSchedule is the cron schedule for pruning the activity log
	// (default "@daily"). "off" disables pruning.
	ActivityPruneSchedule string

	// CORSAllowedOrigins is a list of origins allowed for CORS. When empty, no CORS headers are sent.
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment. An optional dotenv file
// (ENV_FILE, default ".env") is applied first; variables already set in the
// process environment win over the file.
func Load() Config {
	envFile := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBName:    getEnv("DB_NAME", "library"),
		DBUser:    getEnv("DB_USER", "library"),
		DBPass:    getEnv("DB_PASS", "library"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,

		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTPreviousSecrets: splitList(getEnv("JWT_PREVIOUS_SECRETS", "")),
		AccessTokenTTL:     time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		PasswordScheme:     strings.ToLower(getEnv("PASSWORD_SCHEME", SchemeBcrypt)),
		BcryptCost:         getEnvInt("BCRYPT_COST", 10),
		SHA256CryptRounds:  getEnvInt("SHA256_CRYPT_ROUNDS", 535000),

		Env:       getEnv("ENV", "dev"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		RequestTimeout:    time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		AuthRatePerMinute: getEnvInt("AUTH_RATE_PER_MINUTE", 10),
		AuthRateBurst:     getEnvInt("AUTH_RATE_BURST", 5),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		ActivityRetention:     time.Duration(getEnvInt("ACTIVITY_RETENTION_DAYS", 90)) * 24 * time.Hour,
		ActivityPruneSchedule: getEnv("ACTIVITY_PRUNE_SCHEDULE", "@daily"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// Validate reports settings the server must not start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Env == "prod" && len(c.JWTSecret) < minProdSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d characters when ENV=prod", minProdSecretLen)
	}
	switch c.PasswordScheme {
	case SchemeBcrypt, SchemeSHA256Crypt, SchemeArgon2id:
	default:
		return fmt.Errorf("PASSWORD_SCHEME must be %s, %s or %s, got %q",
			SchemeBcrypt, SchemeSHA256Crypt, SchemeArgon2id, c.PasswordScheme)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}

// DSN returns the lib/pq key/value connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass, c.DBSSLMode,
	)
}

// MigrationURL returns the postgres:// URL form expected by golang-migrate.
func (c Config) MigrationURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// splitList splits a comma-separated list and trims spaces. Empty strings are omitted.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
