package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; defaults match a local development setup.
type Config struct {
	Env  string // APP_ENV (development, test, production)
	Port string // APP_PORT

	DBDriver      string // DB_DRIVER: mysql or memory
	DBUser        string // DB_USER
	DBPass        string // DB_PASSWORD (empty allowed)
	DBHost        string // DB_HOST
	DBPort        string // DB_PORT
	DBName        string // DB_NAME
	DBAutoMigrate bool   // DB_AUTO_MIGRATE applies the embedded schema on boot

	JWTSecret  string        // JWT_SECRET_KEY
	AccessTTL  time.Duration // JWT_ACCESS_TOKEN_EXPIRES, seconds
	RefreshTTL time.Duration // JWT_REFRESH_TOKEN_EXPIRES, seconds
	BcryptCost int           // BCRYPT_COST

	CORSOrigins      []string // CORS_ORIGINS, comma separated or "*"
	UploadDir        string   // UPLOAD_FOLDER
	MaxContentLength int64    // MAX_CONTENT_LENGTH in bytes

	LogLevel string // LOG_LEVEL

	AdminEmail    string // ADMIN_EMAIL bootstraps an admin account when set
	AdminPassword string // ADMIN_PASSWORD
}

const devJWTSecret = "jwt-secret-key-dev"

// Load reads configuration values from the environment. Call godotenv.Load
// before Load so values from a .env file are visible here.
func Load() Config {
	env := envStr("APP_ENV", "development")
	secret := envStr("JWT_SECRET_KEY", "")
	if secret == "" && env == "development" {
		secret = devJWTSecret
	}
	return Config{
		Env:  env,
		Port: envStr("APP_PORT", "5000"),

		DBDriver:      strings.ToLower(envStr("DB_DRIVER", "mysql")),
		DBUser:        envStr("DB_USER", "root"),
		DBPass:        envStr("DB_PASSWORD", ""),
		DBHost:        envStr("DB_HOST", "localhost"),
		DBPort:        envStr("DB_PORT", "3306"),
		DBName:        envStr("DB_NAME", "movie_ticket"),
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", false),

		JWTSecret:  secret,
		AccessTTL:  time.Duration(envInt("JWT_ACCESS_TOKEN_EXPIRES", 86400)) * time.Second,
		RefreshTTL: time.Duration(envInt("JWT_REFRESH_TOKEN_EXPIRES", 2592000)) * time.Second,
		BcryptCost: envInt("BCRYPT_COST", 12),

		CORSOrigins:      parseOrigins(envStr("CORS_ORIGINS", "http://localhost:3000")),
		UploadDir:        envStr("UPLOAD_FOLDER", "uploads"),
		MaxContentLength: int64(envInt("MAX_CONTENT_LENGTH", 16*1024*1024)),

		LogLevel: envStr("LOG_LEVEL", "info"),

		AdminEmail:    envStr("ADMIN_EMAIL", ""),
		AdminPassword: envStr("ADMIN_PASSWORD", ""),
	}
}

// Validate reports configuration that would make the server unusable.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required outside development"))
	}
	if c.DBDriver != "mysql" && c.DBDriver != "memory" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be mysql or memory, got %q", c.DBDriver))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST out of range: %d", c.BcryptCost))
	}
	if c.MaxContentLength <= 0 {
		errs = append(errs, errors.New("MAX_CONTENT_LENGTH must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c Config) IsProduction() bool { return c.Env == "production" }

// MySQLEnabled reports whether repositories should be backed by MySQL.
func (c Config) MySQLEnabled() bool { return c.DBDriver == "mysql" }

func parseOrigins(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return []string{"*"}
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
