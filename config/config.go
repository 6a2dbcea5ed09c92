package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration

	// Database configuration
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string
	DBMaxOpenConns int

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration; write routes are open when empty
	JWTSecret string

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	RateLimitWindow     time.Duration
	RateLimitWriteLimit int

	// Snapshot export
	ExportBucket   string
	ExportRegion   string
	ExportPrefix   string
	ExportEndpoint string
}

// secretKeys maps Docker secret file names to config keys
var secretKeys = map[string]string{
	"db_user":        "database.user",
	"db_password":    "database.password",
	"jwt_secret":     "auth.jwt_secret",
	"redis_password": "redis.password",
	"redis_url":      "redis.url",
}

// LoadConfig loads configuration from defaults, an optional config file,
// RECIPES_* environment variables and Docker secrets, then validates it
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load is LoadConfig with an explicit config file path
func Load(configPath string) (*Config, error) {
	env := GetEnvironment()
	v := viper.New()
	setDefaults(v, env)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/recipe-catalog")
	}

	v.SetEnvPrefix("RECIPES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// CI injects secrets as environment variables only
	if env != CI {
		if err := loadSecrets(v); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "recipes")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "recipes.db")
	v.SetDefault("database.max_open_conns", 25)

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("log.level", "info")
	if env == Development {
		v.SetDefault("log.format", "console")
	} else {
		v.SetDefault("log.format", "json")
	}

	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.write_limit", 30)

	v.SetDefault("export.prefix", "snapshots")
}

// loadSecrets overrides sensitive keys with Docker secrets found in SECRETS_DIR
func loadSecrets(v *viper.Viper) error {
	for name, key := range secretKeys {
		value, err := readSecret(name)
		if err != nil {
			return err
		}
		if value != "" {
			v.Set(key, value)
		}
	}
	return nil
}

// readSecret reads a Docker secret from the secrets directory. A missing file is not an error.
func readSecret(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(secretsDir(), name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:      v.GetString("server.port"),
		ServerHost:      v.GetString("server.host"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),

		DBDriver:       strings.ToLower(v.GetString("database.driver")),
		DBHost:         v.GetString("database.host"),
		DBPort:         v.GetString("database.port"),
		DBUser:         v.GetString("database.user"),
		DBPassword:     v.GetString("database.password"),
		DBName:         v.GetString("database.name"),
		DBSSLMode:      v.GetString("database.ssl_mode"),
		SQLitePath:     v.GetString("database.sqlite_path"),
		DBMaxOpenConns: v.GetInt("database.max_open_conns"),

		RedisURL:      v.GetString("redis.url"),
		RedisHost:     v.GetString("redis.host"),
		RedisPort:     v.GetString("redis.port"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),

		JWTSecret: v.GetString("auth.jwt_secret"),

		CORSAllowedOrigins: splitList(v.GetStringSlice("cors.allowed_origins")),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),

		RateLimitWindow:     v.GetDuration("rate_limit.window"),
		RateLimitWriteLimit: v.GetInt("rate_limit.write_limit"),

		ExportBucket:   v.GetString("export.bucket"),
		ExportRegion:   v.GetString("export.region"),
		ExportPrefix:   v.GetString("export.prefix"),
		ExportEndpoint: v.GetString("export.endpoint"),
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// PostgresDSN returns the key/value connection string for the configured database
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the connection string in URL form
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// RedisEnabled reports whether a Redis server is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// AuthEnabled reports whether write routes require a bearer token
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// ExportEnabled reports whether snapshot export is configured
func (c *Config) ExportEnabled() bool {
	return c.ExportBucket != ""
}
