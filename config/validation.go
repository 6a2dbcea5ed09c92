package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a configuration
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs ValidationErrors

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{"server.port", fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}

	switch cfg.DBDriver {
	case "postgres":
		required := map[string]string{
			"database.host": cfg.DBHost,
			"database.port": cfg.DBPort,
			"database.user": cfg.DBUser,
			"database.name": cfg.DBName,
		}
		for _, field := range []string{"database.host", "database.port", "database.user", "database.name"} {
			if required[field] == "" {
				errs = append(errs, ValidationError{field, "is required"})
			}
		}
		// Local development may use a passwordless database
		if (env == Production || env == CI) && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"database.password", fmt.Sprintf("is required in %s", env)})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"database.sqlite_path", "is required for the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{"database.driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if env == Production && cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"auth.jwt_secret", "is required in production"})
	}

	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, ValidationError{"rate_limit.window", "must be positive"})
	}
	if cfg.RateLimitWriteLimit <= 0 {
		errs = append(errs, ValidationError{"rate_limit.write_limit", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
