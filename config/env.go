package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// ParseEnvironment maps a name such as "prod" or "TEST" to an Environment.
// Unknown and empty names are Development.
func ParseEnvironment(name string) Environment {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

// GetEnvironment determines the current environment. CI=true wins; otherwise
// RECIPES_ENV is read, falling back to the unprefixed ENV.
func GetEnvironment() Environment {
	v := viper.New()
	v.SetEnvPrefix("RECIPES")
	_ = v.BindEnv("env", "RECIPES_ENV", "ENV")
	_ = v.BindEnv("ci", "CI")

	if v.GetBool("ci") {
		return CI
	}
	return ParseEnvironment(v.GetString("env"))
}

// IsDevelopment returns true if the current environment is development
func IsDevelopment() bool {
	return GetEnvironment() == Development
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}
