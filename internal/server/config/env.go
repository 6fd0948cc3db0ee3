package config

import (
	"fmt"
	"strconv"
	"time"
)

type lookupFunc func(key string) (string, bool)

// parseEnv overlays values from environment variables. Only variables that
// are set are applied; malformed numbers and durations are errors.
func parseEnv(config *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	str("ADDRESS", &config.EndpointAddrHTTP)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	str("COOKIE_SAMESITE", &config.CookieSameSite)
	str("REDIS_ADDR", &config.RedisAddr)
	str("LOG_LEVEL", &config.LogLevel)

	if v, ok := lookup("TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := lookup("LOGIN_FAILURE_WINDOW"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LOGIN_FAILURE_WINDOW: %w", err)
		}
		config.LoginFailureWindow = d
	}
	if v, ok := lookup("BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		config.BcryptCost = n
	}
	if v, ok := lookup("LOGIN_MAX_FAILURES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOGIN_MAX_FAILURES: %w", err)
		}
		config.LoginMaxFailures = n
	}
	if v, ok := lookup("COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		config.CookieSecure = b
	}
	return nil
}
