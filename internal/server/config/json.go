package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
	"github.com/dmitrijs2005/gophtodo/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from zero values so the file only overrides what it names.
// Durations accept "30m" strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  *int            `json:"bcrypt_cost"`
	CookieSecure                *bool           `json:"cookie_secure"`
	CookieSameSite              *string         `json:"cookie_same_site"`
	RedisAddr                   *string         `json:"redis_addr"`
	LoginMaxFailures            *int            `json:"login_max_failures"`
	LoginFailureWindow          *timex.Duration `json:"login_failure_window"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson overlays values from the JSON file given via -c or -config.
// Without either flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.BcryptCost, c.BcryptCost)
	setIf(&config.CookieSecure, c.CookieSecure)
	setIf(&config.CookieSameSite, c.CookieSameSite)
	setIf(&config.RedisAddr, c.RedisAddr)
	setIf(&config.LoginMaxFailures, c.LoginMaxFailures)
	setIf(&config.LogLevel, c.LogLevel)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.LoginFailureWindow != nil {
		config.LoginFailureWindow = c.LoginFailureWindow.Duration
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
