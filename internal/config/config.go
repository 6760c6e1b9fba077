package config

import (
	"errors"
	"strings"
	"time"

	"github.com/aLAN-LDZ/pstryk-go/internal/configload"
)

// Config defines pstrykd daemon configuration.
type Config struct {
	API struct {
		BaseURL        string `yaml:"baseUrl" env:"PSTRYK_API_BASE_URL"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" env:"PSTRYK_API_TIMEOUT"`
	} `yaml:"api"`
	Auth struct {
		Email        string `yaml:"email" env:"PSTRYK_EMAIL"`
		Password     string `yaml:"password" env:"PSTRYK_PASSWORD"`
		AccessToken  string `yaml:"accessToken" env:"PSTRYK_ACCESS_TOKEN"`
		RefreshToken string `yaml:"refreshToken" env:"PSTRYK_REFRESH_TOKEN"`
		UserID       int64  `yaml:"userId" env:"PSTRYK_USER_ID"`
	} `yaml:"auth"`
	Refresh struct {
		MeterConcurrency int    `yaml:"meterConcurrency" env:"PSTRYK_METER_CONCURRENCY"`
		Resolution       string `yaml:"resolution" env:"PSTRYK_RESOLUTION"`
	} `yaml:"refresh"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.API.BaseURL = "https://api.pstryk.pl"
	cfg.API.TimeoutSeconds = 15
	cfg.Refresh.MeterConcurrency = 2
	cfg.Refresh.Resolution = "hour"

	if err := configload.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return nil, errors.New("config: api base url required")
	}
	if !cfg.HasTokens() && !cfg.HasCredentials() {
		return nil, errors.New("config: either access+refresh tokens or email+password required")
	}
	return cfg, nil
}

// HasTokens reports whether a previously persisted session can be resumed.
func (c *Config) HasTokens() bool {
	return strings.TrimSpace(c.Auth.AccessToken) != "" && strings.TrimSpace(c.Auth.RefreshToken) != ""
}

// HasCredentials reports whether interactive login is possible.
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.Auth.Email) != "" && c.Auth.Password != ""
}

// Timeout returns the overall per-request budget.
func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// MeterConcurrency returns the bound on concurrently refreshed meters.
func (c *Config) MeterConcurrency() int {
	if c.Refresh.MeterConcurrency <= 0 {
		return 1
	}
	return c.Refresh.MeterConcurrency
}
