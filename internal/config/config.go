// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CAMPUSCMS_DB_PATH" envDefault:"./data/campuscms.db"`
	SessionSecret string `env:"CAMPUSCMS_SESSION_SECRET,required"`
	ServerHost    string `env:"CAMPUSCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CAMPUSCMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CAMPUSCMS_ENV" envDefault:"development"`
	LogLevel      string `env:"CAMPUSCMS_LOG_LEVEL" envDefault:"info"`
	SiteName      string `env:"CAMPUSCMS_SITE_NAME" envDefault:"Campus CMS"`

	// Image hosting (imgbb-compatible upload endpoint)
	ImageHostURL string `env:"CAMPUSCMS_IMAGE_HOST_URL" envDefault:"https://api.imgbb.com/1/upload"`
	ImageHostKey string `env:"CAMPUSCMS_IMAGE_HOST_KEY"`

	// Tag reconciliation schedule (cron expression); empty disables the job
	ReconcileSchedule string `env:"CAMPUSCMS_RECONCILE_SCHEDULE" envDefault:"17 3 * * *"`

	// Seeding configuration
	DoSeed bool `env:"CAMPUSCMS_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// ImageHostEnabled returns true if an image hosting API key is configured.
func (c Config) ImageHostEnabled() bool {
	return c.ImageHostKey != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("CAMPUSCMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	return cfg, nil
}
