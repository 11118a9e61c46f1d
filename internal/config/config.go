// Package config holds the session configuration of the Archway core.
package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/archway-no/archway/pkg/logger"
)

// DefaultPort is the port the core API binds when none is configured.
const DefaultPort = 8153

// Config is the Archway core configuration, populated from the config file,
// environment variables and command line flags.
type Config struct {
	ConfigFile string        `json:"config_file"`
	Port       int           `json:"port"`
	Studio     string        `json:"studio"`
	Admin      AdminConfig   `json:"admin"`
	Log        logger.Config `json:"log"`
	// SeedProjects are created at session start so a fresh studio has
	// somewhere to put renders.
	SeedProjects []string `json:"seed_projects"`
}

// AdminConfig identifies the bootstrap admin. The member record created from
// it is protected: it cannot be removed or role-changed.
type AdminConfig struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DefaultConfig returns the default configuration of the core.
func DefaultConfig() *Config {
	return &Config{
		Port:   DefaultPort,
		Studio: "studio",
		Admin: AdminConfig{
			Name:  "Studio Admin",
			Email: "admin@studio.local",
		},
		Log: *logger.DefaultConfig(),
		SeedProjects: []string{
			"Villa Nordstrand",
			"Kontorbygg Aker Brygge",
		},
	}
}

// Validate returns an error if the configuration is unusable.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Port <= 0 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("invalid port: %d", c.Port))
	}
	if strings.TrimSpace(c.Studio) == "" {
		result = multierror.Append(result, fmt.Errorf("studio name must be set"))
	}
	if strings.TrimSpace(c.Admin.Email) == "" {
		result = multierror.Append(result, fmt.Errorf("admin email must be set"))
	}
	for _, err := range c.Log.Validate() {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
