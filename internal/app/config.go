package app

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/critiq/internal/agent"
	"github.com/maxbolgarin/critiq/internal/provider"
	"github.com/maxbolgarin/critiq/internal/reviewer"
	"github.com/maxbolgarin/critiq/internal/server"
	"github.com/maxbolgarin/errm"
)

// Config is the top-level service configuration
type Config struct {
	Server   server.Config   `yaml:"server"`
	Provider provider.Config `yaml:"provider"`
	Agent    agent.Config    `yaml:"agent"`
	Reviewer reviewer.Config `yaml:"reviewer"`
}

// LoadConfig reads configuration from the YAML file at path, environment
// variables override file values. Without a path only the environment is read.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, errm.Wrap(err, "failed to read config file")
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, errm.Wrap(err, "failed to read environment")
	}

	return cfg, nil
}
