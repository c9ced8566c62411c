package provider

import (
	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/critiq/internal/provider/github"
	"github.com/maxbolgarin/critiq/internal/provider/gitlab"
	"github.com/maxbolgarin/erro"
)

// New creates a new VCS provider based on the configuration
func New(cfg Config) (model.CodeProvider, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	cfgForProvider := model.ProviderConfig{
		BaseURL:       cfg.BaseURL,
		Token:         cfg.Token,
		WebhookSecret: cfg.WebhookSecret,
		BotUsername:   cfg.BotUsername,
	}

	var provider model.CodeProvider
	var err error

	switch cfg.Type {
	case GitLab:
		provider, err = gitlab.New(cfgForProvider)
	case GitHub:
		provider, err = github.New(cfgForProvider)
	default:
		return nil, erro.New("unsupported provider type: %s", cfg.Type)
	}
	if err != nil {
		return nil, erro.Wrap(err, "failed to create provider")
	}

	return provider, nil
}
