package agent

import (
	"context"
	"strings"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/critiq/internal/agent/claude"
	"github.com/maxbolgarin/critiq/internal/agent/gemini"
	"github.com/maxbolgarin/critiq/internal/agent/openai"
	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
)

var _ model.ReviewAgent = (*Agent)(nil)

// Agent is the model-invocation facade: it turns role-tagged messages into a
// single API call against the configured provider adapter. Timeout handling
// lives in the underlying HTTP client; failures are returned as-is, no retry.
type Agent struct {
	cfg Config
	api model.AgentAPI
	log logze.Logger
}

func New(ctx context.Context, cfg Config) (*Agent, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}
	cli, err := cliex.NewWithConfig(cliex.Config{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		ProxyAddress:   cfg.ProxyURL,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to create HTTP client")
	}

	agent := &Agent{
		cfg: cfg,
		log: logze.With("component", "agent", "type", string(cfg.Type)),
	}

	modelCfg := model.ModelConfig{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		URL:      cfg.BaseURL,
		ProxyURL: cfg.ProxyURL,
		IsTest:   cfg.IsTest,
	}

	switch cfg.Type {
	case Gemini:
		agent.api, err = gemini.New(ctx, modelCfg)
	case OpenAI:
		agent.api, err = openai.New(ctx, cli, modelCfg)
	case Claude:
		agent.api, err = claude.New(ctx, cli, modelCfg)
	default:
		return nil, errm.Errorf("unsupported agent type: %s", cfg.Type)
	}
	if err != nil {
		return nil, errm.Wrap(err, "failed to create agent")
	}

	return agent, nil
}

// Invoke sends the messages to the model and returns the raw text response.
// System messages become the system prompt, the rest are joined into the
// user prompt in order.
func (a *Agent) Invoke(ctx context.Context, messages []model.Message) (string, error) {
	var system, user strings.Builder
	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)
			continue
		}
		if user.Len() > 0 {
			user.WriteString("\n\n")
		}
		user.WriteString(msg.Content)
	}

	response, err := a.api.CallAPI(ctx, model.APIRequest{
		Prompt:       user.String(),
		SystemPrompt: system.String(),
		MaxTokens:    a.cfg.MaxTokens,
		Temperature:  a.cfg.Temperature,
		ResponseType: lang.If(a.api.SupportsStructuredOutput(), "application/json", "text/plain"),
	})
	if err != nil {
		return "", errm.Wrap(err, "failed to call API")
	}

	if response.Content == "" {
		return "", errm.New("empty response from API")
	}

	a.log.Debug("model responded",
		"prompt_tokens", response.PromptTokens,
		"completion_tokens", response.CompletionTokens,
	)

	return response.Content, nil
}

// SupportsStructuredOutput reports whether the underlying adapter can be
// constrained to the JSON review schema.
func (a *Agent) SupportsStructuredOutput() bool {
	return a.api.SupportsStructuredOutput()
}

func (a *Agent) Name() string {
	return string(a.cfg.Type)
}
