package agent

import (
	"context"
	"testing"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(cfg Config, api model.AgentAPI) *Agent {
	return &Agent{cfg: cfg, api: api, log: logze.With("component", "test")}
}

type fakeAPI struct {
	lastRequest model.APIRequest
	response    model.APIResponse
	err         error
	structured  bool
}

func (f *fakeAPI) CallAPI(ctx context.Context, req model.APIRequest) (model.APIResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return model.APIResponse{}, f.err
	}
	return f.response, nil
}

func (f *fakeAPI) SupportsStructuredOutput() bool { return f.structured }

func TestAgentInvokeMessageSplitting(t *testing.T) {
	api := &fakeAPI{
		structured: true,
		response:   model.APIResponse{Content: `{"comments": []}`},
	}
	a := newTestAgent(Config{Type: OpenAI, MaxTokens: 4000, Temperature: 0.2}, api)

	out, err := a.Invoke(context.Background(), []model.Message{
		{Role: model.RoleSystem, Content: "You are a reviewer."},
		{Role: model.RoleUser, Content: "First chunk."},
		{Role: model.RoleUser, Content: "Second chunk."},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"comments": []}`, out)

	assert.Equal(t, "You are a reviewer.", api.lastRequest.SystemPrompt)
	assert.Equal(t, "First chunk.\n\nSecond chunk.", api.lastRequest.Prompt)
	assert.Equal(t, 4000, api.lastRequest.MaxTokens)
	assert.Equal(t, "application/json", api.lastRequest.ResponseType)
}

func TestAgentInvokePlainTextForLegacyAgents(t *testing.T) {
	api := &fakeAPI{
		structured: false,
		response:   model.APIResponse{Content: "looks fine"},
	}
	a := newTestAgent(Config{Type: Claude}, api)

	_, err := a.Invoke(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "Review this."},
	})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", api.lastRequest.ResponseType)
	assert.False(t, a.SupportsStructuredOutput())
}

func TestAgentInvokeEmptyResponse(t *testing.T) {
	a := newTestAgent(Config{Type: Gemini}, &fakeAPI{})

	_, err := a.Invoke(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "Review this."},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestAgentInvokeAPIError(t *testing.T) {
	a := newTestAgent(Config{Type: Gemini}, &fakeAPI{err: errm.New("rate limit exceeded")})

	_, err := a.Invoke(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: "Review this."},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestConfigPrepareAndValidate(t *testing.T) {
	cfg := Config{Type: OpenAI, APIKey: "key"}
	require.NoError(t, cfg.PrepareAndValidate())

	assert.NotZero(t, cfg.Temperature)
	assert.NotZero(t, cfg.MaxTokens)
	assert.NotZero(t, cfg.Timeout)

	bad := Config{Type: "unknown", APIKey: "key"}
	assert.Error(t, bad.PrepareAndValidate())

	noKey := Config{Type: OpenAI}
	assert.Error(t, noKey.PrepareAndValidate())
}
