package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/logze/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prPayload = `{
	"action": "opened",
	"number": 7,
	"pull_request": {
		"id": 1001,
		"number": 7,
		"title": "Add retry logic",
		"body": "Retries transient failures.",
		"state": "open",
		"head": {"ref": "feature/retry", "sha": "abc123"},
		"base": {"ref": "main"},
		"html_url": "https://github.com/acme/svc/pull/7",
		"user": {"id": 5, "login": "alice", "name": "Alice"}
	},
	"repository": {"id": 9, "name": "svc", "full_name": "acme/svc"},
	"sender": {"id": 5, "login": "alice", "name": "Alice"}
}`

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestValidateWebhook(t *testing.T) {
	p := &Provider{config: model.ProviderConfig{WebhookSecret: "topsecret"}, logger: logze.With("provider", "github")}
	payload := []byte(prPayload)

	assert.NoError(t, p.ValidateWebhook(payload, signPayload("topsecret", payload)))
	assert.Error(t, p.ValidateWebhook(payload, signPayload("wrong", payload)))
	assert.Error(t, p.ValidateWebhook(payload, "not-a-signature"))

	// No secret configured means validation is skipped
	open := &Provider{config: model.ProviderConfig{}, logger: logze.With("provider", "github")}
	assert.NoError(t, open.ValidateWebhook(payload, ""))
}

func TestParseWebhookEvent(t *testing.T) {
	p := &Provider{logger: logze.With("provider", "github")}

	event, err := p.ParseWebhookEvent([]byte(prPayload))
	require.NoError(t, err)

	assert.Equal(t, "pull_request", event.Type)
	assert.Equal(t, "opened", event.Action)
	assert.Equal(t, "acme/svc", event.ProjectID)
	assert.Equal(t, "alice", event.User.Username)

	mr := event.MergeRequest
	require.NotNil(t, mr)
	assert.Equal(t, 7, mr.IID)
	assert.Equal(t, "Add retry logic", mr.Title)
	assert.Equal(t, "feature/retry", mr.SourceBranch)
	assert.Equal(t, "main", mr.TargetBranch)
	assert.Equal(t, "abc123", mr.SHA)

	_, err = p.ParseWebhookEvent([]byte("not json"))
	assert.Error(t, err)
}

func TestIsMergeRequestEvent(t *testing.T) {
	p := &Provider{config: model.ProviderConfig{BotUsername: "critiq-bot"}, logger: logze.With("provider", "github")}

	event := func(typ, action, user string) *model.CodeEvent {
		return &model.CodeEvent{
			Type:   typ,
			Action: action,
			User:   &model.User{Username: user},
		}
	}

	assert.True(t, p.IsMergeRequestEvent(event("pull_request", "opened", "alice")))
	assert.True(t, p.IsMergeRequestEvent(event("pull_request", "synchronize", "alice")))
	assert.False(t, p.IsMergeRequestEvent(event("pull_request", "closed", "alice")))
	assert.False(t, p.IsMergeRequestEvent(event("issue_comment", "created", "alice")))
	assert.False(t, p.IsMergeRequestEvent(event("pull_request", "opened", "critiq-bot")))
}

func TestSplitProjectID(t *testing.T) {
	owner, repo, err := splitProjectID("acme/svc")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "svc", repo)

	_, _, err = splitProjectID("justonepart")
	assert.Error(t, err)

	_, _, err = splitProjectID("a/b/c")
	assert.Error(t, err)
}
