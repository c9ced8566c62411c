package model

import (
	"context"
)

// ReviewAgent is the capability record the review orchestrator works with:
// a single invocation entry point plus a declared structured-output capability.
type ReviewAgent interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
	SupportsStructuredOutput() bool
	Name() string
}

// AgentAPI is the low-level transport implemented by provider-specific adapters
type AgentAPI interface {
	CallAPI(ctx context.Context, req APIRequest) (APIResponse, error)
	SupportsStructuredOutput() bool
}

// CodeProvider defines the interface for different VCS providers (GitLab, GitHub, etc.)
type CodeProvider interface {
	// Webhook handling
	ValidateWebhook(payload []byte, authToken string) error
	ParseWebhookEvent(payload []byte) (*CodeEvent, error)
	IsMergeRequestEvent(event *CodeEvent) bool

	// MR/PR operations
	GetMergeRequest(ctx context.Context, projectID string, mrIID int) (*MergeRequest, error)
	GetMergeRequestDiffs(ctx context.Context, projectID string, mrIID int) ([]*FileDiff, error)
	ListMergeRequests(ctx context.Context, projectID string, filter *MergeRequestFilter) ([]*MergeRequest, error)

	// Comments
	CreateComment(ctx context.Context, projectID string, mrIID int, comment *Comment) error
	GetComments(ctx context.Context, projectID string, mrIID int) ([]*Comment, error)

	// User operations
	GetCurrentUser(ctx context.Context) (*User, error)
}
