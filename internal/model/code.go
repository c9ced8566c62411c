package model

import (
	"time"
)

// ProviderConfig represents provider-specific configuration
type ProviderConfig struct {
	BaseURL       string
	Token         string
	WebhookSecret string
	BotUsername   string
}

// User represents a user across different providers
type User struct {
	ID       string
	Username string
	Name     string
}

// MergeRequest represents a merge/pull request across different providers
type MergeRequest struct {
	ID           string
	IID          int
	Title        string
	Description  string
	SourceBranch string
	TargetBranch string
	Author       User
	URL          string
	State        string
	SHA          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FileDiff represents changes in a single file.
// Immutable once obtained from a provider: the annotator works on copies.
type FileDiff struct {
	OldPath   string
	NewPath   string
	Diff      string // unified diff for this file, empty when the provider reports no textual diff
	Additions int
	Deletions int
	IsNew     bool
	IsDeleted bool
	IsRenamed bool
	IsBinary  bool
}

// Status returns the change status of the file: added, deleted, renamed or modified.
func (f *FileDiff) Status() string {
	switch {
	case f.IsNew:
		return "added"
	case f.IsDeleted:
		return "deleted"
	case f.IsRenamed:
		return "renamed"
	default:
		return "modified"
	}
}

// CommentType defines the type of a normalized comment
type CommentType string

const (
	CommentTypeInline  CommentType = "inline"
	CommentTypeSummary CommentType = "summary"
)

// CommentSeverity is the coarse 3-level severity scale of posted comments.
// It is distinct from the 4-level ReviewSeverity the model responds with.
type CommentSeverity string

const (
	CommentSeverityError      CommentSeverity = "error"
	CommentSeverityWarning    CommentSeverity = "warning"
	CommentSeveritySuggestion CommentSeverity = "suggestion"
)

// Comment is a final normalized review comment, ready for posting.
// Never mutated after creation.
type Comment struct {
	ID       string
	Type     CommentType
	FilePath string // set for inline comments
	Line     int    // line number in the new file, set for inline comments
	Body     string
	Severity CommentSeverity // optional
	Author   User
}

// CodeEvent represents a webhook event from any provider
type CodeEvent struct {
	Type         string
	Action       string
	ProjectID    string
	MergeRequest *MergeRequest
	User         *User
	Timestamp    time.Time
}

// MergeRequestFilter represents criteria for filtering merge requests
type MergeRequestFilter struct {
	State        []string // e.g., "open", "closed", "merged"
	AuthorID     string
	TargetBranch string
	UpdatedAfter *time.Time
	Limit        int // maximum number of results (0 = no limit)
	Page         int // page number for pagination (0-based)
}
