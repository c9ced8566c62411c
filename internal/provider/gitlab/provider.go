package gitlab

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	defaultBaseURL = "https://gitlab.com"
)

var _ model.CodeProvider = (*Provider)(nil)

// Provider implements the CodeProvider interface for GitLab
type Provider struct {
	client *gitlab.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitLab provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitLab token is required")
	}
	logger := logze.With("provider", "gitlab")

	baseURL := lang.Check(config.BaseURL, defaultBaseURL)

	client, err := gitlab.NewClient(config.Token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, errm.Wrap(err, "failed to create GitLab client")
	}

	return &Provider{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// ValidateWebhook validates the webhook token.
// GitLab sends the configured secret verbatim in X-Gitlab-Token.
func (p *Provider) ValidateWebhook(payload []byte, token string) error {
	if p.config.WebhookSecret == "" {
		return nil // no secret configured, skip validation
	}

	if token != p.config.WebhookSecret {
		return errm.New("invalid webhook token")
	}

	return nil
}

// ParseWebhookEvent parses a GitLab webhook event
func (p *Provider) ParseWebhookEvent(payload []byte) (*model.CodeEvent, error) {
	var body gitlabPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errm.Wrap(err, "failed to parse GitLab webhook payload")
	}

	event := &model.CodeEvent{
		Type:      body.ObjectKind,
		Action:    body.ObjectAttributes.Action,
		ProjectID: strconv.Itoa(body.Project.ID),
		User: &model.User{
			ID:       strconv.Itoa(body.User.ID),
			Username: body.User.Username,
			Name:     body.User.Name,
		},
		MergeRequest: &model.MergeRequest{
			ID:           strconv.Itoa(body.ObjectAttributes.IID),
			IID:          body.ObjectAttributes.IID,
			Title:        body.ObjectAttributes.Title,
			Description:  body.ObjectAttributes.Description,
			SourceBranch: body.ObjectAttributes.SourceBranch,
			TargetBranch: body.ObjectAttributes.TargetBranch,
			URL:          body.ObjectAttributes.URL,
			State:        body.ObjectAttributes.State,
			SHA:          body.ObjectAttributes.LastCommit.ID,
		},
	}

	return event, nil
}

// IsMergeRequestEvent determines if a webhook event is a merge request event that should be processed
func (p *Provider) IsMergeRequestEvent(event *model.CodeEvent) bool {
	if event.Type != "merge_request" {
		return false
	}

	relevantActions := []string{
		"open",
		"reopen",
		"update",
	}
	if !slices.Contains(relevantActions, event.Action) {
		p.logger.Debug("ignoring irrelevant action", "action", event.Action)
		return false
	}

	// Don't process events from the bot itself to avoid loops
	if event.User != nil && event.User.Username == p.config.BotUsername {
		p.logger.Debug("ignoring event from bot user")
		return false
	}

	return true
}

// GetMergeRequest retrieves detailed information about a merge request
func (p *Provider) GetMergeRequest(ctx context.Context, projectID string, mrIID int) (*model.MergeRequest, error) {
	projectIDInt, err := strconv.Atoi(projectID)
	if err != nil {
		return nil, errm.Wrap(err, "invalid project ID")
	}

	mr, _, err := p.client.MergeRequests.GetMergeRequest(projectIDInt, mrIID, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, errm.Wrap(err, "failed to get merge request from GitLab")
	}

	return convertMergeRequest(&mr.BasicMergeRequest), nil
}

// GetMergeRequestDiffs retrieves the file diffs for a merge request
func (p *Provider) GetMergeRequestDiffs(ctx context.Context, projectID string, mrIID int) ([]*model.FileDiff, error) {
	projectIDInt, err := strconv.Atoi(projectID)
	if err != nil {
		return nil, errm.Wrap(err, "invalid project ID")
	}

	var allDiffs []*gitlab.MergeRequestDiff
	page := 1

	for {
		opts := &gitlab.ListMergeRequestDiffsOptions{
			ListOptions: gitlab.ListOptions{
				Page: page,
			},
		}

		diffs, resp, err := p.client.MergeRequests.ListMergeRequestDiffs(projectIDInt, mrIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, errm.Wrap(err, "failed to list merge request diffs")
		}

		allDiffs = append(allDiffs, diffs...)

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	var fileDiffs []*model.FileDiff
	for _, diff := range allDiffs {
		fileDiff := &model.FileDiff{
			OldPath:   diff.OldPath,
			NewPath:   diff.NewPath,
			Diff:      diff.Diff,
			IsNew:     diff.NewFile,
			IsDeleted: diff.DeletedFile,
			IsRenamed: diff.RenamedFile,
			IsBinary:  diff.Diff == "" && !diff.DeletedFile && !diff.NewFile, // heuristic for binary files
		}
		fileDiffs = append(fileDiffs, fileDiff)
	}

	return fileDiffs, nil
}

// ListMergeRequests retrieves multiple merge requests based on filter criteria
func (p *Provider) ListMergeRequests(ctx context.Context, projectID string, filter *model.MergeRequestFilter) ([]*model.MergeRequest, error) {
	projectIDInt, err := strconv.Atoi(projectID)
	if err != nil {
		return nil, errm.Wrap(err, "invalid project ID")
	}

	opts := &gitlab.ListProjectMergeRequestsOptions{
		ListOptions: gitlab.ListOptions{
			Page:    filter.Page + 1, // GitLab uses 1-based pagination
			PerPage: filter.Limit,
		},
	}

	if len(filter.State) > 0 {
		// GitLab uses "opened", "closed", "merged"
		state := filter.State[0]
		if state == "open" {
			state = "opened"
		}
		opts.State = &state
	}
	if filter.TargetBranch != "" {
		opts.TargetBranch = &filter.TargetBranch
	}
	if filter.AuthorID != "" {
		authorIDInt, err := strconv.Atoi(filter.AuthorID)
		if err == nil {
			opts.AuthorID = &authorIDInt
		}
	}
	if filter.UpdatedAfter != nil {
		opts.UpdatedAfter = filter.UpdatedAfter
	}

	mrs, _, err := p.client.MergeRequests.ListProjectMergeRequests(projectIDInt, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, errm.Wrap(err, "failed to list merge requests")
	}

	result := make([]*model.MergeRequest, 0, len(mrs))
	for _, mr := range mrs {
		result = append(result, convertMergeRequest(mr))
	}

	return result, nil
}

// CreateComment creates a discussion on a merge request. Inline comments are
// anchored to a line of the new file through a diff position, summary
// comments become plain discussions.
func (p *Provider) CreateComment(ctx context.Context, projectID string, mrIID int, comment *model.Comment) error {
	projectIDInt, err := strconv.Atoi(projectID)
	if err != nil {
		return errm.Wrap(err, "invalid project ID")
	}

	opts := &gitlab.CreateMergeRequestDiscussionOptions{
		Body: &comment.Body,
	}

	if comment.Type == model.CommentTypeInline && comment.FilePath != "" && comment.Line > 0 {
		// Positioned discussions need the SHAs of the latest diff version
		versions, _, err := p.client.MergeRequests.GetMergeRequestDiffVersions(projectIDInt, mrIID, nil, gitlab.WithContext(ctx))
		if err != nil {
			return errm.Wrap(err, "failed to get merge request diff versions")
		}
		if len(versions) == 0 {
			return errm.New("merge request has no diff versions")
		}
		latest := versions[0]

		opts.Position = &gitlab.PositionOptions{
			BaseSHA:      &latest.BaseCommitSHA,
			StartSHA:     &latest.StartCommitSHA,
			HeadSHA:      &latest.HeadCommitSHA,
			PositionType: gitlab.Ptr("text"),
			NewPath:      &comment.FilePath,
			NewLine:      &comment.Line,
		}
	}

	discussion, _, err := p.client.Discussions.CreateMergeRequestDiscussion(projectIDInt, mrIID, opts, gitlab.WithContext(ctx))
	if err != nil {
		return errm.Wrap(err, "failed to create merge request discussion")
	}

	comment.ID = discussion.ID
	return nil
}

// GetComments retrieves all comments for a merge request
func (p *Provider) GetComments(ctx context.Context, projectID string, mrIID int) ([]*model.Comment, error) {
	projectIDInt, err := strconv.Atoi(projectID)
	if err != nil {
		return nil, errm.Wrap(err, "invalid project ID")
	}

	discussions, _, err := p.client.Discussions.ListMergeRequestDiscussions(projectIDInt, mrIID, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, errm.Wrap(err, "failed to get discussions from GitLab")
	}

	var allComments []*model.Comment
	for _, discussion := range discussions {
		for _, note := range discussion.Notes {
			comment := &model.Comment{
				ID:   strconv.Itoa(note.ID),
				Type: model.CommentTypeSummary,
				Body: note.Body,
				Author: model.User{
					ID:       strconv.Itoa(note.Author.ID),
					Username: note.Author.Username,
					Name:     note.Author.Name,
				},
			}

			if note.Position != nil && note.Position.NewPath != "" {
				comment.Type = model.CommentTypeInline
				comment.FilePath = note.Position.NewPath
				comment.Line = note.Position.NewLine
			}

			allComments = append(allComments, comment)
		}
	}

	return allComments, nil
}

// GetCurrentUser retrieves information about the current authenticated user
func (p *Provider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	user, _, err := p.client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		return nil, errm.Wrap(err, "failed to get current user")
	}

	return &model.User{
		ID:       strconv.Itoa(user.ID),
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

func convertMergeRequest(mr *gitlab.BasicMergeRequest) *model.MergeRequest {
	out := &model.MergeRequest{
		ID:           strconv.Itoa(mr.ID),
		IID:          mr.IID,
		Title:        mr.Title,
		Description:  mr.Description,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		URL:          mr.WebURL,
		State:        mr.State,
		SHA:          mr.SHA,
		CreatedAt:    lang.Deref(mr.CreatedAt),
		UpdatedAt:    lang.Deref(mr.UpdatedAt),
	}
	if mr.Author != nil {
		out.Author = model.User{
			ID:       strconv.Itoa(mr.Author.ID),
			Username: mr.Author.Username,
			Name:     mr.Author.Name,
		}
	}
	return out
}
