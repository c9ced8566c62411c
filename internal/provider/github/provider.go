package github

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/oauth2"
)

var _ model.CodeProvider = (*Provider)(nil)

const (
	defaultBaseURL = "https://github.com"
)

// Provider implements the CodeProvider interface for GitHub
type Provider struct {
	client *github.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitHub provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitHub token is required")
	}
	log := logze.With("provider", "github")

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: config.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)

	// GitHub Enterprise
	if config.BaseURL != "" && config.BaseURL != defaultBaseURL {
		var err error
		client, err = github.NewClient(tc).WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
	}

	return &Provider{
		client: client,
		config: config,
		logger: log,
	}, nil
}

// ValidateWebhook validates the GitHub webhook signature
func (p *Provider) ValidateWebhook(payload []byte, signature string) error {
	if p.config.WebhookSecret == "" {
		return nil // no secret configured, skip validation
	}

	// GitHub signature format: "sha256=<signature>"
	if !strings.HasPrefix(signature, "sha256=") {
		return errm.New("invalid GitHub signature format")
	}
	expectedSignature := strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(p.config.WebhookSecret))
	mac.Write(payload)
	calculatedSignature := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expectedSignature), []byte(calculatedSignature)) {
		return errm.New("GitHub webhook signature verification failed")
	}

	return nil
}

// ParseWebhookEvent parses a GitHub webhook event
func (p *Provider) ParseWebhookEvent(payload []byte) (*model.CodeEvent, error) {
	var body githubPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errm.Wrap(err, "failed to parse GitHub webhook payload")
	}

	event := &model.CodeEvent{
		Type:      "pull_request",
		Action:    body.Action,
		ProjectID: body.Repository.FullName, // GitHub uses "owner/repo" format
		User: &model.User{
			ID:       strconv.Itoa(body.Sender.ID),
			Username: body.Sender.Login,
			Name:     body.Sender.Name,
		},
		MergeRequest: &model.MergeRequest{
			ID:           strconv.Itoa(body.PullRequest.ID),
			IID:          body.PullRequest.Number,
			Title:        body.PullRequest.Title,
			Description:  body.PullRequest.Body,
			SourceBranch: body.PullRequest.Head.Ref,
			TargetBranch: body.PullRequest.Base.Ref,
			URL:          body.PullRequest.HTMLURL,
			State:        body.PullRequest.State,
			SHA:          body.PullRequest.Head.SHA,
			Author: model.User{
				ID:       strconv.Itoa(body.PullRequest.User.ID),
				Username: body.PullRequest.User.Login,
				Name:     body.PullRequest.User.Name,
			},
		},
	}

	return event, nil
}

// IsMergeRequestEvent determines if a webhook event is a pull request event that should be processed
func (p *Provider) IsMergeRequestEvent(event *model.CodeEvent) bool {
	if event.Type != "pull_request" {
		p.logger.Debug("ignoring non-pull request event", "event_type", event.Type)
		return false
	}

	relevantActions := []string{
		"opened",
		"reopened",
		"synchronize",
		"ready_for_review",
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

// GetMergeRequest retrieves detailed information about a pull request
func (p *Provider) GetMergeRequest(ctx context.Context, projectID string, mrIID int) (*model.MergeRequest, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	pr, _, err := p.client.PullRequests.Get(ctx, owner, repo, mrIID)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get pull request from GitHub")
	}

	return convertPullRequest(pr), nil
}

// GetMergeRequestDiffs retrieves the file diffs for a pull request
func (p *Provider) GetMergeRequestDiffs(ctx context.Context, projectID string, mrIID int) ([]*model.FileDiff, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	opts := &github.ListOptions{PerPage: 100}
	var allFiles []*github.CommitFile

	for {
		files, resp, err := p.client.PullRequests.ListFiles(ctx, owner, repo, mrIID, opts)
		if err != nil {
			return nil, errm.Wrap(err, "failed to list pull request files")
		}

		allFiles = append(allFiles, files...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	var fileDiffs []*model.FileDiff
	for _, file := range allFiles {
		fileDiff := &model.FileDiff{
			OldPath:   file.GetPreviousFilename(),
			NewPath:   file.GetFilename(),
			Diff:      file.GetPatch(),
			Additions: file.GetAdditions(),
			Deletions: file.GetDeletions(),
			IsNew:     file.GetStatus() == "added",
			IsDeleted: file.GetStatus() == "removed",
			IsRenamed: file.GetStatus() == "renamed",
			IsBinary:  file.GetPatch() == "" && file.GetStatus() != "removed" && file.GetStatus() != "added",
		}

		if fileDiff.OldPath == "" {
			fileDiff.OldPath = fileDiff.NewPath
		}

		fileDiffs = append(fileDiffs, fileDiff)
	}

	return fileDiffs, nil
}

// ListMergeRequests retrieves multiple pull requests based on filter criteria
func (p *Provider) ListMergeRequests(ctx context.Context, projectID string, filter *model.MergeRequestFilter) ([]*model.MergeRequest, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	opts := &github.PullRequestListOptions{
		ListOptions: github.ListOptions{
			Page:    filter.Page + 1, // GitHub uses 1-based pagination
			PerPage: filter.Limit,
		},
	}

	if len(filter.State) > 0 {
		// GitHub uses "open", "closed", "all"
		opts.State = filter.State[0]
	}
	if filter.TargetBranch != "" {
		opts.Base = filter.TargetBranch
	}

	prs, _, err := p.client.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, errm.Wrap(err, "failed to list pull requests")
	}

	var result []*model.MergeRequest
	for _, pr := range prs {
		// GitHub list API has no author filter, apply it afterwards
		if filter.AuthorID != "" && strconv.FormatInt(pr.GetUser().GetID(), 10) != filter.AuthorID {
			continue
		}
		if filter.UpdatedAfter != nil && pr.GetUpdatedAt().Time.Before(*filter.UpdatedAfter) {
			continue
		}
		result = append(result, convertPullRequest(pr))
	}

	return result, nil
}

// CreateComment creates a comment on a pull request. Inline comments become
// review comments anchored to a line of the diff, summary comments become
// plain issue comments.
func (p *Provider) CreateComment(ctx context.Context, projectID string, mrIID int, comment *model.Comment) error {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return err
	}

	if comment.Type == model.CommentTypeInline && comment.FilePath != "" && comment.Line > 0 {
		// Review comments need the head commit SHA to anchor the position
		pr, _, err := p.client.PullRequests.Get(ctx, owner, repo, mrIID)
		if err != nil {
			return errm.Wrap(err, "failed to get pull request head")
		}

		reviewComment := &github.PullRequestComment{
			Body:     github.String(comment.Body),
			Path:     github.String(comment.FilePath),
			Line:     github.Int(comment.Line),
			Side:     github.String("RIGHT"),
			CommitID: pr.Head.SHA,
		}

		created, _, err := p.client.PullRequests.CreateComment(ctx, owner, repo, mrIID, reviewComment)
		if err != nil {
			return errm.Wrap(err, "failed to create pull request review comment")
		}

		comment.ID = strconv.FormatInt(created.GetID(), 10)
		return nil
	}

	issueComment := &github.IssueComment{
		Body: github.String(comment.Body),
	}

	created, _, err := p.client.Issues.CreateComment(ctx, owner, repo, mrIID, issueComment)
	if err != nil {
		return errm.Wrap(err, "failed to create pull request comment")
	}

	comment.ID = strconv.FormatInt(created.GetID(), 10)
	return nil
}

// GetComments retrieves all comments for a pull request, both the issue-level
// ones and the inline review comments.
func (p *Provider) GetComments(ctx context.Context, projectID string, mrIID int) ([]*model.Comment, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	var result []*model.Comment

	issueOpts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := p.client.Issues.ListComments(ctx, owner, repo, mrIID, issueOpts)
		if err != nil {
			return nil, errm.Wrap(err, "failed to list pull request comments")
		}

		for _, comment := range comments {
			result = append(result, &model.Comment{
				ID:   strconv.FormatInt(comment.GetID(), 10),
				Type: model.CommentTypeSummary,
				Body: comment.GetBody(),
				Author: model.User{
					ID:       strconv.FormatInt(comment.GetUser().GetID(), 10),
					Username: comment.GetUser().GetLogin(),
					Name:     comment.GetUser().GetName(),
				},
			})
		}

		if resp.NextPage == 0 {
			break
		}
		issueOpts.Page = resp.NextPage
	}

	reviewOpts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := p.client.PullRequests.ListComments(ctx, owner, repo, mrIID, reviewOpts)
		if err != nil {
			return nil, errm.Wrap(err, "failed to list pull request review comments")
		}

		for _, comment := range comments {
			result = append(result, &model.Comment{
				ID:       strconv.FormatInt(comment.GetID(), 10),
				Type:     model.CommentTypeInline,
				FilePath: comment.GetPath(),
				Line:     comment.GetLine(),
				Body:     comment.GetBody(),
				Author: model.User{
					ID:       strconv.FormatInt(comment.GetUser().GetID(), 10),
					Username: comment.GetUser().GetLogin(),
					Name:     comment.GetUser().GetName(),
				},
			})
		}

		if resp.NextPage == 0 {
			break
		}
		reviewOpts.Page = resp.NextPage
	}

	return result, nil
}

// GetCurrentUser retrieves information about the current authenticated user
func (p *Provider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	user, _, err := p.client.Users.Get(ctx, "")
	if err != nil {
		return nil, errm.Wrap(err, "failed to get current user")
	}

	return &model.User{
		ID:       strconv.FormatInt(user.GetID(), 10),
		Username: user.GetLogin(),
		Name:     user.GetName(),
	}, nil
}

func convertPullRequest(pr *github.PullRequest) *model.MergeRequest {
	return &model.MergeRequest{
		ID:           strconv.FormatInt(pr.GetID(), 10),
		IID:          pr.GetNumber(),
		Title:        pr.GetTitle(),
		Description:  pr.GetBody(),
		SourceBranch: pr.GetHead().GetRef(),
		TargetBranch: pr.GetBase().GetRef(),
		URL:          pr.GetHTMLURL(),
		State:        pr.GetState(),
		SHA:          pr.GetHead().GetSHA(),
		Author: model.User{
			ID:       strconv.FormatInt(pr.GetUser().GetID(), 10),
			Username: pr.GetUser().GetLogin(),
			Name:     pr.GetUser().GetName(),
		},
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
	}
}

func splitProjectID(projectID string) (owner, repo string, err error) {
	parts := strings.Split(projectID, "/")
	if len(parts) != 2 {
		return "", "", errm.New("invalid GitHub project ID format, expected 'owner/repo'")
	}
	return parts[0], parts[1], nil
}
