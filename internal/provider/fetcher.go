package provider

import (
	"context"
	"time"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

const defaultPageSize = 50

// Fetcher provides utility methods for selecting merge requests to review
type Fetcher struct {
	provider model.CodeProvider
	bot      string
	log      logze.Logger
}

// NewFetcher creates a new MR fetcher instance
func NewFetcher(provider model.CodeProvider, botUsername string) *Fetcher {
	return &Fetcher{
		provider: provider,
		bot:      botUsername,
		log:      logze.With("component", "fetcher"),
	}
}

// FetchOpenMRs retrieves all open merge requests from a repository
func (f *Fetcher) FetchOpenMRs(ctx context.Context, projectID string) ([]*model.MergeRequest, error) {
	filter := &model.MergeRequestFilter{
		State: []string{"open", "opened"}, // both GitLab and GitHub terminology
		Limit: 100,
	}
	return f.provider.ListMergeRequests(ctx, projectID, filter)
}

// FetchRecentMRs retrieves open merge requests updated in the last specified duration
func (f *Fetcher) FetchRecentMRs(ctx context.Context, projectID string, since time.Duration) ([]*model.MergeRequest, error) {
	sinceTime := time.Now().Add(-since)
	filter := &model.MergeRequestFilter{
		State:        []string{"open", "opened"},
		UpdatedAfter: &sinceTime,
		Limit:        100,
	}
	return f.provider.ListMergeRequests(ctx, projectID, filter)
}

// HasPriorReview reports whether the configured bot already commented on the
// merge request. Without a bot username every MR counts as unreviewed.
func (f *Fetcher) HasPriorReview(ctx context.Context, projectID string, mrIID int) (bool, error) {
	if f.bot == "" {
		return false, nil
	}

	comments, err := f.provider.GetComments(ctx, projectID, mrIID)
	if err != nil {
		return false, errm.Wrap(err, "failed to get comments")
	}

	for _, comment := range comments {
		if comment.Author.Username == f.bot {
			return true, nil
		}
	}

	return false, nil
}

// BatchProcessMRs walks merge requests page by page and applies the processor
// to each one. Processor errors are logged, not fatal.
func (f *Fetcher) BatchProcessMRs(ctx context.Context, projectID string, filter *model.MergeRequestFilter, processor func(*model.MergeRequest) error) error {
	if filter.Limit == 0 {
		filter.Limit = defaultPageSize
	}

	page := 0
	for {
		filter.Page = page
		mrs, err := f.provider.ListMergeRequests(ctx, projectID, filter)
		if err != nil {
			return errm.Wrap(err, "failed to fetch merge requests")
		}

		if len(mrs) == 0 {
			break
		}

		f.log.Debug("processing MR batch", "count", len(mrs), "page", page)

		for _, mr := range mrs {
			if err := processor(mr); err != nil {
				f.log.Error("failed to process merge request",
					"mr_iid", mr.IID,
					"error", err)
			}
		}

		if len(mrs) < filter.Limit {
			break
		}

		page++
	}
	return nil
}
