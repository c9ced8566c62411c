package app

import (
	"context"
	"fmt"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/critiq/internal/agent"
	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/critiq/internal/provider"
	"github.com/maxbolgarin/critiq/internal/reviewer"
	"github.com/maxbolgarin/critiq/internal/server"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

// Critiq is the main service that wires the provider, the agent and the
// review orchestrator together. It is the only place that posts comments.
type Critiq struct {
	provider model.CodeProvider
	agent    *agent.Agent
	reviewer *reviewer.Reviewer
	server   *server.Server
	fetcher  *provider.Fetcher

	// inFlight guards against reviewing the same MR revision twice when
	// a provider delivers duplicate webhooks
	inFlight *abstract.SafeMap[string, struct{}]

	cfg Config
	log logze.Logger
}

// New creates a new code review service
func New(ctx contem.Context, cfg Config) (*Critiq, error) {
	service := &Critiq{
		cfg:      cfg,
		inFlight: abstract.NewSafeMap[string, struct{}](),
		log:      logze.With("component", "app"),
	}

	if err := service.init(ctx, cfg); err != nil {
		return nil, errm.Wrap(err, "failed to initialize service")
	}

	return service, nil
}

// StartWebhook starts the webhook server
func (s *Critiq) StartWebhook(ctx context.Context) error {
	if err := s.server.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start webhook server")
	}
	return nil
}

// RunReview reviews all open merge requests of a project once. MRs the bot
// already commented on are skipped, per-MR failures are logged and do not
// stop the run.
func (s *Critiq) RunReview(ctx context.Context, projectID string) error {
	mrs, err := s.fetcher.FetchOpenMRs(ctx, projectID)
	if err != nil {
		return errm.Wrap(err, "failed to fetch open merge requests")
	}

	s.log.Info("reviewing open merge requests", "project_id", projectID, "count", len(mrs))

	for _, mr := range mrs {
		reviewed, err := s.fetcher.HasPriorReview(ctx, projectID, mr.IID)
		if err != nil {
			s.log.Error("failed to check prior review", "mr_iid", mr.IID, "error", err)
			continue
		}
		if reviewed {
			s.log.Debug("skipping already reviewed merge request", "mr_iid", mr.IID)
			continue
		}

		if err := s.reviewAndPost(ctx, projectID, mr); err != nil {
			s.log.Error("failed to review merge request", "mr_iid", mr.IID, "error", err)
		}
	}

	return nil
}

// handleEvent is the webhook entry point: it reviews the MR from the event
func (s *Critiq) handleEvent(ctx context.Context, event *model.CodeEvent) error {
	if event.MergeRequest == nil {
		return errm.New("event has no merge request")
	}
	return s.reviewAndPost(ctx, event.ProjectID, event.MergeRequest)
}

func (s *Critiq) reviewAndPost(ctx context.Context, projectID string, mr *model.MergeRequest) error {
	key := fmt.Sprintf("%s/%d@%s", projectID, mr.IID, mr.SHA)
	if _, ok := s.inFlight.Lookup(key); ok {
		s.log.Debug("review already in progress", "mr_iid", mr.IID)
		return nil
	}
	s.inFlight.Set(key, struct{}{})
	defer s.inFlight.Delete(key)

	diffs, err := s.provider.GetMergeRequestDiffs(ctx, projectID, mr.IID)
	if err != nil {
		return errm.Wrap(err, "failed to get merge request diffs")
	}

	comments, err := s.reviewer.Review(ctx, diffs)
	if err != nil {
		return errm.Wrap(err, "failed to review changes")
	}

	posted := 0
	for _, comment := range comments {
		if err := s.provider.CreateComment(ctx, projectID, mr.IID, comment); err != nil {
			s.log.Error("failed to post comment",
				"mr_iid", mr.IID,
				"file", comment.FilePath,
				"line", comment.Line,
				"error", err)
			continue
		}
		posted++
	}

	s.log.Info("merge request reviewed",
		"mr_iid", mr.IID,
		"title", mr.Title,
		"comments", posted)

	return nil
}

func (s *Critiq) init(ctx contem.Context, cfg Config) (err error) {
	s.provider, err = provider.New(cfg.Provider)
	if err != nil {
		return errm.Wrap(err, "failed to create VCS provider")
	}

	// Prior-review detection needs to know which comments are ours
	botUsername := cfg.Provider.BotUsername
	if botUsername == "" {
		user, err := s.provider.GetCurrentUser(ctx)
		if err != nil {
			s.log.Warn("failed to get current user, prior reviews won't be detected", "error", err)
		} else {
			botUsername = user.Username
		}
	}
	s.fetcher = provider.NewFetcher(s.provider, botUsername)

	s.agent, err = agent.New(ctx, cfg.Agent)
	if err != nil {
		return errm.Wrap(err, "failed to create AI agent")
	}

	s.reviewer, err = reviewer.New(cfg.Reviewer, s.agent)
	if err != nil {
		return errm.Wrap(err, "failed to create review service")
	}

	s.server, err = server.New(cfg.Server, s.provider, s.handleEvent)
	if err != nil {
		return errm.Wrap(err, "failed to create webhook server")
	}
	ctx.Add(s.server.Stop)

	return nil
}
