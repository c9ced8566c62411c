package reviewer

import (
	"context"
	"strings"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/critiq/internal/agent/prompts"
	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

const noFilesMessage = "No files to review after applying ignore patterns."

// Reviewer turns a set of file changes into a normalized comment list:
// filter ignored files, build the prompt over annotated diffs, invoke the
// model and interpret the response. It holds no per-call state and is safe
// for concurrent use. It never posts comments.
type Reviewer struct {
	agent model.ReviewAgent

	cfg Config
	log logze.Logger
}

// New creates a new reviewer
func New(cfg Config, agent model.ReviewAgent) (*Reviewer, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "failed to prepare and validate config")
	}

	return &Reviewer{
		agent: agent,
		cfg:   cfg,
		log:   logze.With("component", "reviewer"),
	}, nil
}

// Review reviews one change set and returns the final comment list.
// Transport failures are logged and propagated unchanged, without retry;
// malformed model output degrades to legacy parsing and never fails the call.
func (s *Reviewer) Review(ctx context.Context, changes []*model.FileDiff) ([]*model.Comment, error) {
	timer := abstract.StartTimer()

	files := filterIgnoredFiles(changes, s.cfg.Review.IgnoreFiles)
	if len(files) == 0 {
		s.logFlow("all files ignored, skipping model invocation", "total_files", len(changes))
		return []*model.Comment{{
			Type: model.CommentTypeSummary,
			Body: noFilesMessage,
		}}, nil
	}

	messages := prompts.BuildReviewMessages(AnnotateDiffs(files), s.cfg.Review)

	raw, err := s.agent.Invoke(ctx, messages)
	if err != nil {
		s.log.Error("model invocation failed", "agent", s.agent.Name(), "error", err)
		return nil, errm.Wrap(err, "model invocation failed")
	}

	comments := s.interpret(raw)

	s.logFlow("finished review",
		"agent", s.agent.Name(),
		"files", len(files),
		"comments", len(comments),
		"elapsed_time", timer.ElapsedTime().String(),
	)

	return comments, nil
}

// interpret dispatches the raw model response to structured or legacy
// parsing based on the agent's declared capability and the actual shape.
func (s *Reviewer) interpret(raw string) []*model.Comment {
	if !s.agent.SupportsStructuredOutput() || !looksStructured(raw) {
		return parseLegacyResponse(raw, s.cfg.Review.CommentStyle)
	}

	resp, err := parseStructuredResponse(raw)
	if err != nil {
		s.log.Warn("failed to parse structured response, falling back to legacy parsing",
			"agent", s.agent.Name(), "error", err)
		return parseLegacyResponse(raw, s.cfg.Review.CommentStyle)
	}

	return normalizeComments(resp, s.cfg.Review)
}

// filterIgnoredFiles removes files matching any of the ignore patterns.
// A "*.<ext>" pattern matches by suffix, any other pattern by exact filename
// equality; there are no directory-aware glob semantics beyond this.
func filterIgnoredFiles(changes []*model.FileDiff, patterns []string) []*model.FileDiff {
	if len(patterns) == 0 {
		return changes
	}

	filtered := make([]*model.FileDiff, 0, len(changes))
	for _, change := range changes {
		if !isIgnored(change.NewPath, patterns) {
			filtered = append(filtered, change)
		}
	}
	return filtered
}

func isIgnored(filename string, patterns []string) bool {
	for _, pattern := range patterns {
		if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") {
			if strings.HasSuffix(filename, ext) {
				return true
			}
			continue
		}
		if filename == pattern {
			return true
		}
	}
	return false
}

func (s *Reviewer) logFlow(msg string, fields ...any) {
	if s.cfg.Verbose {
		s.log.Info(msg, fields...)
	} else {
		s.log.Debug(msg, fields...)
	}
}
