package reviewer

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/maxbolgarin/critiq/internal/model"
)

// minConfidence is the fixed confidence floor below which structured comments
// are discarded. Not configurable.
const minConfidence = 0.6

// severityRank orders the 4-level model severities, lower index = more severe.
var severityRank = map[model.ReviewSeverity]int{
	model.ReviewSeverityCritical:   0,
	model.ReviewSeverityWarning:    1,
	model.ReviewSeveritySuggestion: 2,
	model.ReviewSeverityNitpick:    3,
}

// normalizeComments converts a validated structured response into the final
// ordered comment list, applying the severity floor and the confidence floor.
// The two filters are independent; a comment must pass both.
//
// A non-empty summary is emitted first, tagged with the configured severity
// threshold and never filtered.
func normalizeComments(resp *model.StructuredReviewResponse, cfg model.ReviewConfig) []*model.Comment {
	comments := make([]*model.Comment, 0, len(resp.Comments)+1)

	if resp.Summary != "" {
		comments = append(comments, &model.Comment{
			Type:     model.CommentTypeSummary,
			Body:     resp.Summary,
			Severity: configuredSeverityTag(cfg.Severity),
		})
	}

	floor := severityFloor(cfg.Severity)
	for _, sc := range resp.Comments {
		if severityRank[sc.Severity] > floor {
			continue
		}
		if sc.Confidence < minConfidence {
			continue
		}
		comments = append(comments, &model.Comment{
			Type:     model.CommentTypeInline,
			FilePath: sc.File,
			Line:     sc.Line,
			Body:     renderCommentBody(sc),
			Severity: toCommentSeverity(sc.Severity),
		})
	}

	return comments
}

// severityFloor maps the configured 3-level minimum onto the 4-level rank.
// Unset or unrecognized values default to suggestion.
func severityFloor(configured string) int {
	switch model.CommentSeverity(configured) {
	case model.CommentSeverityError:
		return severityRank[model.ReviewSeverityCritical]
	case model.CommentSeverityWarning:
		return severityRank[model.ReviewSeverityWarning]
	case model.CommentSeveritySuggestion:
		return severityRank[model.ReviewSeveritySuggestion]
	}
	// The 4-level names are accepted too, so "nitpick" can disable filtering.
	if rank, ok := severityRank[model.ReviewSeverity(configured)]; ok {
		return rank
	}
	return severityRank[model.ReviewSeveritySuggestion]
}

func configuredSeverityTag(configured string) model.CommentSeverity {
	switch s := model.CommentSeverity(configured); s {
	case model.CommentSeverityError, model.CommentSeverityWarning, model.CommentSeveritySuggestion:
		return s
	}
	return model.CommentSeveritySuggestion
}

// toCommentSeverity collapses the 4-level model severity to the 3-level
// output scale: critical->error, warning->warning, the rest->suggestion.
func toCommentSeverity(s model.ReviewSeverity) model.CommentSeverity {
	switch s {
	case model.ReviewSeverityCritical:
		return model.CommentSeverityError
	case model.ReviewSeverityWarning:
		return model.CommentSeverityWarning
	default:
		return model.CommentSeveritySuggestion
	}
}

// renderCommentBody formats a structured comment as markdown: a bold header
// with the capitalized category and title, the confidence percentage, the
// explanation and an optional fenced suggestion snippet.
func renderCommentBody(sc model.StructuredComment) string {
	var b strings.Builder

	b.WriteString("**")
	b.WriteString(capitalize(string(sc.Category)))
	b.WriteString(": ")
	b.WriteString(sc.Title)
	b.WriteString("** (")
	b.WriteString(fmt.Sprintf("%d%% confidence", int(math.Round(sc.Confidence*100))))
	b.WriteString(")\n\n")
	b.WriteString(sc.Explanation)

	if sc.Suggestion != "" {
		b.WriteString("\n\n**Suggestion:**\n```")
		b.WriteString(codeLanguage(sc.File))
		b.WriteString("\n")
		b.WriteString(sc.Suggestion)
		b.WriteString("\n```")
	}

	return b.String()
}

// codeLanguage returns a markdown fence language tag for the file path,
// empty when the language is unknown.
func codeLanguage(filePath string) string {
	lang, _ := enry.GetLanguageByExtension(filePath)
	return strings.ToLower(strings.ReplaceAll(lang, " ", "-"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
