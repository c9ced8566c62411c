package reviewer

import (
	"testing"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structuredComment(severity model.ReviewSeverity, confidence float64) model.StructuredComment {
	return model.StructuredComment{
		File:        "main.go",
		Line:        10,
		Severity:    severity,
		Category:    model.ReviewCategoryBug,
		Confidence:  confidence,
		Title:       "Title",
		Explanation: "Explanation.",
	}
}

func TestNormalizeCommentsConfidenceFloor(t *testing.T) {
	resp := &model.StructuredReviewResponse{
		Comments: []model.StructuredComment{
			structuredComment(model.ReviewSeverityCritical, 0.6),
			structuredComment(model.ReviewSeverityCritical, 0.59),
			structuredComment(model.ReviewSeverityCritical, 1.0),
		},
	}

	comments := normalizeComments(resp, model.ReviewConfig{})
	require.Len(t, comments, 2)

	// Exactly 0.6 passes, anything below is dropped
	assert.Contains(t, comments[0].Body, "60% confidence")
	assert.Contains(t, comments[1].Body, "100% confidence")
}

func TestNormalizeCommentsSeverityFloor(t *testing.T) {
	resp := &model.StructuredReviewResponse{
		Comments: []model.StructuredComment{
			structuredComment(model.ReviewSeverityCritical, 0.9),
			structuredComment(model.ReviewSeverityWarning, 0.9),
			structuredComment(model.ReviewSeveritySuggestion, 0.9),
			structuredComment(model.ReviewSeverityNitpick, 0.9),
		},
	}

	tests := []struct {
		name       string
		configured string
		wantCount  int
	}{
		{"default keeps suggestion and above", "", 3},
		{"error keeps only critical", "error", 1},
		{"warning keeps two", "warning", 2},
		{"suggestion keeps three", "suggestion", 3},
		{"nitpick keeps everything", "nitpick", 4},
		{"unknown value falls back to suggestion", "whatever", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := normalizeComments(resp, model.ReviewConfig{Severity: tt.configured})
			assert.Len(t, comments, tt.wantCount)
		})
	}
}

func TestNormalizeCommentsSeverityMapping(t *testing.T) {
	resp := &model.StructuredReviewResponse{
		Comments: []model.StructuredComment{
			structuredComment(model.ReviewSeverityCritical, 0.9),
			structuredComment(model.ReviewSeverityWarning, 0.9),
			structuredComment(model.ReviewSeveritySuggestion, 0.9),
			structuredComment(model.ReviewSeverityNitpick, 0.9),
		},
	}

	comments := normalizeComments(resp, model.ReviewConfig{Severity: "nitpick"})
	require.Len(t, comments, 4)

	assert.Equal(t, model.CommentSeverityError, comments[0].Severity)
	assert.Equal(t, model.CommentSeverityWarning, comments[1].Severity)
	assert.Equal(t, model.CommentSeveritySuggestion, comments[2].Severity)
	assert.Equal(t, model.CommentSeveritySuggestion, comments[3].Severity)
}

func TestNormalizeCommentsSummary(t *testing.T) {
	resp := &model.StructuredReviewResponse{
		Summary: "One low-confidence finding.",
		Comments: []model.StructuredComment{
			structuredComment(model.ReviewSeverityCritical, 0.1),
		},
	}

	comments := normalizeComments(resp, model.ReviewConfig{Severity: "warning"})
	require.Len(t, comments, 1)

	// Summary always comes first and is never filtered
	assert.Equal(t, model.CommentTypeSummary, comments[0].Type)
	assert.Equal(t, "One low-confidence finding.", comments[0].Body)
	assert.Equal(t, model.CommentSeverityWarning, comments[0].Severity)
}

func TestNormalizeCommentsEmpty(t *testing.T) {
	comments := normalizeComments(&model.StructuredReviewResponse{}, model.ReviewConfig{})
	assert.Empty(t, comments)
}

func TestNormalizeCommentsIdempotent(t *testing.T) {
	resp := &model.StructuredReviewResponse{
		Summary: "Summary.",
		Comments: []model.StructuredComment{
			structuredComment(model.ReviewSeverityWarning, 0.8),
			structuredComment(model.ReviewSeverityNitpick, 0.9),
		},
	}
	cfg := model.ReviewConfig{Severity: "warning"}

	first := normalizeComments(resp, cfg)
	second := normalizeComments(resp, cfg)
	assert.Equal(t, first, second)
}

func TestRenderCommentBody(t *testing.T) {
	sc := model.StructuredComment{
		File:        "internal/db/conn.go",
		Line:        42,
		Severity:    model.ReviewSeverityCritical,
		Category:    model.ReviewCategoryBug,
		Confidence:  0.85,
		Title:       "Connection leak",
		Explanation: "The connection is never closed on the error path.",
		Suggestion:  "defer conn.Close()",
	}

	body := renderCommentBody(sc)

	assert.Contains(t, body, "**Bug: Connection leak** (85% confidence)")
	assert.Contains(t, body, "The connection is never closed on the error path.")
	assert.Contains(t, body, "**Suggestion:**\n```go\ndefer conn.Close()\n```")
}

func TestRenderCommentBodyNoSuggestion(t *testing.T) {
	sc := structuredComment(model.ReviewSeverityWarning, 0.7)

	body := renderCommentBody(sc)
	assert.NotContains(t, body, "Suggestion")
	assert.Contains(t, body, "**Bug: Title** (70% confidence)")
}

func TestCodeLanguage(t *testing.T) {
	assert.Equal(t, "go", codeLanguage("internal/db/conn.go"))
	assert.Equal(t, "python", codeLanguage("scripts/migrate.py"))
	assert.Equal(t, "", codeLanguage("data/file.unknownext"))
}
