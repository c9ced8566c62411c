package prompts

import (
	"testing"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReviewMessages(t *testing.T) {
	files := []*model.FileDiff{
		{
			NewPath: "internal/db/conn.go",
			Diff:    "@@ -1,1 +1,2 @@\n keep\n+added // line 2",
		},
		{
			NewPath: "assets/logo.png",
			IsNew:   true,
		},
	}
	cfg := model.ReviewConfig{
		Rules:        []string{"Flag missing error checks", "Prefer context-aware APIs"},
		CustomPrompt: "Focus on the database layer.",
	}

	messages := BuildReviewMessages(files, cfg)
	require.Len(t, messages, 2)

	assert.Equal(t, model.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "code review")

	user := messages[1].Content
	assert.Equal(t, model.RoleUser, messages[1].Role)

	assert.Contains(t, user, `"comments" must always be an array`)
	assert.Contains(t, user, "1. Flag missing error checks")
	assert.Contains(t, user, "2. Prefer context-aware APIs")
	assert.Contains(t, user, "### internal/db/conn.go (modified)")
	assert.Contains(t, user, "```diff\n@@ -1,1 +1,2 @@\n keep\n+added // line 2\n```")
	assert.Contains(t, user, "### assets/logo.png (added)")
	assert.Contains(t, user, "No changes")
	assert.Contains(t, user, "Focus on the database layer.")
}

func TestBuildReviewMessagesMinimal(t *testing.T) {
	messages := BuildReviewMessages(nil, model.ReviewConfig{})
	require.Len(t, messages, 2)

	user := messages[1].Content
	assert.NotContains(t, user, "ADDITIONAL REVIEW RULES")
	assert.Contains(t, user, "CODE CHANGES TO REVIEW")
}
