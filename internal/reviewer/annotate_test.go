package reviewer

import (
	"testing"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotatePatch(t *testing.T) {
	tests := []struct {
		name string
		diff string
		want string
	}{
		{
			name: "single hunk with context and removals",
			diff: "@@ -1,3 +1,3 @@\n context\n-removed\n+added\n trailing",
			want: "@@ -1,3 +1,3 @@\n context\n-removed\n+added // line 2\n trailing",
		},
		{
			name: "counter resets at every hunk header",
			diff: "@@ -1,2 +1,3 @@\n a\n+b\n c\n@@ -20,3 +20,5 @@\n x\n+y\n+z\n w",
			want: "@@ -1,2 +1,3 @@\n a\n+b // line 2\n c\n@@ -20,3 +20,5 @@\n x\n+y // line 21\n+z // line 22\n w",
		},
		{
			name: "hunk header with omitted lengths",
			diff: "@@ -5 +7 @@\n+only",
			want: "@@ -5 +7 @@\n+only // line 7",
		},
		{
			name: "file headers are not annotated",
			diff: "--- a/main.go\n+++ b/main.go\n@@ -1,1 +1,2 @@\n keep\n+new",
			want: "--- a/main.go\n+++ b/main.go\n@@ -1,1 +1,2 @@\n keep\n+new // line 2",
		},
		{
			name: "removed lines do not advance the counter",
			diff: "@@ -10,4 +10,3 @@\n one\n-two\n-three\n+merged\n four",
			want: "@@ -10,4 +10,3 @@\n one\n-two\n-three\n+merged // line 11\n four",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, annotatePatch(tt.diff))
		})
	}
}

func TestAnnotateDiffs(t *testing.T) {
	changes := []*model.FileDiff{
		{
			NewPath: "main.go",
			Diff:    "@@ -1,1 +1,2 @@\n keep\n+new",
		},
		{
			NewPath:   "gone.go",
			IsDeleted: true,
			Diff:      "@@ -1,2 +0,0 @@\n-a\n-b",
		},
		{
			NewPath:  "image.png",
			IsBinary: true,
		},
	}

	annotated := AnnotateDiffs(changes)
	require.Len(t, annotated, len(changes))

	assert.Equal(t, "@@ -1,1 +1,2 @@\n keep\n+new // line 2", annotated[0].Diff)

	// Deleted files and files without a diff pass through untouched
	assert.Equal(t, changes[1], annotated[1])
	assert.Equal(t, changes[2], annotated[2])

	// The input is never mutated
	assert.Equal(t, "@@ -1,1 +1,2 @@\n keep\n+new", changes[0].Diff)
}

func TestAnnotateDiffsAddedLineCount(t *testing.T) {
	// k consecutive added lines starting at new line c carry markers c..c+k-1
	diff := "@@ -3,1 +3,4 @@\n ctx\n+a\n+b\n+c"
	got := annotatePatch(diff)

	assert.Contains(t, got, "+a // line 4")
	assert.Contains(t, got, "+b // line 5")
	assert.Contains(t, got, "+c // line 6")
}
