package reviewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestValidateResponse(t *testing.T) {
	validComment := `{
		"file": "main.go", "line": 10, "severity": "warning", "category": "bug",
		"confidence": 0.8, "title": "t", "explanation": "e"
	}`

	tests := []struct {
		name     string
		raw      string
		wantErrs []string
	}{
		{
			name:     "valid response with empty comments",
			raw:      `{"summary": "ok", "comments": []}`,
			wantErrs: nil,
		},
		{
			name:     "valid response without summary",
			raw:      `{"comments": [` + validComment + `]}`,
			wantErrs: nil,
		},
		{
			name:     "top level array",
			raw:      `[]`,
			wantErrs: []string{"response must be a JSON object"},
		},
		{
			name:     "missing comments",
			raw:      `{"summary": "ok"}`,
			wantErrs: []string{"comments field is required"},
		},
		{
			name:     "comments not an array",
			raw:      `{"comments": "none"}`,
			wantErrs: []string{"comments must be an array"},
		},
		{
			name:     "summary wrong type does not stop comment checks",
			raw:      `{"summary": 42, "comments": [` + validComment + `]}`,
			wantErrs: []string{"summary must be a string"},
		},
		{
			name: "missing fields are all reported",
			raw:  `{"comments": [{"file": "main.go"}]}`,
			wantErrs: []string{
				"comments[0].line must be an integer >= 1",
				"comments[0].severity must be one of critical, warning, suggestion, nitpick",
				"comments[0].category must be one of bug, security, performance, style, architecture, testing",
				"comments[0].confidence must be a number between 0 and 1",
				"comments[0].title must be a non-empty string",
				"comments[0].explanation must be a non-empty string",
			},
		},
		{
			name:     "fractional line",
			raw:      `{"comments": [{"file": "a.go", "line": 1.5, "severity": "warning", "category": "bug", "confidence": 0.9, "title": "t", "explanation": "e"}]}`,
			wantErrs: []string{"comments[0].line must be an integer >= 1"},
		},
		{
			name:     "line below one",
			raw:      `{"comments": [{"file": "a.go", "line": 0, "severity": "warning", "category": "bug", "confidence": 0.9, "title": "t", "explanation": "e"}]}`,
			wantErrs: []string{"comments[0].line must be an integer >= 1"},
		},
		{
			name:     "confidence above one",
			raw:      `{"comments": [{"file": "a.go", "line": 1, "severity": "warning", "category": "bug", "confidence": 1.2, "title": "t", "explanation": "e"}]}`,
			wantErrs: []string{"comments[0].confidence must be a number between 0 and 1"},
		},
		{
			name:     "unknown severity",
			raw:      `{"comments": [{"file": "a.go", "line": 1, "severity": "fatal", "category": "bug", "confidence": 0.9, "title": "t", "explanation": "e"}]}`,
			wantErrs: []string{"comments[0].severity must be one of critical, warning, suggestion, nitpick"},
		},
		{
			name:     "suggestion wrong type",
			raw:      `{"comments": [{"file": "a.go", "line": 1, "severity": "warning", "category": "bug", "confidence": 0.9, "title": "t", "explanation": "e", "suggestion": 5}]}`,
			wantErrs: []string{"comments[0].suggestion must be a string"},
		},
		{
			name:     "non-object comment entry",
			raw:      `{"comments": ["text"]}`,
			wantErrs: []string{"comments[0] must be an object"},
		},
		{
			name:     "violations indexed per comment",
			raw:      `{"comments": [` + validComment + `, {"file": "", "line": 2, "severity": "warning", "category": "bug", "confidence": 0.9, "title": "t", "explanation": "e"}]}`,
			wantErrs: []string{"comments[1].file must be a non-empty string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateResponse(decode(t, tt.raw))
			assert.Equal(t, tt.wantErrs, errs)
		})
	}
}
