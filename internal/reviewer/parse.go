package reviewer

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/errm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// parseStructuredResponse decodes raw model output as JSON and validates it
// against the review response schema. It never panics: both decode and
// validation failures come back as descriptive errors so the caller can fall
// back to legacy parsing.
func parseStructuredResponse(raw string) (*model.StructuredReviewResponse, error) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, errm.Wrap(err, "JSON parse error")
	}

	if errs := validateResponse(decoded); len(errs) > 0 {
		return nil, errm.New("Validation failed: " + strings.Join(errs, "; "))
	}

	var resp model.StructuredReviewResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, errm.Wrap(err, "JSON parse error")
	}

	return &resp, nil
}

// looksStructured is a cheap pre-check used to decide which parser to try
// first: the trimmed text must start with '{', decode as a JSON object and
// carry an array "comments" field. Returns false on any failure.
func looksStructured(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return false
	}

	_, ok := decoded["comments"].([]any)
	return ok
}
