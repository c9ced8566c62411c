package reviewer

import (
	"fmt"
	"math"
	"slices"

	"github.com/maxbolgarin/critiq/internal/model"
)

// validateResponse structurally checks a decoded JSON value against the
// expected review response shape. It returns the ordered list of violations;
// the value is valid iff the list is empty.
//
// A non-object top-level value or a missing/non-array "comments" field aborts
// further checks. Within a single comment all violations are collected.
func validateResponse(value any) []string {
	obj, ok := value.(map[string]any)
	if !ok {
		return []string{"response must be a JSON object"}
	}

	var errs []string
	if summary, ok := obj["summary"]; ok {
		if _, ok := summary.(string); !ok {
			errs = append(errs, "summary must be a string")
		}
	}

	rawComments, ok := obj["comments"]
	if !ok {
		return append(errs, "comments field is required")
	}
	comments, ok := rawComments.([]any)
	if !ok {
		return append(errs, "comments must be an array")
	}
	for i, entry := range comments {
		comment, ok := entry.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("comments[%d] must be an object", i))
			continue
		}
		errs = append(errs, validateComment(i, comment)...)
	}

	return errs
}

func validateComment(i int, comment map[string]any) []string {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("comments[%d].", i)+fmt.Sprintf(format, args...))
	}

	if file, ok := comment["file"].(string); !ok || file == "" {
		fail("file must be a non-empty string")
	}

	if line, ok := comment["line"].(float64); !ok || line != math.Trunc(line) || line < 1 {
		fail("line must be an integer >= 1")
	}

	severity, _ := comment["severity"].(string)
	if !slices.Contains(model.ReviewSeverities, model.ReviewSeverity(severity)) {
		fail("severity must be one of critical, warning, suggestion, nitpick")
	}

	category, _ := comment["category"].(string)
	if !slices.Contains(model.ReviewCategories, model.ReviewCategory(category)) {
		fail("category must be one of bug, security, performance, style, architecture, testing")
	}

	if confidence, ok := comment["confidence"].(float64); !ok || confidence < 0 || confidence > 1 {
		fail("confidence must be a number between 0 and 1")
	}

	if title, ok := comment["title"].(string); !ok || title == "" {
		fail("title must be a non-empty string")
	}

	if explanation, ok := comment["explanation"].(string); !ok || explanation == "" {
		fail("explanation must be a non-empty string")
	}

	if suggestion, ok := comment["suggestion"]; ok {
		if _, ok := suggestion.(string); !ok {
			fail("suggestion must be a string")
		}
	}

	return errs
}
