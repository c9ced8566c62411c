package reviewer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/maxbolgarin/critiq/internal/model"
)

// inlineCommentRegex matches the head of a legacy inline comment:
// a path, a colon, a line number and a dash (em-dash, en-dash or hyphen)
// with optional surrounding whitespace. The comment text runs from the end
// of one match to the start of the next (RE2 has no lookahead, so boundaries
// are sliced from match positions instead).
var inlineCommentRegex = regexp.MustCompile(`([\w/.\-]+):(\d+)\s*[—–-]\s*`)

// parseLegacyResponse extracts review comments from unstructured model output.
//
// With the summary comment style the whole trimmed response becomes a single
// summary comment and no pattern matching is attempted. Otherwise every
// "path:line — text" occurrence yields one inline comment; a response with no
// matches (plain prose like "looks good") degrades to a single summary
// comment instead of being dropped.
//
// Known fragility: comment text containing a literal "path:123 -" run splits
// the text early at that point.
func parseLegacyResponse(raw string, style model.CommentStyle) []*model.Comment {
	trimmed := strings.TrimSpace(raw)

	if style == model.CommentStyleSummary {
		return []*model.Comment{{
			Type: model.CommentTypeSummary,
			Body: trimmed,
		}}
	}

	matches := inlineCommentRegex.FindAllStringSubmatchIndex(trimmed, -1)
	if len(matches) == 0 {
		return []*model.Comment{{
			Type: model.CommentTypeSummary,
			Body: trimmed,
		}}
	}

	comments := make([]*model.Comment, 0, len(matches))
	for i, match := range matches {
		textEnd := len(trimmed)
		if i+1 < len(matches) {
			textEnd = matches[i+1][0]
		}

		path := trimmed[match[2]:match[3]]
		line, _ := strconv.Atoi(trimmed[match[4]:match[5]])
		text := strings.TrimSpace(trimmed[match[1]:textEnd])

		comments = append(comments, &model.Comment{
			Type:     model.CommentTypeInline,
			FilePath: path,
			Line:     line,
			Body:     text,
		})
	}

	return comments
}
