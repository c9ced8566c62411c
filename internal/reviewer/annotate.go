package reviewer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/maxbolgarin/critiq/internal/model"
)

// hunkHeaderRegex matches a unified diff hunk header like "@@ -10,3 +10,5 @@".
// The length components are optional: "@@ -10 +10,2 @@" means length 1.
var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// AnnotateDiffs returns a derived copy of the given changes where every added
// line of every reviewable file carries its absolute line number in the
// post-change file. Comment-posting APIs reference lines in the new file, not
// diff-relative positions, so the model must answer in the same numbering.
//
// Deleted files and files without a textual diff pass through verbatim.
// The input slice and its elements are never mutated.
func AnnotateDiffs(changes []*model.FileDiff) []*model.FileDiff {
	result := make([]*model.FileDiff, 0, len(changes))
	for _, change := range changes {
		if change.IsDeleted || change.Diff == "" {
			result = append(result, change)
			continue
		}
		annotated := *change
		annotated.Diff = annotatePatch(change.Diff)
		result = append(result, &annotated)
	}
	return result
}

// annotatePatch suffixes every added line of a unified diff with a marker
// encoding its 1-based line number in the resulting file.
//
// The new-file counter resets at each hunk header. Added and context lines
// occupy a position in the new file and advance the counter; removed lines
// do not. File-header lines ("---"/"+++") pass through unchanged.
func annotatePatch(diff string) string {
	lines := strings.Split(diff, "\n")
	out := make([]string, 0, len(lines))

	var newStart, offset int

	for _, line := range lines {
		if matches := hunkHeaderRegex.FindStringSubmatch(line); matches != nil {
			newStart, _ = strconv.Atoi(matches[3])
			offset = 0
			out = append(out, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			out = append(out, line)

		case strings.HasPrefix(line, "+"):
			out = append(out, fmt.Sprintf("%s // line %d", line, newStart+offset))
			offset++

		case strings.HasPrefix(line, "-"):
			out = append(out, line)

		default:
			out = append(out, line)
			offset++
		}
	}

	return strings.Join(out, "\n")
}
