package prompts

import (
	"fmt"
	"strings"

	"github.com/maxbolgarin/critiq/internal/model"
)

var reviewSystemPrompt = `
You are a senior software engineer performing a thorough code review.

CORE RESPONSIBILITIES:
- Identify concrete issues in the changed code with precise line numbers
- Judge severity and confidence honestly; do not inflate minor findings
- Suggest specific, copy-pasteable fixes where a fix is obvious
- Analyze only real logical changes; skip comments, renamings and formatting
- Keep every explanation short and to the point
`

var reviewOutputInstructions = `
OUTPUT FORMAT: respond with a single valid JSON object matching this structure:
{
  "summary": "optional overall summary of the change set",
  "comments": [
    {
      "file": "path/to/file",
      "line": number,
      "severity": "critical|warning|suggestion|nitpick",
      "category": "bug|security|performance|style|architecture|testing",
      "confidence": number between 0.0 and 1.0,
      "title": "short issue title, at most 80 characters",
      "explanation": "why this is a problem and what the impact is",
      "suggestion": "optional code or text fix"
    }
  ]
}

SEVERITY LEVELS (most to least severe):
- "critical": must be fixed before merging (crashes, data loss, vulnerabilities)
- "warning": should be fixed soon (likely bugs, performance problems)
- "suggestion": worth improving (code quality, clarity)
- "nitpick": minor polish, safe to ignore

CATEGORIES:
- "bug": logic errors and incorrect behavior
- "security": input validation, auth, data exposure, injection
- "performance": inefficient algorithms, wasted resources
- "style": readability and idiom
- "architecture": structure, coupling, API design
- "testing": missing or incorrect tests

FORMATTING RULES:
- "comments" must always be an array, empty when there is nothing to report
- Added lines in the diff carry a "// line N" marker with their line number in
  the new file; use exactly these numbers in the "line" field
- Comment only on lines present in the diff
- Do not wrap the JSON in markdown fences or any prose
`

// BuildReviewMessages assembles the system and user messages for one review
// call: output schema and legends, optional numbered custom rules, the
// annotated per-file diffs and an optional trailing custom prompt.
func BuildReviewMessages(files []*model.FileDiff, cfg model.ReviewConfig) []model.Message {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(reviewOutputInstructions))
	b.WriteString("\n")

	if len(cfg.Rules) > 0 {
		b.WriteString("\nADDITIONAL REVIEW RULES:\n")
		for i, rule := range cfg.Rules {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
		}
	}

	b.WriteString("\nCODE CHANGES TO REVIEW:\n")
	for _, file := range files {
		fmt.Fprintf(&b, "\n### %s (%s)\n", file.NewPath, file.Status())
		if file.Diff == "" {
			b.WriteString("No changes\n")
			continue
		}
		b.WriteString("```diff\n")
		b.WriteString(file.Diff)
		b.WriteString("\n```\n")
	}

	if cfg.CustomPrompt != "" {
		b.WriteString("\n")
		b.WriteString(cfg.CustomPrompt)
		b.WriteString("\n")
	}

	return []model.Message{
		{Role: model.RoleSystem, Content: strings.TrimSpace(reviewSystemPrompt)},
		{Role: model.RoleUser, Content: b.String()},
	}
}
