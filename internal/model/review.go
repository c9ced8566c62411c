package model

// ReviewSeverity is the 4-level severity scale the model responds with,
// ordered from most to least severe.
type ReviewSeverity string

const (
	ReviewSeverityCritical   ReviewSeverity = "critical"
	ReviewSeverityWarning    ReviewSeverity = "warning"
	ReviewSeveritySuggestion ReviewSeverity = "suggestion"
	ReviewSeverityNitpick    ReviewSeverity = "nitpick"
)

// ReviewSeverities lists the valid severities in rank order (lower index = more severe).
var ReviewSeverities = []ReviewSeverity{
	ReviewSeverityCritical,
	ReviewSeverityWarning,
	ReviewSeveritySuggestion,
	ReviewSeverityNitpick,
}

// ReviewCategory categorizes the kind of issue found
type ReviewCategory string

const (
	ReviewCategoryBug          ReviewCategory = "bug"
	ReviewCategorySecurity     ReviewCategory = "security"
	ReviewCategoryPerformance  ReviewCategory = "performance"
	ReviewCategoryStyle        ReviewCategory = "style"
	ReviewCategoryArchitecture ReviewCategory = "architecture"
	ReviewCategoryTesting      ReviewCategory = "testing"
)

// ReviewCategories lists the valid categories.
var ReviewCategories = []ReviewCategory{
	ReviewCategoryBug,
	ReviewCategorySecurity,
	ReviewCategoryPerformance,
	ReviewCategoryStyle,
	ReviewCategoryArchitecture,
	ReviewCategoryTesting,
}

// StructuredComment is a single review comment as returned by a
// structured-output-capable model. The JSON tags are the wire contract.
type StructuredComment struct {
	File        string         `json:"file"`
	Line        int            `json:"line"`
	Severity    ReviewSeverity `json:"severity"`
	Category    ReviewCategory `json:"category"`
	Confidence  float64        `json:"confidence"`
	Title       string         `json:"title"`
	Explanation string         `json:"explanation"`
	Suggestion  string         `json:"suggestion,omitempty"`
}

// StructuredReviewResponse is the full structured model response.
// Comments must be present (possibly empty); its absence is a validation failure.
type StructuredReviewResponse struct {
	Summary  string              `json:"summary,omitempty"`
	Comments []StructuredComment `json:"comments"`
}

// CommentStyle selects between inline and summary-only commenting
type CommentStyle string

const (
	CommentStyleInline  CommentStyle = "inline"
	CommentStyleSummary CommentStyle = "summary"
)

// ReviewConfig represents code review behavior configuration.
// Treated as an immutable snapshot for the duration of one review call.
type ReviewConfig struct {
	Severity     string       `yaml:"severity" env:"REVIEW_SEVERITY"` // minimum severity to keep: error, warning or suggestion
	CommentStyle CommentStyle `yaml:"comment_style" env:"REVIEW_COMMENT_STYLE"`
	IgnoreFiles  []string     `yaml:"ignore_files" env:"REVIEW_IGNORE_FILES"`
	Rules        []string     `yaml:"rules"`
	CustomPrompt string       `yaml:"custom_prompt" env:"REVIEW_CUSTOM_PROMPT"`
}

// MessageRole tags a prompt message
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single role-tagged prompt message
type Message struct {
	Role    MessageRole
	Content string
}

// ModelConfig represents model-specific configuration
type ModelConfig struct {
	APIKey   string
	Model    string
	URL      string
	ProxyURL string
	IsTest   bool
}

// APIRequest represents a request to an LLM API
type APIRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
	ResponseType string
}

// APIResponse represents a response from an LLM API
type APIResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
