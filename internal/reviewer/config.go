package reviewer

import (
	"slices"

	"github.com/maxbolgarin/critiq/internal/model"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
)

type Config struct {
	Review model.ReviewConfig `yaml:"review"`

	Verbose bool `yaml:"verbose" env:"REVIEW_VERBOSE"`
}

var supportedCommentStyles = []model.CommentStyle{
	model.CommentStyleInline,
	model.CommentStyleSummary,
}

func (c *Config) PrepareAndValidate() error {
	c.Review.CommentStyle = lang.Check(c.Review.CommentStyle, model.CommentStyleInline)
	if !slices.Contains(supportedCommentStyles, c.Review.CommentStyle) {
		return erro.New("invalid comment style: %s", c.Review.CommentStyle)
	}
	return nil
}
