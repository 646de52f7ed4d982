package enrich

import (
	"context"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/pkg/sensitive"

	"go.uber.org/zap"
)

// Commenter 生成一句 30-50 字的分析师点评
type Commenter struct {
	tr     *Translator // 复用调用与重试逻辑
	filter *sensitive.Word
	log    *zap.Logger
}

// Comment 失败返回空字符串；结果经过敏感词过滤
func (c *Commenter) Comment(ctx context.Context, a model.Article) string {
	title := firstNonEmpty(a.Title, a.TitleOriginal)
	content := firstNonEmpty(a.Content, a.ContentOriginal)

	comment, err := c.tr.call(ctx, commentPrompt(title, content), 150)
	if err != nil {
		c.log.Error("❌ AI点评生成失败", zap.String("title", title), zap.Error(err))
		return ""
	}

	if c.filter != nil {
		if ok, word := c.filter.Validate(comment); !ok {
			c.log.Warn("⚠️ AI点评命中敏感词", zap.String("title", title), zap.String("word", word))
			comment = c.filter.Sanitize(comment)
		}
	}
	return comment
}
