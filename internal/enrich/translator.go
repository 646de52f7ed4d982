package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/retry"
	"github.com/iceymoss/go-news/pkg/xerr"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const (
	// EmptyContentNotice 英文原文没有摘要时写入的中文内容
	EmptyContentNotice = "英文文章本身内容为空因此没有翻译"
	MethodSkipped      = "skipped"
)

// Translator 英文新闻翻译
type Translator struct {
	llm         llms.Model
	method      string
	temperature float64
	summaryLen  int
	timeout     time.Duration // 单次调用超时，0 不限
	retry       retry.Config
	log         *zap.Logger
}

// Translate 中文文章原样返回；失败时保留原文，translated 为 false
func (t *Translator) Translate(ctx context.Context, a model.Article) model.Article {
	if a.Language != model.LangEN || a.Translated {
		return a
	}

	if strings.TrimSpace(a.ContentOriginal) == "" {
		t.log.Warn("⚠️ 文章内容为空，跳过翻译", zap.String("title", a.TitleOriginal))
		a.Content = EmptyContentNotice
		a.Title = firstNonEmpty(a.TitleOriginal, a.Title)
		a.Translated = true
		a.TranslationMethod = MethodSkipped
		return a
	}

	title, err := t.call(ctx, titlePrompt(a.TitleOriginal), 100)
	if err == nil {
		var content string
		content, err = t.call(ctx, summaryPrompt(a.ContentOriginal, t.summaryLen), 500)
		if err == nil {
			a.Title = title
			a.Content = content
			a.Translated = true
			a.TranslationMethod = t.method
			t.log.Info("✅ 翻译完成", zap.String("title", title))
			return a
		}
	}

	t.log.Error("❌ 翻译失败，保留原文", zap.String("title", a.TitleOriginal), zap.Error(err))
	a.Title = firstNonEmpty(a.TitleOriginal, a.Title)
	a.Content = firstNonEmpty(a.ContentOriginal, a.Content)
	a.Translated = false
	return a
}

func (t *Translator) call(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var out string
	err := retry.Do(ctx, t.retry, func(ctx context.Context) error {
		if t.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}
		resp, err := llms.GenerateFromSinglePrompt(ctx, t.llm, prompt,
			llms.WithTemperature(t.temperature),
			llms.WithMaxTokens(maxTokens),
		)
		if err != nil {
			return err
		}
		resp = strings.TrimSpace(resp)
		if resp == "" {
			return fmt.Errorf("empty completion")
		}
		out = resp
		return nil
	})
	if err != nil {
		return "", perrors.Wrap(xerr.LLM_ERROR, "llm call failed", err)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
