package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/pkg/retry"
	"github.com/iceymoss/go-news/pkg/sensitive"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options 增强参数
type Options struct {
	Method      string // 写入 translation_method，一般为 provider 名
	Temperature float64
	SummaryLen  int
	Concurrency int
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// Stats 一批文章的增强结果
type Stats struct {
	Translated      int `json:"translated"`
	TranslateFailed int `json:"translate_failed"`
	Skipped         int `json:"skipped"`
	Commented       int `json:"commented"`
	CommentFailed   int `json:"comment_failed"`
}

// Enricher 翻译 + 点评
type Enricher struct {
	translator  *Translator
	commenter   *Commenter
	concurrency int
	log         *zap.Logger
}

// New llm 为 nil 时返回的 Enricher 不做任何增强
func New(llm llms.Model, filter *sensitive.Word, opts Options, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "enrich"))
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.SummaryLen <= 0 {
		opts.SummaryLen = 150
	}
	if opts.Method == "" {
		opts.Method = ProviderOpenAI
	}

	e := &Enricher{concurrency: opts.Concurrency, log: log}
	if llm == nil {
		return e
	}
	e.translator = &Translator{
		llm:         llm,
		method:      opts.Method,
		temperature: opts.Temperature,
		summaryLen:  opts.SummaryLen,
		timeout:     opts.Timeout,
		retry:       retry.Config{MaxAttempts: opts.MaxRetries, Delay: opts.RetryDelay, Backoff: true},
		log:         log,
	}
	e.commenter = &Commenter{tr: e.translator, filter: filter, log: log}
	return e
}

// Enabled 是否配置了模型
func (e *Enricher) Enabled() bool {
	return e != nil && e.translator != nil
}

// Translate 单篇翻译，未启用时原样返回
func (e *Enricher) Translate(ctx context.Context, a model.Article) model.Article {
	if !e.Enabled() {
		return a
	}
	return e.translator.Translate(ctx, a)
}

// Comment 单篇点评，未启用时返回空
func (e *Enricher) Comment(ctx context.Context, a model.Article) string {
	if !e.Enabled() {
		return ""
	}
	return e.commenter.Comment(ctx, a)
}

// EnrichAll 并发增强，输出顺序与输入一致
// 已翻译的不再翻译，已有点评的不再生成
func (e *Enricher) EnrichAll(ctx context.Context, articles []model.Article) ([]model.Article, Stats) {
	out := make([]model.Article, len(articles))
	copy(out, articles)
	var st Stats
	if !e.Enabled() || len(articles) == 0 {
		return out, st
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range out {
		i := i
		g.Go(func() error {
			a := out[i]
			needTranslate := a.Language == model.LangEN && !a.Translated
			if needTranslate {
				a = e.translator.Translate(gctx, a)
			}
			var comment string
			needComment := a.AIComment == ""
			if needComment {
				comment = e.commenter.Comment(gctx, a)
				a.AIComment = comment
			}
			out[i] = a

			mu.Lock()
			defer mu.Unlock()
			if needTranslate {
				switch {
				case a.TranslationMethod == MethodSkipped:
					st.Skipped++
				case a.Translated:
					st.Translated++
				default:
					st.TranslateFailed++
				}
			}
			if needComment {
				if comment != "" {
					st.Commented++
				} else {
					st.CommentFailed++
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	e.log.Info("🤖 增强完成",
		zap.Int("articles", len(articles)),
		zap.Int("translated", st.Translated),
		zap.Int("translate_failed", st.TranslateFailed),
		zap.Int("skipped", st.Skipped),
		zap.Int("commented", st.Commented),
		zap.Int("comment_failed", st.CommentFailed))
	return out, st
}
