package news

import (
	"context"
	"errors"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/internal/pipeline"
	"github.com/iceymoss/go-news/internal/repo"
	mailer "github.com/iceymoss/go-news/pkg/message/email"

	"go.uber.org/zap"
)

const headlineCount = 5

// publish 渲染日报、更新首页、发送通知
// 首页和通知失败不影响日报本身
func publish(ctx context.Context, env *core.Env, date string, articles []model.Article, notify bool) (string, error) {
	url, err := env.Generator.Digest(ctx, date, articles)
	if err != nil {
		return "", err
	}

	if _, err := env.Index.Update(ctx, env.Config.Output.IndexDays); err != nil {
		env.Log.Warn("⚠️ 首页更新失败", zap.Error(err))
	}

	if notify && env.Mailer != nil {
		d := mailer.Digest{Date: date, Count: len(articles), URL: url}
		for i := 0; i < len(articles) && i < headlineCount; i++ {
			d.Headline = append(d.Headline, articles[i].Title)
		}
		if err := env.Mailer.SendDigest(ctx, d); err != nil {
			env.Log.Error("❌ 日报通知发送失败", zap.String("date", date), zap.Error(err))
		}
	}
	return url, nil
}

// splitCached 已入库的文章取数据库里的版本（带翻译和点评），其余为新文章
func splitCached(ctx context.Context, env *core.Env, articles []model.Article) (fresh, cached []model.Article, err error) {
	seen := make(map[uint64]bool)
	for _, a := range articles {
		existing, err := env.Articles.GetByKey(ctx, a.Language, a.DedupKey())
		if errors.Is(err, repo.ErrNotFound) {
			fresh = append(fresh, a)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if seen[existing.ID] {
			continue
		}
		seen[existing.ID] = true
		cached = append(cached, existing)
	}
	return fresh, cached, nil
}

// saveAll 逐条入库并回填 ID，唯一键冲突视为已存在
func saveAll(ctx context.Context, env *core.Env, articles []model.Article, rep *pipeline.Report) error {
	for i := range articles {
		err := env.Articles.Save(ctx, &articles[i])
		switch {
		case err == nil:
			rep.Saved++
		case errors.Is(err, repo.ErrAlreadyExists):
			rep.Skipped++
			env.Log.Warn("⏭️ 跳过重复新闻", zap.String("title", articles[i].DisplayTitle()))
		default:
			return err
		}
	}
	return nil
}
