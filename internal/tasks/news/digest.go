package news

import (
	"context"
	"time"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/fetch"
	"github.com/iceymoss/go-news/internal/pipeline"
	"github.com/iceymoss/go-news/internal/tasks"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/utils"
	"github.com/iceymoss/go-news/pkg/xerr"

	"go.uber.org/zap"
)

const DigestTaskName = "news:digest"

// DigestTask 每日完整流程：抓取 -> 筛选 -> 翻译点评 -> 入库 -> 渲染
type DigestTask struct {
	env *core.Env
	now func() time.Time
}

func init() {
	// 每天北京时间 07:00 之前跑完，服务器按 UTC 部署
	tasks.RegisterAuto(DigestTaskName, "0 30 22 * * *", NewDigestTask, map[string]any{"notify": true})
}

func NewDigestTask(env *core.Env) core.Task {
	return &DigestTask{env: env, now: time.Now}
}

func (t *DigestTask) Identifier() string {
	return DigestTaskName
}

func (t *DigestTask) Run(ctx context.Context, params map[string]any) error {
	env := t.env
	log := env.Log.With(zap.String("task", DigestTaskName))
	rep := pipeline.NewReport(DigestTaskName)
	defer env.Record(context.WithoutCancel(ctx), rep)

	// 1. 抓取
	sources, err := fetch.LoadSources(env.Config.Fetch.SourcesFile)
	if err != nil {
		return perrors.Wrap(xerr.CONFIG_ERROR, "load sources", err)
	}
	res := env.Fetcher.FetchAll(ctx, sources)
	log.Info("🕷️ 抓取完成",
		zap.Int("sources", len(sources)),
		zap.Int("articles", len(res.Articles)),
		zap.Int("failed_sources", len(res.Failed)),
		zap.Int("too_old", res.TooOld))
	if len(res.Articles) == 0 {
		return perrors.New(xerr.NOTHING_TO_RENDER, "no articles fetched")
	}

	// 2. 标准化 + 缓存检查
	articles := env.Pipeline.Ingest(res.Articles, rep)
	fresh, cached, err := splitCached(ctx, env, articles)
	if err != nil {
		return err
	}
	rep.New, rep.Cached = len(fresh), len(cached)
	log.Info("🔍 去重检查", zap.Int("new", len(fresh)), zap.Int("cached", len(cached)))

	// 3. 只对新文章做筛选和增强，控制 LLM 调用量
	selected := env.Pipeline.Select(fresh, rep).Articles
	enriched, st := env.Enricher.EnrichAll(ctx, selected)
	log.Info("🤖 增强完成", zap.Any("stats", st))

	// 4. 入库
	if err := saveAll(ctx, env, enriched, rep); err != nil {
		return err
	}

	// 5. 时间窗口 + 最终排序 + 渲染
	now := t.now()
	final := env.Pipeline.Arrange(append(enriched, cached...), now, rep)
	if len(final) == 0 {
		return perrors.New(xerr.NOTHING_TO_RENDER, "no articles within window")
	}
	date := tasks.DateParam(params, "date", utils.DateInChina(now))
	_, err = publish(ctx, env, date, final, tasks.BoolParam(params, "notify", false))
	return err
}
