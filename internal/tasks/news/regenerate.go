package news

import (
	"context"
	"sort"
	"time"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/internal/pipeline"
	"github.com/iceymoss/go-news/internal/tasks"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/utils"
	"github.com/iceymoss/go-news/pkg/xerr"

	"go.uber.org/zap"
)

const RegenerateTaskName = "news:regenerate"

// RegenerateTask 只从数据库重新生成页面，不抓取不调用 LLM
type RegenerateTask struct {
	env *core.Env
	now func() time.Time
}

func init() {
	tasks.Register(RegenerateTaskName, NewRegenerateTask)
}

func NewRegenerateTask(env *core.Env) core.Task {
	return &RegenerateTask{env: env, now: time.Now}
}

func (t *RegenerateTask) Identifier() string {
	return RegenerateTaskName
}

// Run params: days 最近多少天，默认 output.regenerate_days
func (t *RegenerateTask) Run(ctx context.Context, params map[string]any) error {
	env := t.env
	days := tasks.IntParam(params, "days", env.Config.Output.RegenerateDays)
	if days <= 0 {
		days = 7
	}
	rep := pipeline.NewReport(RegenerateTaskName)
	defer env.Record(context.WithoutCancel(ctx), rep)

	articles, err := env.Articles.ListByDays(ctx, days, t.now())
	if err != nil {
		return err
	}
	rep.Input = len(articles)
	rep.Cached = len(articles)
	if len(articles) == 0 {
		return perrors.New(xerr.NOTHING_TO_RENDER, "no articles in database for the period")
	}

	byDate := GroupByDate(articles)
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	for _, date := range dates {
		// 按来源轮询，不限条数，不做时间过滤
		ordered := pipeline.ScheduleRoundRobin(byDate[date])
		url, err := env.Generator.Digest(ctx, date, ordered)
		if err != nil {
			return err
		}
		rep.Rendered += len(ordered)
		env.Log.Info("📄 重新生成", zap.String("date", date), zap.Int("articles", len(ordered)), zap.String("url", url))
	}

	n, err := env.Index.Update(ctx, env.Config.Output.IndexDays)
	if err != nil {
		env.Log.Warn("⚠️ 首页更新失败", zap.Error(err))
	} else {
		env.Log.Info("🗂️ 首页已更新", zap.Int("pages", n))
	}
	return nil
}

// GroupByDate 按北京时间的发布日期分组
func GroupByDate(articles []model.Article) map[string][]model.Article {
	out := make(map[string][]model.Article)
	for _, a := range articles {
		d := utils.DateInChina(a.PublishTime)
		out[d] = append(out[d], a)
	}
	return out
}
