package news

import (
	"context"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/fetch"
	"github.com/iceymoss/go-news/internal/tasks"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/xerr"

	"go.uber.org/zap"
)

const FetchRawTaskName = "news:fetch_raw"

// FetchRawTask 只抓取，结果写入 raw_articles 暂存表，由 process_raw 处理
type FetchRawTask struct {
	env *core.Env
}

func init() {
	tasks.Register(FetchRawTaskName, NewFetchRawTask)
}

func NewFetchRawTask(env *core.Env) core.Task {
	return &FetchRawTask{env: env}
}

func (t *FetchRawTask) Identifier() string {
	return FetchRawTaskName
}

func (t *FetchRawTask) Run(ctx context.Context, params map[string]any) error {
	env := t.env
	sources, err := fetch.LoadSources(env.Config.Fetch.SourcesFile)
	if err != nil {
		return perrors.Wrap(xerr.CONFIG_ERROR, "load sources", err)
	}

	res := env.Fetcher.FetchAll(ctx, sources)
	for name, ferr := range res.Failed {
		env.Log.Warn("⚠️ 源抓取失败", zap.String("source", name), zap.Error(ferr))
	}

	n, err := env.Raw.SaveRaw(ctx, res.Articles)
	if err != nil {
		return err
	}
	env.Log.Info("📥 原始新闻已暂存", zap.Int("saved", n), zap.Int("too_old", res.TooOld))
	return nil
}
