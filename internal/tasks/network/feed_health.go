package network

import (
	"context"
	"fmt"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/fetch"
	"github.com/iceymoss/go-news/internal/tasks"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/xerr"

	"go.uber.org/zap"
)

const FeedHealthTaskName = "news:feed_health"

// FeedHealthTask 检查所有启用的 RSS 源是否可访问
type FeedHealthTask struct {
	env *core.Env
}

// init 只要这个包被 import，任务就会自动挂载
func init() {
	defaultParams := map[string]any{
		"max_failures": 0,
	}
	tasks.RegisterAuto(FeedHealthTaskName, "0 0 */6 * * *", NewFeedHealthTask, defaultParams)
}

func NewFeedHealthTask(env *core.Env) core.Task {
	return &FeedHealthTask{env: env}
}

func (t *FeedHealthTask) Identifier() string {
	return FeedHealthTaskName
}

// Run params: max_failures 允许失败的源数量，超过则任务失败
func (t *FeedHealthTask) Run(ctx context.Context, params map[string]any) error {
	env := t.env
	sources, err := fetch.LoadSources(env.Config.Fetch.SourcesFile)
	if err != nil {
		return perrors.Wrap(xerr.CONFIG_ERROR, "load sources", err)
	}

	env.Log.Info("📡 [FeedHealth] checking feeds", zap.Int("sources", len(sources)))
	results := env.Fetcher.CheckHealth(ctx, sources)

	var failed []string
	for _, h := range results {
		if h.OK() {
			env.Log.Debug("✅ [FeedHealth] ok", zap.String("source", h.Source), zap.Duration("latency", h.Latency))
			continue
		}
		failed = append(failed, h.Source)
		env.Log.Warn("⚠️ [FeedHealth] unreachable",
			zap.String("source", h.Source),
			zap.String("url", h.URL),
			zap.Int("status", h.Status),
			zap.String("error", h.Err))
	}

	if len(failed) > tasks.IntParam(params, "max_failures", 0) {
		return perrors.New(xerr.FETCH_ERROR, fmt.Sprintf("%d/%d feeds unreachable: %v", len(failed), len(results), failed))
	}
	env.Log.Info("✅ [FeedHealth] done", zap.Int("ok", len(results)-len(failed)), zap.Int("failed", len(failed)))
	return nil
}
