package news

import (
	"context"
	"errors"
	"time"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/internal/pipeline"
	"github.com/iceymoss/go-news/internal/repo"
	"github.com/iceymoss/go-news/internal/tasks"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/utils"
	"github.com/iceymoss/go-news/pkg/xerr"

	"go.uber.org/zap"
)

const ProcessRawTaskName = "news:process_raw"

// ProcessRawTask 暂存表 -> 分板块流水线 -> 加锁增强 -> 入库 -> 渲染
// 多个实例同时运行时靠 raw_articles 和 news_articles 上的状态锁分工
type ProcessRawTask struct {
	env *core.Env
	now func() time.Time
}

func init() {
	tasks.Register(ProcessRawTaskName, NewProcessRawTask)
}

func NewProcessRawTask(env *core.Env) core.Task {
	return &ProcessRawTask{env: env, now: time.Now}
}

func (t *ProcessRawTask) Identifier() string {
	return ProcessRawTaskName
}

// Run params: limit 每次最多领取的条数；clear 完成后清理暂存表
func (t *ProcessRawTask) Run(ctx context.Context, params map[string]any) (err error) {
	env := t.env
	log := env.Log.With(zap.String("task", ProcessRawTaskName))
	rep := pipeline.NewReport(ProcessRawTaskName)
	defer env.Record(context.WithoutCancel(ctx), rep)

	if st, err := env.Stats.RawStats(ctx); err == nil {
		log.Info("📦 暂存表", zap.Any("stats", st))
	}

	// 1. 领取
	raws, err := env.Raw.ListRaw(ctx, "", tasks.IntParam(params, "limit", 0))
	if err != nil {
		return err
	}
	ids := make([]uint64, 0, len(raws))
	for _, r := range raws {
		ids = append(ids, r.ID)
	}
	claimed, err := env.Raw.Claim(ctx, ids)
	if err != nil {
		if uerr := env.Raw.Unclaim(context.WithoutCancel(ctx), claimed); uerr != nil {
			log.Error("❌ 归还暂存记录失败", zap.Int("count", len(claimed)), zap.Error(uerr))
		}
		return err
	}
	raws = onlyClaimed(raws, claimed)
	if len(raws) == 0 {
		return perrors.New(xerr.NOTHING_TO_RENDER, "raw pool is empty")
	}
	defer func() {
		// 失败时归还，下次重新处理
		c := context.WithoutCancel(ctx)
		if err != nil && !core.IsWarning(err) {
			if uerr := env.Raw.Unclaim(c, claimed); uerr != nil {
				log.Error("❌ 归还暂存记录失败", zap.Int("count", len(claimed)), zap.Error(uerr))
			}
			return
		}
		if cerr := env.Raw.Complete(c, claimed); cerr != nil {
			log.Error("❌ 标记暂存记录完成失败", zap.Error(cerr))
		}
	}()

	// 2. 分板块流水线
	articles := env.Pipeline.Ingest(raws, rep)
	selected := env.Pipeline.Select(articles, rep).Articles

	// 3. 入库 + 加锁增强
	final := make([]model.Article, 0, len(selected))
	for _, a := range selected {
		out, err := t.process(ctx, a, rep)
		if err != nil {
			return err
		}
		final = append(final, out)
	}

	// 4. 渲染
	now := t.now()
	final = env.Pipeline.Arrange(final, now, rep)
	if len(final) == 0 {
		return perrors.New(xerr.NOTHING_TO_RENDER, "no articles within window")
	}
	if _, err = publish(ctx, env, utils.DateInChina(now), final, false); err != nil {
		return err
	}

	if tasks.BoolParam(params, "clear", false) {
		// 先把本批置为 done，再清理
		if err = env.Raw.Complete(context.WithoutCancel(ctx), claimed); err != nil {
			return err
		}
		n, cerr := env.Raw.ClearRaw(ctx)
		if cerr != nil {
			log.Warn("⚠️ 清理暂存表失败", zap.Error(cerr))
		} else {
			log.Info("🧹 暂存表已清理", zap.Int64("deleted", n))
		}
	}
	return nil
}

// process 单篇文章：已入库的直接取缓存；新文章先入库，再分别在锁保护下写翻译和点评
func (t *ProcessRawTask) process(ctx context.Context, a model.Article, rep *pipeline.Report) (model.Article, error) {
	env := t.env
	existing, err := env.Articles.GetByKey(ctx, a.Language, a.DedupKey())
	switch {
	case err == nil:
		rep.Cached++
		existing.Featured = false
		return existing, nil
	case !errors.Is(err, repo.ErrNotFound):
		return a, err
	}

	rep.New++
	if err := env.Articles.Save(ctx, &a); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			// 并发的另一个实例刚写入
			rep.Skipped++
			return a, nil
		}
		return a, err
	}
	rep.Saved++

	if a.Language == model.LangEN && !a.Translated {
		translated := env.Enricher.Translate(ctx, a)
		if translated.Translated {
			err := env.Articles.SaveTranslationWithLock(ctx, a.ID, translated)
			if err != nil && !errors.Is(err, repo.ErrLocked) {
				return a, err
			}
			if err == nil {
				a = translated
			}
		}
	}

	if a.AIComment == "" {
		if comment := env.Enricher.Comment(ctx, a); comment != "" {
			err := env.Articles.SaveCommentWithLock(ctx, a.ID, comment)
			if err != nil && !errors.Is(err, repo.ErrLocked) {
				return a, err
			}
			if err == nil {
				a.AIComment = comment
			}
		}
	}
	return a, nil
}

func onlyClaimed(raws []model.RawArticle, claimed []uint64) []model.RawArticle {
	ok := make(map[uint64]bool, len(claimed))
	for _, id := range claimed {
		ok[id] = true
	}
	out := raws[:0]
	for _, r := range raws {
		if ok[r.ID] {
			out = append(out, r)
		}
	}
	return out
}
