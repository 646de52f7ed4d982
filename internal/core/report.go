package core

import (
	"context"
	"sync"

	"github.com/iceymoss/go-news/internal/pipeline"

	"go.uber.org/zap"
)

// ReportBoard 进程内保存每个任务最近一次的流水线报告
type ReportBoard struct {
	mu     sync.RWMutex
	last   *pipeline.Report
	byTask map[string]*pipeline.Report
}

func NewReportBoard() *ReportBoard {
	return &ReportBoard{byTask: make(map[string]*pipeline.Report)}
}

func (b *ReportBoard) Put(rep *pipeline.Report) {
	if rep == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = rep
	b.byTask[rep.Task] = rep
}

// Latest task 为空时返回所有任务中最近的一次
func (b *ReportBoard) Latest(task string) *pipeline.Report {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if task == "" {
		return b.last
	}
	return b.byTask[task]
}

// Record 结束报告：写日志、放入看板、归档到 mongo
// 归档失败只记日志
func (e *Env) Record(ctx context.Context, rep *pipeline.Report) {
	rep.Finish()
	e.Log.Info("📊 流水线报告", rep.Fields()...)
	e.Board.Put(rep)
	if err := e.Reports.Save(ctx, rep); err != nil {
		e.Log.Error("❌ 报告归档失败", zap.String("run_id", rep.RunID), zap.Error(err))
	}
}

// LatestReport 优先取进程内的报告，重启后回退到 mongo
func (e *Env) LatestReport(ctx context.Context, task string) (*pipeline.Report, error) {
	if rep := e.Board.Latest(task); rep != nil {
		return rep, nil
	}
	return e.Reports.Latest(ctx, task)
}
