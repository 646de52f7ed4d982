package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/iceymoss/go-news/internal/model"
	"go.uber.org/zap"
)

// CategoryCount 单个板块在各阶段的数量
type CategoryCount struct {
	Input   int `json:"input" bson:"input"`
	Deduped int `json:"deduped" bson:"deduped"`
	Kept    int `json:"kept" bson:"kept"`
	Backup  int `json:"backup" bson:"backup"`
	Final   int `json:"final" bson:"final"`
}

// Report 一次批处理的诊断计数
type Report struct {
	RunID  string `json:"run_id" bson:"run_id"`
	Task   string `json:"task" bson:"task"`
	Scheme string `json:"scheme" bson:"scheme"`

	Input    int `json:"input" bson:"input"`
	Rejected int `json:"rejected" bson:"rejected"`
	Deduped  int `json:"deduped" bson:"deduped"`
	Backup   int `json:"backup" bson:"backup"`
	Final    int `json:"final" bson:"final"`

	New      int `json:"new" bson:"new"`
	Cached   int `json:"cached" bson:"cached"`
	Saved    int `json:"saved" bson:"saved"`
	Skipped  int `json:"skipped" bson:"skipped"`
	Rendered int `json:"rendered" bson:"rendered"`

	PerCategory map[model.Category]*CategoryCount `json:"per_category" bson:"per_category"`
	Shortfalls  map[model.Category]int            `json:"shortfalls,omitempty" bson:"shortfalls,omitempty"`
	Time        TimeStats                         `json:"time" bson:"time"`

	StartedAt  time.Time `json:"started_at" bson:"started_at"`
	FinishedAt time.Time `json:"finished_at" bson:"finished_at"`
}

// NewReport 创建报告并分配运行 ID
func NewReport(task string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Task:        task,
		PerCategory: make(map[model.Category]*CategoryCount),
		Shortfalls:  make(map[model.Category]int),
		StartedAt:   time.Now().UTC(),
	}
}

func (r *Report) category(c model.Category) *CategoryCount {
	cc, ok := r.PerCategory[c]
	if !ok {
		cc = &CategoryCount{}
		r.PerCategory[c] = cc
	}
	return cc
}

// FallbackCount 时间回退总次数
func (r *Report) FallbackCount() int {
	return r.Time.CrawlFallback + r.Time.NowFallback
}

// Finish 记录结束时间
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Fields 转换为结构化日志字段
func (r *Report) Fields() []zap.Field {
	return []zap.Field{
		zap.String("run_id", r.RunID),
		zap.String("task", r.Task),
		zap.String("scheme", r.Scheme),
		zap.Int("input", r.Input),
		zap.Int("rejected", r.Rejected),
		zap.Int("deduped", r.Deduped),
		zap.Int("backup", r.Backup),
		zap.Int("final", r.Final),
		zap.Int("new", r.New),
		zap.Int("cached", r.Cached),
		zap.Int("saved", r.Saved),
		zap.Int("skipped", r.Skipped),
		zap.Int("time_fallback", r.FallbackCount()),
		zap.Int("time_now_fallback", r.Time.NowFallback),
		zap.Any("per_category", r.PerCategory),
		zap.Any("shortfalls", r.Shortfalls),
	}
}
