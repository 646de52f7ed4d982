package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iceymoss/go-news/internal/conf"
	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/tasks"
	"github.com/iceymoss/go-news/pkg/db/objects"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTimeout 单次运行超时，抓取加 LLM 调用时间给长一点
const DefaultTimeout = 65 * time.Minute

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobRunning  = errors.New("job is already running")
)

var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type job struct {
	name     string
	taskName string
	task     core.Task
	params   map[string]any
	source   tasks.Source
	schedule cron.Schedule // 手动任务为 nil
	dbID     uint          // sys_jobs 主键，非数据库任务为 0
}

type Scheduler struct {
	cron    *cron.Cron
	env     *core.Env
	guard   RunGuard
	Stats   *StatManager
	timeout time.Duration
	log     *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*job
}

func NewScheduler(env *core.Env, guard RunGuard) *Scheduler {
	log := env.Log.With(zap.String("component", "scheduler"))
	if guard == nil {
		guard = NewRunGuard(nil, 0)
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithChain(cron.Recover(cronLogger{log.Sugar()})),
		),
		env:     env,
		guard:   guard,
		Stats:   NewStatManager(),
		timeout: DefaultTimeout,
		log:     log,
		jobs:    make(map[string]*job),
	}
}

// AddJob 添加定时任务
func (s *Scheduler) AddJob(cronExpr, taskName, uniqueJobName string, params map[string]any, source tasks.Source) error {
	return s.addJob(cronExpr, taskName, uniqueJobName, params, source, 0)
}

func (s *Scheduler) addJob(cronExpr, taskName, uniqueJobName string, params map[string]any, source tasks.Source, dbID uint) error {
	// 1. 获取任务实现
	taskInstance, err := tasks.GetTask(taskName, s.env)
	if err != nil {
		return err
	}
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron %q: %w", cronExpr, err)
	}

	s.mu.Lock()
	if _, exists := s.jobs[uniqueJobName]; exists {
		s.mu.Unlock()
		return fmt.Errorf("job %s already scheduled", uniqueJobName)
	}
	j := &job{
		name:     uniqueJobName,
		taskName: taskName,
		task:     taskInstance,
		params:   params,
		source:   source,
		schedule: schedule,
		dbID:     dbID,
	}
	s.jobs[uniqueJobName] = j
	s.mu.Unlock()

	// 2. 初始化状态
	s.Stats.Set(uniqueJobName, &JobStats{
		Name:        uniqueJobName,
		Task:        taskName,
		CronExpr:    cronExpr,
		Status:      StatusIdle,
		LastResult:  "Pending",
		NextRunTime: formatTime(schedule.Next(time.Now())),
		Source:      string(source),
	})

	// 3. 加入 Cron
	// 结果已由 execute 写入状态和运行日志
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		_ = s.execute(context.Background(), j)
	}))
	return nil
}

// LoadConfigJobs 注册配置文件里的任务，返回成功注册的任务名
func (s *Scheduler) LoadConfigJobs(jobs []conf.JobConfig) map[string]bool {
	loaded := make(map[string]bool)
	for _, jc := range jobs {
		if !jc.Enable {
			continue
		}
		if err := s.AddJob(jc.Cron, jc.Name, jc.Name, jc.Params, tasks.SourceYAML); err != nil {
			s.log.Warn("⚠️ Failed to schedule", zap.String("job", jc.Name), zap.Error(err))
			continue
		}
		loaded[jc.Name] = true
		s.log.Info("✅ Job scheduled", zap.String("job", jc.Name), zap.String("cron", jc.Cron))
	}
	return loaded
}

// LoadDBJobs 注册 sys_jobs 表中启用的任务
func (s *Scheduler) LoadDBJobs(ctx context.Context) error {
	list, err := s.env.Jobs.GetActiveJobs(ctx)
	if err != nil {
		return err
	}
	for _, row := range list {
		params := map[string]any{}
		if row.Params != "" {
			if err := json.Unmarshal([]byte(row.Params), &params); err != nil {
				s.log.Warn("⚠️ 任务参数不是合法 JSON", zap.String("job", row.Name), zap.Error(err))
				continue
			}
		}
		if err := s.addJob(row.CronExpr, row.ServiceHandler, row.Name, params, tasks.SourceDB, row.ID); err != nil {
			s.log.Warn("⚠️ Failed to schedule", zap.String("job", row.Name), zap.Error(err))
			continue
		}
		s.log.Info("✅ DB job scheduled", zap.String("job", row.Name), zap.String("cron", row.CronExpr))
	}
	return nil
}

// RunNow 同步执行一个已注册的任务实现，命令行使用
func (s *Scheduler) RunNow(ctx context.Context, taskName string, params map[string]any) error {
	t, err := tasks.GetTask(taskName, s.env)
	if err != nil {
		return err
	}
	if params == nil {
		params = tasks.DefaultParams(taskName)
	}
	j := &job{name: taskName, taskName: taskName, task: t, params: params, source: tasks.SourceManual}
	s.ensureStats(j)
	return s.execute(ctx, j)
}

// ManualRun 手动触发，异步执行
// name 可以是已调度的任务名，也可以是只注册未调度的任务实现
func (s *Scheduler) ManualRun(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		t, err := tasks.GetTask(name, s.env)
		if err != nil {
			return ErrJobNotFound
		}
		j = &job{name: name, taskName: name, task: t, params: tasks.DefaultParams(name), source: tasks.SourceManual}
		s.ensureStats(j)
	}
	if st, ok := s.Stats.Get(name); ok && st.Status == StatusRunning {
		return ErrJobRunning
	}
	// 异步执行，失败记录在状态和运行日志里
	go func() { _ = s.execute(context.Background(), j) }()
	return nil
}

func (s *Scheduler) ensureStats(j *job) {
	if _, ok := s.Stats.Get(j.name); ok {
		return
	}
	s.Stats.Set(j.name, &JobStats{
		Name:       j.name,
		Task:       j.taskName,
		Status:     StatusIdle,
		LastResult: "Pending",
		Source:     string(j.source),
	})
}

// execute 执行并记录状态和运行日志
func (s *Scheduler) execute(parent context.Context, j *job) error {
	log := s.log.With(zap.String("job", j.name))

	release, ok, err := s.guard.Acquire(parent, j.name)
	if err != nil {
		log.Error("❌ [Schedule] acquire run lock failed", zap.Error(err))
		return err
	}
	if !ok {
		log.Warn("⏭️ [Schedule] skipped, another run in progress")
		s.Stats.Update(j.name, func(st *JobStats) { st.LastResult = "Skipped: already running" })
		return ErrJobRunning
	}
	defer release()

	runID := uuid.NewString()
	start := time.Now()
	s.Stats.Update(j.name, func(st *JobStats) {
		st.Status = StatusRunning
		st.LastRunTime = formatTime(start)
		st.LastRunID = runID
		st.RunCount++
	})

	entry := &objects.SysJobLog{
		RunID:       runID,
		JobName:     j.name,
		HandlerName: j.taskName,
		Source:      string(j.source),
		Status:      objects.JobRunning,
		StartTime:   start.UTC(),
	}
	if s.env.Jobs != nil {
		if err := s.env.Jobs.CreateLog(parent, entry); err != nil {
			log.Warn("⚠️ 写入运行日志失败", zap.Error(err))
		}
	}

	log.Info("🚀 [Schedule] Starting job", zap.String("run_id", runID))

	// 执行 (带超时控制)
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	runErr := j.task.Run(ctx, j.params)

	end := time.Now()
	endUTC := end.UTC()
	entry.EndTime = &endUTC
	entry.DurationMs = end.Sub(start).Milliseconds()

	status, result := StatusIdle, "Success"
	switch {
	case runErr == nil:
		entry.Status = objects.JobSuccess
		log.Info("✅ [Schedule] Job finished", zap.Int64("cost_ms", entry.DurationMs))
	case core.IsWarning(runErr):
		entry.Status = objects.JobWarning
		entry.ErrorMsg = runErr.Error()
		status, result = StatusWarning, "Warning: "+runErr.Error()
		log.Warn("⚠️ [Schedule] Job finished with warning", zap.Error(runErr))
	default:
		entry.Status = objects.JobFailed
		entry.ErrorMsg = runErr.Error()
		status, result = StatusError, "Error: "+runErr.Error()
		log.Error("❌ [Schedule] Job failed", zap.Error(runErr))
	}

	var next time.Time
	if j.schedule != nil {
		next = j.schedule.Next(end)
	}
	s.Stats.Update(j.name, func(st *JobStats) {
		st.Status = status
		st.LastResult = result
		st.LastCostMs = entry.DurationMs
		if !next.IsZero() {
			st.NextRunTime = formatTime(next)
		}
	})

	if s.env.Jobs != nil {
		bg := context.WithoutCancel(parent)
		if err := s.env.Jobs.UpdateLog(bg, entry); err != nil {
			log.Warn("⚠️ 更新运行日志失败", zap.Error(err))
		}
		if j.dbID != 0 && !next.IsZero() {
			if err := s.env.Jobs.UpdateNextRun(bg, j.dbID, next.UTC()); err != nil {
				log.Warn("⚠️ 更新下次执行时间失败", zap.Error(err))
			}
		}
	}
	return runErr
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger 把 cron 内部日志接到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
