package tasks

import (
	"fmt"
	"sort"
	"sync"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/pkg/logger"

	"go.uber.org/zap"
)

// Source 任务来源
type Source string

const (
	SourceSystem Source = "SYSTEM" // 代码中 RegisterAuto 注册
	SourceYAML   Source = "YAML"   // 配置文件 jobs
	SourceDB     Source = "DB"     // sys_jobs 表
	SourceManual Source = "MANUAL" // 命令行或接口手动触发
)

type Scheduler interface {
	AddJob(cronExpr, taskName, uniqueJobName string, params map[string]any, source Source) error
}

// ApplyAutoJobs 把 RegisterAuto 登记的任务挂到调度器上
// skip 中的任务名跳过，用于配置文件覆盖同名任务
func ApplyAutoJobs(sched Scheduler, skip map[string]bool) {
	mu.RLock()
	defer mu.RUnlock()

	for _, job := range autoJobs {
		if skip[job.Name] {
			logger.Info("⏭️ [AutoLoad] overridden by config", zap.String("job", job.Name))
			continue
		}
		err := sched.AddJob(job.Cron, job.Name, job.Name, job.Params, SourceSystem)
		if err != nil {
			logger.Error("❌ [AutoLoad] failed to load", zap.String("job", job.Name), zap.Error(err))
		} else {
			logger.Info("✅ [AutoLoad] loaded", zap.String("job", job.Name), zap.String("cron", job.Cron))
		}
	}
}

// AutoJob 定义一个“自启动任务”的结构
type AutoJob struct {
	Name    string           // 任务唯一标识
	Cron    string           // Cron 表达式
	Creator core.TaskCreator // 构造函数
	Params  map[string]any   // 默认参数
}

var (
	registry = make(map[string]core.TaskCreator) // 普通任务注册（供 Config 调用）
	autoJobs = make([]*AutoJob, 0)               // 自动任务列表（供代码直接启动）
	mu       sync.RWMutex
)

// Register 注册任务实现，配置文件和命令行按名字引用
func Register(name string, creator core.TaskCreator) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = creator
}

// RegisterAuto 注册并自动启动
func RegisterAuto(name string, cron string, creator core.TaskCreator, defaultParams map[string]any) {
	mu.Lock()
	defer mu.Unlock()

	// 1. 先注册到普通池子（这样 Web 界面也能手动触发）
	registry[name] = creator

	// 2. 加入自动启动列表
	autoJobs = append(autoJobs, &AutoJob{
		Name:    name,
		Cron:    cron,
		Creator: creator,
		Params:  defaultParams,
	})
}

// GetTask 按名字创建任务实例
func GetTask(name string, env *core.Env) (core.Task, error) {
	mu.RLock()
	defer mu.RUnlock()
	creator, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("task implementation '%s' not found", name)
	}
	return creator(env), nil
}

// Names 已注册的任务名，排序后返回
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultParams RegisterAuto 登记的默认参数，手动触发时使用
func DefaultParams(name string) map[string]any {
	mu.RLock()
	defer mu.RUnlock()
	for _, job := range autoJobs {
		if job.Name == name {
			return job.Params
		}
	}
	return nil
}
