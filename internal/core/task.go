package core

import (
	"context"

	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/xerr"
)

// TaskCreator 定义任务构造函数签名，依赖统一从 Env 取
type TaskCreator func(env *Env) Task

// Task 任务接口
type Task interface {
	// Run 执行任务逻辑
	// params 是从配置文件传入的动态参数
	Run(ctx context.Context, params map[string]any) error

	// Identifier 返回任务唯一标识 (用于日志)
	Identifier() string
}

// IsWarning 没有可渲染的文章只算告警，不算任务失败
func IsWarning(err error) bool {
	return err != nil && perrors.HasCode(err, xerr.NOTHING_TO_RENDER)
}
