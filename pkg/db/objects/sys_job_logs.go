package objects

import "time"

const (
	JobRunning = 0
	JobSuccess = 1
	JobFailed  = 2
	JobWarning = 3 // 没有可渲染的文章等非致命结果
)

// SysJobLog 对应 sys_job_logs 表
type SysJobLog struct {
	ID          uint   `gorm:"primarykey"`
	RunID       string `gorm:"index;size:64"`
	JobName     string `gorm:"index;size:128"`
	HandlerName string `gorm:"size:128"`
	Source      string `gorm:"size:16"` // SYSTEM / YAML / DB / MANUAL
	Status      int
	ErrorMsg    string `gorm:"type:text"`
	DurationMs  int64
	StartTime   time.Time
	EndTime     *time.Time
}

func (s SysJobLog) TableName() string {
	return "sys_job_logs"
}
