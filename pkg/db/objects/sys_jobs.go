package objects

import (
	"time"

	"gorm.io/gorm"
)

// SysJob 对应 sys_jobs 表，数据库里配置的定时任务
type SysJob struct {
	ID             uint   `gorm:"primarykey"`
	Name           string `gorm:"uniqueIndex;size:128"` // 任务名称
	CronExpr       string `gorm:"size:64"`
	ServiceHandler string `gorm:"size:128"`  // 对应注册表里的任务名，如 news:digest
	Params         string `gorm:"type:text"` // JSON 字符串
	Status         int    `gorm:"default:1"` // 1 Enable, 0 Disable
	NextRunTime    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (SysJob) TableName() string {
	return "sys_jobs"
}
