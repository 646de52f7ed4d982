package repo

import (
	"context"
	"time"

	"github.com/iceymoss/go-news/pkg/db/objects"

	"gorm.io/gorm"
)

type JobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) *JobRepo { return &JobRepo{db: db} }

// GetActiveJobs 获取所有开启的任务
func (r *JobRepo) GetActiveJobs(ctx context.Context) ([]*objects.SysJob, error) {
	var list []*objects.SysJob
	err := r.db.WithContext(ctx).Where("status = ?", 1).Find(&list).Error
	return list, err
}

// CreateLog 开始记录日志
func (r *JobRepo) CreateLog(ctx context.Context, log *objects.SysJobLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// UpdateLog 任务结束更新日志
func (r *JobRepo) UpdateLog(ctx context.Context, log *objects.SysJobLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// RecentLogs 最近的运行记录，jobName 为空时不过滤
func (r *JobRepo) RecentLogs(ctx context.Context, jobName string, limit int) ([]objects.SysJobLog, error) {
	q := r.db.WithContext(ctx).Order("id DESC")
	if jobName != "" {
		q = q.Where("job_name = ?", jobName)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []objects.SysJobLog
	err := q.Find(&logs).Error
	return logs, err
}

// UpdateNextRun 记录数据库任务的下次执行时间，看板展示用
func (r *JobRepo) UpdateNextRun(ctx context.Context, jobID uint, next time.Time) error {
	return r.db.WithContext(ctx).Model(&objects.SysJob{}).
		Where("id = ?", jobID).Update("next_run_time", next).Error
}
