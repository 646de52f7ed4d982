package repo

import (
	"context"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/pkg/db/objects"
	"github.com/iceymoss/go-news/pkg/transaction"
)

const rawBatchSize = 100

// RawRepo raw_articles 暂存表
type RawRepo struct {
	tx *transaction.Manager
}

func NewRawRepo(tx *transaction.Manager) *RawRepo {
	return &RawRepo{tx: tx}
}

// SaveRaw 批量写入采集结果
func (r *RawRepo) SaveRaw(ctx context.Context, raws []model.RawArticle) (int, error) {
	if len(raws) == 0 {
		return 0, nil
	}
	rows := make([]objects.RawArticle, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, objects.RawArticle{
			Title:            raw.Title,
			TitleOriginal:    raw.TitleOriginal,
			Content:          raw.Content,
			ContentOriginal:  raw.ContentOriginal,
			Source:           raw.Source,
			SourceOriginal:   raw.SourceOriginal,
			URL:              raw.URL,
			Category:         string(raw.Category),
			Language:         string(raw.Language),
			PublishTime:      raw.PublishTime,
			CrawlTime:        raw.CrawlTime,
			TranslationState: objects.StateFree,
			CommentState:     objects.StateFree,
		})
	}
	if err := r.tx.DB(ctx).CreateInBatches(&rows, rawBatchSize).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ListRaw 未被领取的原始记录，category 为空时不过滤，limit<=0 不限
func (r *RawRepo) ListRaw(ctx context.Context, category model.Category, limit int) ([]model.RawArticle, error) {
	q := r.tx.DB(ctx).Where(string(LockTranslation)+" = ?", objects.StateFree).Order("id ASC")
	if category != "" {
		q = q.Where("category = ?", string(category))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []objects.RawArticle
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.RawArticle, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.RawArticle{
			ID:              row.ID,
			Title:           row.Title,
			TitleOriginal:   row.TitleOriginal,
			Content:         row.Content,
			ContentOriginal: row.ContentOriginal,
			Source:          row.Source,
			SourceOriginal:  row.SourceOriginal,
			URL:             row.URL,
			Category:        model.Category(row.Category),
			Language:        model.Language(row.Language),
			PublishTime:     row.PublishTime,
			CrawlTime:       row.CrawlTime,
		})
	}
	return out, nil
}

// CountRaw 暂存表总行数
func (r *RawRepo) CountRaw(ctx context.Context) (int64, error) {
	var n int64
	err := r.tx.DB(ctx).Model(&objects.RawArticle{}).Count(&n).Error
	return n, err
}

// Claim 逐条 free -> locked，返回领取成功的 ID，已被其他 worker 领取的跳过
func (r *RawRepo) Claim(ctx context.Context, ids []uint64) ([]uint64, error) {
	claimed := make([]uint64, 0, len(ids))
	for _, id := range ids {
		ok, err := casState(r.tx.DB(ctx), objects.RawArticle{}.TableName(), id, LockTranslation, objects.StateFree, objects.StateLocked)
		if err != nil {
			return claimed, err
		}
		if ok {
			claimed = append(claimed, id)
		}
	}
	return claimed, nil
}

// Complete locked -> done
func (r *RawRepo) Complete(ctx context.Context, ids []uint64) error {
	return r.transition(ctx, ids, objects.StateLocked, objects.StateDone)
}

// Unclaim locked -> free，处理失败时归还
func (r *RawRepo) Unclaim(ctx context.Context, ids []uint64) error {
	return r.transition(ctx, ids, objects.StateLocked, objects.StateFree)
}

func (r *RawRepo) transition(ctx context.Context, ids []uint64, from, to objects.LockState) error {
	return r.tx.Execute(ctx, nil, func(ctx context.Context) error {
		for _, id := range ids {
			if _, err := casState(r.tx.DB(ctx), objects.RawArticle{}.TableName(), id, LockTranslation, from, to); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearRaw 清理暂存表，正在处理中的行保留
func (r *RawRepo) ClearRaw(ctx context.Context) (int64, error) {
	res := r.tx.DB(ctx).
		Where(string(LockTranslation)+" <> ?", objects.StateLocked).
		Delete(&objects.RawArticle{})
	return res.RowsAffected, res.Error
}

// LockedCounts 暂存表中处理中的行数
func (r *RawRepo) LockedCounts(ctx context.Context) (LockCounts, error) {
	return countLocked(r.tx.DB(ctx), objects.RawArticle{}.TableName())
}

// RawIDs 取出 RawID
func RawIDs(articles []model.Article) []uint64 {
	ids := make([]uint64, 0, len(articles))
	for _, a := range articles {
		if a.RawID != 0 {
			ids = append(ids, a.RawID)
		}
	}
	return ids
}
