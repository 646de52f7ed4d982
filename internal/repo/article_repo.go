package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/pkg/db"
	"github.com/iceymoss/go-news/pkg/db/objects"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/transaction"
	"github.com/iceymoss/go-news/pkg/xerr"

	"gorm.io/gorm"
)

// ArticleRepo news_articles 表的读写
type ArticleRepo struct {
	tx *transaction.Manager
}

func NewArticleRepo(tx *transaction.Manager) *ArticleRepo {
	return &ArticleRepo{tx: tx}
}

// Migrate 建表
func Migrate(ctx context.Context, conn *gorm.DB) error {
	return conn.WithContext(ctx).AutoMigrate(
		&objects.NewsArticle{},
		&objects.RawArticle{},
		&objects.SysJob{},
		&objects.SysJobLog{},
	)
}

// Exists 按去重键判断是否已入库
func (r *ArticleRepo) Exists(ctx context.Context, a model.Article) (bool, error) {
	var n int64
	err := r.tx.DB(ctx).Model(&objects.NewsArticle{}).
		Where("dedup_hash = ?", hashOf(a)).
		Count(&n).Error
	return n > 0, err
}

// GetByKey 按语言和去重键读取缓存文章，不存在返回 ErrNotFound
func (r *ArticleRepo) GetByKey(ctx context.Context, lang model.Language, key string) (model.Article, error) {
	var row objects.NewsArticle
	err := r.tx.DB(ctx).Where("dedup_hash = ?", objects.DedupHash(string(lang), key)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Article{}, perrors.Wrap(xerr.ErrResourceNotFound, "article not found", err)
	}
	if err != nil {
		return model.Article{}, err
	}
	return toArticle(row), nil
}

// Save 插入新文章并回填 ID
// 唯一键冲突返回 ErrAlreadyExists，调用方按“已存在”跳过
func (r *ArticleRepo) Save(ctx context.Context, a *model.Article) error {
	if a.DedupKey() == "" {
		return fmt.Errorf("save article: empty dedup key")
	}
	row := toObject(*a)
	if err := r.tx.DB(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return perrors.Wrap(xerr.ARTICLE_EXISTS, "article already exists", err)
		}
		return fmt.Errorf("save article: %w", err)
	}
	a.ID = row.ID
	return nil
}

// ListByDays 最近 days 天发布的文章，按发布时间倒序
func (r *ArticleRepo) ListByDays(ctx context.Context, days int, now time.Time) ([]model.Article, error) {
	cutoff := now.UTC().Add(-time.Duration(days) * 24 * time.Hour)
	var rows []objects.NewsArticle
	err := r.tx.DB(ctx).
		Where("publish_time >= ?", cutoff).
		Order("publish_time DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, toArticle(row))
	}
	return out, nil
}

// TryLock free -> locked，失败返回 ErrLocked
func (r *ArticleRepo) TryLock(ctx context.Context, id uint64, field LockField) error {
	ok, err := casState(r.tx.DB(ctx), objects.NewsArticle{}.TableName(), id, field, objects.StateFree, objects.StateLocked)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release locked -> free，无论之前的处理是否成功都应调用
func (r *ArticleRepo) Release(ctx context.Context, id uint64, field LockField) error {
	_, err := casState(r.tx.DB(ctx), objects.NewsArticle{}.TableName(), id, field, objects.StateLocked, objects.StateFree)
	return err
}

// SaveTranslationWithLock 在一个事务里抢锁、写翻译结果、置为 done
// 翻译结果必须在调用前算好，事务内不做网络调用
func (r *ArticleRepo) SaveTranslationWithLock(ctx context.Context, id uint64, a model.Article) error {
	return r.writeWithLock(ctx, id, LockTranslation, map[string]interface{}{
		"title":              a.Title,
		"content":            a.Content,
		"translated":         a.Translated,
		"translation_method": a.TranslationMethod,
	})
}

// SaveCommentWithLock 同上，写 AI 点评
func (r *ArticleRepo) SaveCommentWithLock(ctx context.Context, id uint64, comment string) error {
	return r.writeWithLock(ctx, id, LockComment, map[string]interface{}{
		"ai_comment": comment,
	})
}

func (r *ArticleRepo) writeWithLock(ctx context.Context, id uint64, field LockField, values map[string]interface{}) error {
	return r.tx.Execute(ctx, nil, func(ctx context.Context) error {
		conn := r.tx.DB(ctx)
		ok, err := casState(conn, objects.NewsArticle{}.TableName(), id, field, objects.StateFree, objects.StateLocked)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLocked
		}

		values[string(field)] = objects.StateDone
		return conn.Model(&objects.NewsArticle{}).Where("id = ?", id).Updates(values).Error
	})
}

// LockedCounts 当前被锁住的行数
func (r *ArticleRepo) LockedCounts(ctx context.Context) (LockCounts, error) {
	return countLocked(r.tx.DB(ctx), objects.NewsArticle{}.TableName())
}

func hashOf(a model.Article) string {
	return objects.DedupHash(string(a.Language), a.DedupKey())
}

func toObject(a model.Article) objects.NewsArticle {
	row := objects.NewsArticle{
		ID:                a.ID,
		DedupHash:         hashOf(a),
		DedupKey:          a.DedupKey(),
		Title:             a.Title,
		TitleOriginal:     a.TitleOriginal,
		Content:           a.Content,
		ContentOriginal:   a.ContentOriginal,
		Source:            a.Source,
		SourceOriginal:    a.SourceOriginal,
		URL:               a.URL,
		Category:          string(a.Category),
		Language:          string(a.Language),
		PublishTime:       a.PublishTime.UTC(),
		CrawlTime:         a.CrawlTime.UTC(),
		Tags:              a.Tags,
		AIComment:         a.AIComment,
		Translated:        a.Translated,
		TranslationMethod: a.TranslationMethod,
		TranslationState:  objects.StateFree,
		CommentState:      objects.StateFree,
	}
	// 入库前已经完成的增强直接标记为 done
	if a.Translated || a.Language == model.LangZH {
		row.TranslationState = objects.StateDone
	}
	if a.AIComment != "" {
		row.CommentState = objects.StateDone
	}
	return row
}

func toArticle(row objects.NewsArticle) model.Article {
	return model.Article{
		ID:                row.ID,
		Title:             row.Title,
		TitleOriginal:     row.TitleOriginal,
		Content:           row.Content,
		ContentOriginal:   row.ContentOriginal,
		Source:            row.Source,
		SourceOriginal:    row.SourceOriginal,
		URL:               row.URL,
		Category:          model.Category(row.Category),
		Language:          model.Language(row.Language),
		PublishTime:       row.PublishTime.UTC(),
		CrawlTime:         row.CrawlTime.UTC(),
		Tags:              row.Tags,
		AIComment:         row.AIComment,
		Translated:        row.Translated,
		TranslationMethod: row.TranslationMethod,
	}
}
