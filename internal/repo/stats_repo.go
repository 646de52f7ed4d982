package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/iceymoss/go-news/pkg/db"
	"github.com/iceymoss/go-news/pkg/db/objects"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Bucket 分组计数
type Bucket struct {
	Name  string `db:"name" json:"name"`
	Count int64  `db:"cnt" json:"count"`
}

// Stats 文章库统计
type Stats struct {
	Total       int64    `db:"total" json:"total"`
	Translated  int64    `db:"translated" json:"translated"`
	WithComment int64    `db:"with_comment" json:"with_comment"`
	ByCategory  []Bucket `db:"-" json:"by_category"`
	ByLanguage  []Bucket `db:"-" json:"by_language"`
	BySource    []Bucket `db:"-" json:"by_source"`
}

// RawStats 暂存表统计
type RawStats struct {
	Total      int64    `json:"total"`
	ByCategory []Bucket `json:"by_category"`
	BySource   []Bucket `json:"by_source"`
}

// StatsRepo 聚合查询用 squirrel 拼 SQL，sqlx 扫描，和 gorm 共用连接池
type StatsRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// NewStatsRepo driver 决定占位符风格
func NewStatsRepo(conn *gorm.DB, driver string) (*StatsRepo, error) {
	pool, err := conn.DB()
	if err != nil {
		return nil, err
	}

	sqlxDriver := "sqlite3"
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	switch driver {
	case db.DriverMySQL:
		sqlxDriver = "mysql"
	case db.DriverPostgres, "postgresql":
		sqlxDriver = "pgx"
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &StatsRepo{db: sqlx.NewDb(pool, sqlxDriver), sb: sb}, nil
}

// Stats since 非零时只统计该时间之后发布的文章
func (r *StatsRepo) Stats(ctx context.Context, since time.Time) (Stats, error) {
	var st Stats
	table := objects.NewsArticle{}.TableName()

	where := sq.And{}
	if !since.IsZero() {
		where = append(where, sq.GtOrEq{"publish_time": since.UTC()})
	}

	query, args, err := r.sb.
		Select(
			"COUNT(*) AS total",
			"COALESCE(SUM(CASE WHEN translated THEN 1 ELSE 0 END), 0) AS translated",
			"COALESCE(SUM(CASE WHEN ai_comment <> '' THEN 1 ELSE 0 END), 0) AS with_comment",
		).
		From(table).
		Where(where).
		ToSql()
	if err != nil {
		return st, err
	}
	if err := r.db.GetContext(ctx, &st, query, args...); err != nil {
		return st, fmt.Errorf("stats totals: %w", err)
	}

	if st.ByCategory, err = r.groupCount(ctx, table, "category", where); err != nil {
		return st, err
	}
	if st.ByLanguage, err = r.groupCount(ctx, table, "language", where); err != nil {
		return st, err
	}
	if st.BySource, err = r.groupCount(ctx, table, "source", where); err != nil {
		return st, err
	}
	return st, nil
}

// RawStats 暂存表按板块、来源统计
func (r *StatsRepo) RawStats(ctx context.Context) (RawStats, error) {
	var st RawStats
	table := objects.RawArticle{}.TableName()

	query, args, err := r.sb.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return st, err
	}
	if err := r.db.GetContext(ctx, &st.Total, query, args...); err != nil {
		return st, fmt.Errorf("raw stats total: %w", err)
	}
	if st.ByCategory, err = r.groupCount(ctx, table, "category", sq.And{}); err != nil {
		return st, err
	}
	if st.BySource, err = r.groupCount(ctx, table, "source", sq.And{}); err != nil {
		return st, err
	}
	return st, nil
}

func (r *StatsRepo) groupCount(ctx context.Context, table, column string, where sq.And) ([]Bucket, error) {
	query, args, err := r.sb.
		Select(column+" AS name", "COUNT(*) AS cnt").
		From(table).
		Where(where).
		GroupBy(column).
		OrderBy("cnt DESC", column+" ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	buckets := []Bucket{}
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, fmt.Errorf("group by %s: %w", column, err)
	}
	return buckets, nil
}
