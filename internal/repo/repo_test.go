package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/pkg/db"
	"github.com/iceymoss/go-news/pkg/db/objects"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/transaction"
	"github.com/iceymoss/go-news/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) (*gorm.DB, *transaction.Manager) {
	dsn := filepath.Join(t.TempDir(), "news.db") + "?_txlock=immediate"
	conn, err := db.Open(db.Options{Driver: db.DriverSQLite, DSN: dsn, LogLevel: "silent", MaxOpen: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })
	require.NoError(t, Migrate(context.Background(), conn))
	return conn, transaction.NewManager(conn)
}

func zh(title string, cat model.Category, ago time.Duration) model.Article {
	return model.Article{
		Title:       title,
		Content:     "正文",
		Source:      "财新",
		Category:    cat,
		Language:    model.LangZH,
		PublishTime: now.Add(-ago),
		CrawlTime:   now,
	}
}

func en(title string, cat model.Category, ago time.Duration) model.Article {
	return model.Article{
		TitleOriginal:   title,
		ContentOriginal: "body",
		Source:          "Reuters",
		Category:        cat,
		Language:        model.LangEN,
		PublishTime:     now.Add(-ago),
		CrawlTime:       now,
	}
}

func TestArticleSaveAndLookup(t *testing.T) {
	ctx := context.Background()
	_, tx := openTestDB(t)
	r := NewArticleRepo(tx)

	a := zh("央行宣布降准", model.CategoryDomestic, time.Hour)
	a.Tags = []string{"货币政策"}
	require.NoError(t, r.Save(ctx, &a))
	assert.NotZero(t, a.ID)

	ok, err := r.Exists(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.GetByKey(ctx, model.LangZH, "央行宣布降准")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, []string{"货币政策"}, got.Tags)
	assert.True(t, got.PublishTime.Equal(a.PublishTime))
	assert.False(t, got.IsNew())

	dup := zh("央行宣布降准", model.CategoryDomestic, 0)
	err = r.Save(ctx, &dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyExists), "唯一键冲突应返回 ErrAlreadyExists: %v", err)
	assert.Equal(t, xerr.ARTICLE_EXISTS, perrors.CodeOf(err))

	_, err = r.GetByKey(ctx, model.LangEN, "央行宣布降准")
	assert.True(t, errors.Is(err, ErrNotFound), "不同语言的同名标题不是同一条")
}

func TestListByDays(t *testing.T) {
	ctx := context.Background()
	_, tx := openTestDB(t)
	r := NewArticleRepo(tx)

	for _, a := range []model.Article{
		zh("一小时前", model.CategoryDomestic, time.Hour),
		zh("两天前", model.CategoryDomestic, 48*time.Hour+time.Minute),
		zh("三小时前", model.CategoryDomestic, 3*time.Hour),
	} {
		a := a
		require.NoError(t, r.Save(ctx, &a))
	}

	list, err := r.ListByDays(ctx, 1, now)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "一小时前", list[0].Title)
	assert.Equal(t, "三小时前", list[1].Title)
}

func TestTranslationLockStateMachine(t *testing.T) {
	ctx := context.Background()
	_, tx := openTestDB(t)
	r := NewArticleRepo(tx)

	a := en("Fed holds rates", model.CategoryUSEurope, time.Hour)
	require.NoError(t, r.Save(ctx, &a))

	// 其他 worker 持有锁
	require.NoError(t, r.TryLock(ctx, a.ID, LockTranslation))
	assert.True(t, errors.Is(r.TryLock(ctx, a.ID, LockTranslation), ErrLocked))

	counts, err := r.LockedCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Translation)

	translated := a
	translated.Title = "美联储维持利率不变"
	translated.Content = "美联储宣布维持利率"
	translated.Translated = true
	translated.TranslationMethod = "openai"
	assert.True(t, errors.Is(r.SaveTranslationWithLock(ctx, a.ID, translated), ErrLocked))

	require.NoError(t, r.Release(ctx, a.ID, LockTranslation))
	require.NoError(t, r.SaveTranslationWithLock(ctx, a.ID, translated))

	// done 之后不能再写
	assert.True(t, errors.Is(r.SaveTranslationWithLock(ctx, a.ID, translated), ErrLocked))

	got, err := r.GetByKey(ctx, model.LangEN, "Fed holds rates")
	require.NoError(t, err)
	assert.Equal(t, "美联储维持利率不变", got.Title)
	assert.True(t, got.Translated)

	require.NoError(t, r.SaveCommentWithLock(ctx, a.ID, "利率按兵不动，市场已提前消化。"))
	got, err = r.GetByKey(ctx, model.LangEN, "Fed holds rates")
	require.NoError(t, err)
	assert.Equal(t, "利率按兵不动，市场已提前消化。", got.AIComment)

	counts, err = r.LockedCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, LockCounts{}, counts)
}

func TestRawStagingLifecycle(t *testing.T) {
	ctx := context.Background()
	_, tx := openTestDB(t)
	r := NewRawRepo(tx)

	n, err := r.SaveRaw(ctx, []model.RawArticle{
		{Title: "国内新闻", Source: "新华", Category: model.CategoryDomestic, Language: model.LangZH, PublishTime: "2026-01-26 10:00:00"},
		{TitleOriginal: "Asia news", Source: "Nikkei", Category: model.CategoryAsiaPacific, Language: model.LangEN, CrawlTime: "2026-01-26T10:00:00Z"},
		{Title: "国内新闻2", Source: "新华", Category: model.CategoryDomestic, Language: model.LangZH},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	domestic, err := r.ListRaw(ctx, model.CategoryDomestic, 0)
	require.NoError(t, err)
	require.Len(t, domestic, 2)
	assert.Equal(t, "2026-01-26 10:00:00", domestic[0].PublishTime)

	all, err := r.ListRaw(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	ids := []uint64{all[0].ID, all[1].ID}
	claimed, err := r.Claim(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, ids, claimed)

	again, err := r.Claim(ctx, ids)
	require.NoError(t, err)
	assert.Empty(t, again, "已领取的记录不能重复领取")

	free, err := r.ListRaw(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, free, 1)

	require.NoError(t, r.Complete(ctx, ids[:1]))
	counts, err := r.LockedCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Translation)

	cleared, err := r.ClearRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared, "处理中的记录保留")

	total, err := r.CountRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, r.Unclaim(ctx, ids[1:]))
	free, err = r.ListRaw(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, free, 1)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	conn, tx := openTestDB(t)
	articles := NewArticleRepo(tx)

	withComment := en("ECB cuts rates", model.CategoryUSEurope, time.Hour)
	withComment.Title = "欧洲央行降息"
	withComment.Translated = true
	withComment.AIComment = "降息落地。"
	for _, a := range []model.Article{
		zh("沪指收涨", model.CategoryDomestic, time.Hour),
		withComment,
		en("Oil slides", model.CategoryUSEurope, 72*time.Hour),
	} {
		a := a
		require.NoError(t, articles.Save(ctx, &a))
	}

	_, err := NewRawRepo(tx).SaveRaw(ctx, []model.RawArticle{{Title: "x", Source: "s", Category: model.CategoryDomestic}})
	require.NoError(t, err)

	stats, err := NewStatsRepo(conn, db.DriverSQLite)
	require.NoError(t, err)

	st, err := stats.Stats(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Total)
	assert.Equal(t, int64(1), st.Translated)
	assert.Equal(t, int64(1), st.WithComment)
	assert.Equal(t, []Bucket{{Name: "us_europe", Count: 2}, {Name: "domestic", Count: 1}}, st.ByCategory)
	assert.Equal(t, []Bucket{{Name: "en", Count: 2}, {Name: "zh", Count: 1}}, st.ByLanguage)

	recent, err := stats.Stats(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent.Total)

	raw, err := stats.RawStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw.Total)
	assert.Equal(t, []Bucket{{Name: "domestic", Count: 1}}, raw.ByCategory)
}

func TestJobLogs(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)
	r := NewJobRepo(conn)

	log := &objects.SysJobLog{RunID: "r1", JobName: "news:digest", Status: objects.JobRunning, StartTime: now}
	require.NoError(t, r.CreateLog(ctx, log))
	end := now.Add(time.Minute)
	log.Status = objects.JobSuccess
	log.EndTime = &end
	log.DurationMs = 60000
	require.NoError(t, r.UpdateLog(ctx, log))
	require.NoError(t, r.CreateLog(ctx, &objects.SysJobLog{RunID: "r2", JobName: "news:regenerate", StartTime: now}))

	logs, err := r.RecentLogs(ctx, "news:digest", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, objects.JobSuccess, logs[0].Status)

	logs, err = r.RecentLogs(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "r2", logs[0].RunID)
}

func TestActiveJobs(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)
	r := NewJobRepo(conn)

	on := &objects.SysJob{Name: "daily", CronExpr: "0 0 7 * * *", ServiceHandler: "news:digest", Params: `{"notify":true}`, Status: 1}
	require.NoError(t, conn.Create(on).Error)
	require.NoError(t, conn.Create(&objects.SysJob{Name: "off", CronExpr: "@daily", ServiceHandler: "news:regenerate", Status: 1}).Error)
	require.NoError(t, conn.Model(&objects.SysJob{}).Where("name = ?", "off").Update("status", 0).Error)

	jobs, err := r.GetActiveJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "news:digest", jobs[0].ServiceHandler)

	next := now.Add(time.Hour)
	require.NoError(t, r.UpdateNextRun(ctx, on.ID, next))
	var got objects.SysJob
	require.NoError(t, conn.First(&got, on.ID).Error)
	require.NotNil(t, got.NextRunTime)
	assert.True(t, got.NextRunTime.Equal(next))
}
