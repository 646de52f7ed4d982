package news

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/internal/render"
	"github.com/iceymoss/go-news/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPage(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.public, name))
	require.NoError(t, err)
	return string(data)
}

func TestDigestTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	date := utils.DateInChina(time.Now())

	task := NewDigestTask(env.Env)
	require.NoError(t, task.Run(ctx, map[string]any{"date": date}))

	// 三条新闻入库，英文已翻译并带点评
	rep := env.Board.Latest(DigestTaskName)
	require.NotNil(t, rep)
	assert.Equal(t, 3, rep.New)
	assert.Equal(t, 3, rep.Saved)
	assert.Equal(t, 3, rep.Rendered)

	fed, err := env.Articles.GetByKey(ctx, model.LangEN, "Fed holds rates steady")
	require.NoError(t, err)
	assert.True(t, fed.Translated)
	assert.Equal(t, "美联储维持利率不变", fed.Title)
	assert.Equal(t, "市场预期之内，短期影响有限。", fed.AIComment)

	page := readPage(t, env, render.DigestName(date))
	assert.Equal(t, 3, strings.Count(page, `<article class="news-card`))
	assert.Contains(t, page, "美联储维持利率不变")
	assert.Contains(t, readPage(t, env, render.IndexName), render.DigestName(date))

	// 再跑一次全部命中缓存，不再调用模型
	calls := env.llm.count()
	require.NoError(t, task.Run(ctx, map[string]any{"date": date}))
	rep = env.Board.Latest(DigestTaskName)
	assert.Equal(t, 0, rep.New)
	assert.Equal(t, 3, rep.Cached)
	assert.Equal(t, 3, rep.Rendered)
	assert.Equal(t, calls, env.llm.count())
}

func TestRegenerateTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, NewDigestTask(env.Env).Run(ctx, nil))

	// 删掉页面后从数据库重建
	require.NoError(t, os.RemoveAll(env.public))
	require.NoError(t, NewRegenerateTask(env.Env).Run(ctx, map[string]any{"days": 7}))

	arts, err := env.Articles.ListByDays(ctx, 7, time.Now())
	require.NoError(t, err)
	total := 0
	for date, list := range GroupByDate(arts) {
		page := readPage(t, env, render.DigestName(date))
		n := strings.Count(page, `<article class="news-card`)
		assert.Equal(t, len(list), n)
		total += n
	}
	assert.Equal(t, 3, total)
	assert.FileExists(t, filepath.Join(env.public, render.IndexName))
}

func TestRegenerateEmptyIsWarning(t *testing.T) {
	env := newTestEnv(t)
	err := NewRegenerateTask(env.Env).Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, core.IsWarning(err))
}

func TestProcessRawTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, NewFetchRawTask(env.Env).Run(ctx, nil))
	n, err := env.Raw.CountRaw(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, NewProcessRawTask(env.Env).Run(ctx, nil))
	rep := env.Board.Latest(ProcessRawTaskName)
	require.NotNil(t, rep)
	assert.Equal(t, 3, rep.Input)
	assert.Equal(t, 3, rep.Saved)

	// 翻译和点评通过加锁路径写入
	fed, err := env.Articles.GetByKey(ctx, model.LangEN, "Fed holds rates steady")
	require.NoError(t, err)
	assert.True(t, fed.Translated)
	assert.NotEmpty(t, fed.AIComment)
	locks, err := env.Articles.LockedCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, locks.Translation)
	assert.Zero(t, locks.Comment)

	// 暂存记录已处理，不会再被领取
	pending, err := env.Raw.ListRaw(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = NewProcessRawTask(env.Env).Run(ctx, nil)
	assert.True(t, core.IsWarning(err), "暂存表为空只是告警")

	// 再抓一次后处理并清理
	require.NoError(t, NewFetchRawTask(env.Env).Run(ctx, nil))
	require.NoError(t, NewProcessRawTask(env.Env).Run(ctx, map[string]any{"clear": true}))
	assert.Equal(t, 3, env.Board.Latest(ProcessRawTaskName).Cached)
	n, err = env.Raw.CountRaw(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
