package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 三个板块各有一对同标题不同抓取时间的重复 + 两条独立新闻
func TestPipelineDedupPerCategory(t *testing.T) {
	var in []model.Article
	for _, cat := range model.SchemeRegional.Categories {
		dupOld := zhArticle(fmt.Sprintf("%s-重复", cat), "src-old", cat, time.Hour)
		dupNew := dupOld
		dupNew.Source = "src-new"
		dupNew.CrawlTime = dupOld.CrawlTime.Add(10 * time.Minute)

		in = append(in,
			dupOld,
			zhArticle(fmt.Sprintf("%s-独立-1", cat), "a", cat, 0),
			dupNew,
			zhArticle(fmt.Sprintf("%s-独立-2", cat), "b", cat, 0),
		)
	}

	p := New(Options{
		Scheme:            model.SchemeRegional,
		PerCategoryTarget: 3,
		Selector:          SelectorStratified,
		TopN:              3,
		Ordering:          OrderRoundRobin,
	}, nil)
	rep := NewReport("test")
	res := p.Select(in, rep)

	for _, cat := range model.SchemeRegional.Categories {
		list := res.ByCategory[cat]
		require.Len(t, list, 3, "板块 %s", cat)
		for _, a := range list {
			if a.Title == fmt.Sprintf("%s-重复", cat) {
				assert.Equal(t, "src-new", a.Source, "保留后抓取的重复项")
			}
		}
		assert.Equal(t, 4, rep.PerCategory[cat].Input)
		assert.Equal(t, 3, rep.PerCategory[cat].Deduped)
		assert.Equal(t, 0, rep.PerCategory[cat].Backup)
	}
	assert.Empty(t, rep.Shortfalls, "target=3 时不需要补齐")
	assert.Equal(t, 12, rep.Input)
	assert.Equal(t, 9, rep.Deduped)
	assert.Equal(t, 9, rep.Final)
	assert.Len(t, res.Articles, 9)
	assert.Equal(t, model.CategoryDomestic, res.Articles[0].Category, "按板块优先级展开")
}

func TestPipelineBackfillFromCrossCategoryDuplicates(t *testing.T) {
	shared := zhArticle("全球股市大跌", "x", model.CategoryDomestic, 0)
	dup := shared
	dup.Category = model.CategoryUSEurope

	in := []model.Article{
		shared,
		dup,
		zhArticle("欧美新闻", "y", model.CategoryUSEurope, 0),
	}

	p := New(Options{
		Scheme:            model.SchemeRegional,
		PerCategoryTarget: 2,
		Selector:          SelectorStratified,
		TopN:              2,
		Ordering:          OrderRoundRobin,
	}, nil)
	rep := NewReport("test")
	res := p.Select(in, rep)

	// 重复项记在 domestic 的备用池，补齐时会回到 domestic
	assert.Len(t, res.ByCategory[model.CategoryDomestic], 2)
	assert.Len(t, res.ByCategory[model.CategoryUSEurope], 1)
	assert.Equal(t, 1, rep.Backup)
	assert.Equal(t, 1, rep.Shortfalls[model.CategoryUSEurope])
}

func TestPipelineGlobalSourceQuota(t *testing.T) {
	var in []model.Article
	in = append(in, sourceArticles("A", 5)...)
	in = append(in, sourceArticles("B", 1)...)
	in = append(in, sourceArticles("C", 3)...)
	in = append(in, sourceArticles("D", 2)...)

	p := New(Options{
		Scheme:   model.SchemeGlobal,
		Selector: SelectorSourceQuota,
		TopN:     6,
		Ordering: OrderRoundRobin,
	}, nil)
	res := p.Select(in, NewReport("test"))

	require.Len(t, res.Articles, 6)
	counts := countBySource(res.Articles)
	assert.Len(t, counts, 4)
}

func TestPipelineIngestCountsFallbacks(t *testing.T) {
	p := New(DefaultOptions(), nil)
	rep := NewReport("test")
	raws := []model.RawArticle{
		{Title: "a", Source: "s", Category: model.CategoryDomestic, PublishTime: "2026-01-26T10:00:00Z", CrawlTime: "2026-01-26T10:00:00Z"},
		{Title: "b", Source: "s", Category: model.CategoryDomestic, PublishTime: "", CrawlTime: "2026-01-26T10:00:00Z"},
		{Title: "c", Source: "s", Category: model.CategoryDomestic},
		{Title: "", Source: "s"},
	}

	out := p.Ingest(raws, rep)
	assert.Len(t, out, 3)
	assert.Equal(t, 4, rep.Input)
	assert.Equal(t, 1, rep.Rejected)
	assert.Equal(t, 1, rep.Time.CrawlFallback)
	assert.Equal(t, 1, rep.Time.NowFallback)
	assert.Equal(t, 2, rep.FallbackCount())
}

func TestPipelineEmptyInput(t *testing.T) {
	p := New(DefaultOptions(), nil)
	res := p.Select(nil, NewReport("test"))
	assert.Empty(t, res.Articles)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.Selector = "random"
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Ordering = "alphabetical"
	assert.Error(t, bad.Validate())
}

func arrangeInput() []model.Article {
	var in []model.Article
	in = append(in, sourceArticles("A", 5)...)
	in = append(in, sourceArticles("B", 1)...)
	in = append(in, sourceArticles("C", 3)...)
	in = append(in, sourceArticles("D", 2)...)
	return in
}

func TestArrangeRoundRobinWithinWindow(t *testing.T) {
	opts := DefaultOptions()
	opts.Scheme = model.SchemeGlobal
	opts.WindowHours = 3
	p := New(opts, nil)
	rep := NewReport("test")

	out := p.Arrange(arrangeInput(), baseTime, rep)

	// A 的第 5 篇发布于 4 小时前，被窗口过滤
	require.Len(t, out, 10)
	assert.Equal(t, 10, rep.Rendered)
	assert.Equal(t, []string{"A", "B", "C", "D"}, []string{out[0].Source, out[1].Source, out[2].Source, out[3].Source})
	for _, a := range out {
		assert.False(t, a.PublishTime.Before(baseTime.Add(-3*time.Hour)))
	}
}

func TestArrangeChronologicalBounded(t *testing.T) {
	opts := DefaultOptions()
	opts.Scheme = model.SchemeGlobal
	opts.Ordering = OrderChronological
	opts.WindowHours = 0
	opts.FinalLimit = 6
	p := New(opts, nil)

	out := p.Arrange(arrangeInput(), baseTime, NewReport("test"))

	require.Len(t, out, 6)
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].PublishTime.After(out[i-1].PublishTime), "按时间倒序")
	}
}
