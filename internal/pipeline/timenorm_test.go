package pipeline

import (
	"testing"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339 Z", "2026-01-26T10:00:00Z", want},
		{"rfc3339 offset", "2026-01-26T18:00:00+08:00", want},
		{"rfc3339 compact offset", "2026-01-26T18:00:00+0800", want},
		{"rfc3339 fraction", "2026-01-26T10:00:00.123456Z", want.Add(123456 * time.Microsecond)},
		{"naive iso", "2026-01-26T10:00:00", want},
		{"naive space", "2026-01-26 10:00:00", want},
		{"naive space fraction", "2026-01-26 10:00:00.5", want.Add(500 * time.Millisecond)},
		{"space with offset", "2026-01-26 10:00:00+00:00", want},
		{"rfc2822 numeric", "Mon, 26 Jan 2026 18:00:00 +0800", want},
		{"rfc2822 gmt", "Mon, 26 Jan 2026 10:00:00 GMT", want},
		{"rfc2822 named zone", "Mon, 26 Jan 2026 05:00:00 EST", want},
		{"no weekday", "26 Jan 2026 11:00:00 +0100", want},
		{"surrounding spaces", "  2026-01-26T10:00:00Z ", want},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := ParseTimestamp(c.input)
			require.True(t, ok, "应能解析: %s", c.input)
			assert.True(t, c.want.Equal(got), "got %s want %s", got, c.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "2026/01/26", "26-01-2026 10:00"} {
		_, ok := ParseTimestamp(s)
		assert.False(t, ok, "不应解析: %q", s)
	}
}

func TestTimeResolverFallbacks(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := NewTimeResolver(nil)
	r.now = func() time.Time { return now }

	got, src := r.Resolve("2026-01-26T10:00:00Z", "2026-01-27T00:00:00Z")
	assert.Equal(t, FromPublish, src)
	assert.Equal(t, 26, got.Day())

	got, src = r.Resolve("not a time", "2026-01-27T00:00:00Z")
	assert.Equal(t, FromCrawl, src)
	assert.Equal(t, 27, got.Day())

	got, src = r.Resolve("", "")
	assert.Equal(t, FromNow, src)
	assert.True(t, now.Equal(got))

	stats := r.Stats()
	assert.Equal(t, TimeStats{FromPublish: 1, CrawlFallback: 1, NowFallback: 1}, stats)
}

func TestNormalize(t *testing.T) {
	r := NewTimeResolver(nil)
	raws := []model.RawArticle{
		{Title: "央行降息", Source: "新华社", Language: model.LangZH, PublishTime: "2026-01-26 10:00:00", CrawlTime: "2026-01-26T11:00:00Z"},
		{TitleOriginal: "Fed holds rates", Source: "Reuters", Language: model.LangEN, PublishTime: "bad", CrawlTime: "2026-01-26T11:00:00Z"},
		{Title: "", TitleOriginal: "", Source: "新华社"},
		{Title: "无来源", Source: ""},
	}

	out, rejected := r.Normalize(raws)
	require.Len(t, out, 2)
	assert.Equal(t, 2, rejected)

	assert.Equal(t, 10, out[0].PublishTime.Hour())
	assert.Equal(t, 11, out[0].CrawlTime.Hour())
	// 发布时间无法解析时回退到抓取时间
	assert.True(t, out[1].PublishTime.Equal(out[1].CrawlTime))
	assert.Equal(t, 1, r.Stats().CrawlFallback)
}
