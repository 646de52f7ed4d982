package pipeline

import (
	"time"

	"github.com/iceymoss/go-news/internal/model"
)

// ScheduleRoundRobin 按来源轮询排序，不限制数量
// sources 指定轮询顺序；未指定时使用字典序，列表外的来源按字典序排在后面
func ScheduleRoundRobin(articles []model.Article, sources ...string) []model.Article {
	return roundRobin(articles, sources, -1)
}

// roundRobin 每轮按来源顺序各取一条，直到达到 limit 或所有队列耗尽；limit < 0 表示不限
func roundRobin(articles []model.Article, order []string, limit int) []model.Article {
	groups, sorted := groupBySource(articles)

	seen := make(map[string]bool, len(sorted))
	sources := make([]string, 0, len(sorted))
	for _, src := range order {
		if _, ok := groups[src]; ok && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	for _, src := range sorted {
		if !seen[src] {
			sources = append(sources, src)
		}
	}

	capacity := len(articles)
	if limit >= 0 && limit < capacity {
		capacity = limit
	}
	out := make([]model.Article, 0, capacity)
	heads := make(map[string]int, len(sources))

	for {
		emitted := 0
		for _, src := range sources {
			if limit >= 0 && len(out) >= limit {
				return out
			}
			i := heads[src]
			if i >= len(groups[src]) {
				continue
			}
			out = append(out, groups[src][i])
			heads[src] = i + 1
			emitted++
		}
		if emitted == 0 {
			return out
		}
	}
}

// FilterRecent 只保留最近 hours 小时内发布的文章，hours <= 0 时不过滤
func FilterRecent(articles []model.Article, now time.Time, hours int) []model.Article {
	if hours <= 0 {
		return append([]model.Article(nil), articles...)
	}
	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if !a.PublishTime.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out
}
