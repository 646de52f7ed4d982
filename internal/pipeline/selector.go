package pipeline

import (
	"sort"

	"github.com/iceymoss/go-news/internal/model"
)

// Selector Top-N 选择策略
type Selector string

const (
	// SelectorStratified 按优先级分层，高:中:低 = 5:3:2
	SelectorStratified Selector = "stratified"
	// SelectorSourceQuota 每个来源保底若干条，再按时间补足
	SelectorSourceQuota Selector = "source_quota"
)

// Ordering 来源配额选择后的最终排序方式
type Ordering string

const (
	OrderChronological Ordering = "chronological"
	OrderRoundRobin    Ordering = "round_robin"
)

// DefaultPerSourceQuota 每个来源默认保底条数
const DefaultPerSourceQuota = 2

// SelectStratified 优先级分层选择
// 候选数不超过 n 时原样返回
func SelectStratified(candidates []model.Article, cat model.Category, n int, scorer *Scorer) []model.Article {
	if len(candidates) <= n {
		return append([]model.Article(nil), candidates...)
	}
	if n <= 0 {
		return []model.Article{}
	}

	all := scoreAll(candidates, cat, scorer)

	var high, medium, low []scored
	for _, s := range all {
		switch s.priority {
		case PriorityHigh:
			high = append(high, s)
		case PriorityMedium:
			medium = append(medium, s)
		default:
			low = append(low, s)
		}
	}
	for _, group := range [][]scored{high, medium, low} {
		sortScoredByTime(group)
	}

	highCount := n * 5 / 10
	mediumCount := n * 3 / 10
	lowCount := n - highCount - mediumCount

	taken := make(map[int]bool, n)
	selected := make([]model.Article, 0, n)
	take := func(group []scored, limit int) {
		for i := 0; i < len(group) && i < limit; i++ {
			taken[group[i].index] = true
			selected = append(selected, group[i].article)
		}
	}
	take(high, highCount)
	take(medium, mediumCount)
	take(low, lowCount)

	if len(selected) < n {
		rest := append([]scored(nil), all...)
		sort.SliceStable(rest, func(i, j int) bool {
			if rest[i].score != rest[j].score {
				return rest[i].score > rest[j].score
			}
			return rest[i].article.PublishTime.After(rest[j].article.PublishTime)
		})
		for _, s := range rest {
			if len(selected) >= n {
				break
			}
			if taken[s.index] {
				continue
			}
			taken[s.index] = true
			selected = append(selected, s.article)
		}
	}
	return selected
}

// SelectBySourceQuota 来源配额选择
// 每个来源按时间倒序取前 perSource 条进入配额池，剩余文章按时间倒序补足到 n，
// 最后按 ordering 排序并截断到 n，截断时每个来源至少保留一条
func SelectBySourceQuota(candidates []model.Article, n, perSource int, ordering Ordering) []model.Article {
	if n <= 0 {
		return []model.Article{}
	}
	if perSource <= 0 {
		perSource = DefaultPerSourceQuota
	}

	groups, sources := groupBySource(candidates)

	quota := make([]model.Article, 0, len(sources)*perSource)
	var remaining []model.Article
	for _, src := range sources {
		g := groups[src]
		if len(g) > perSource {
			quota = append(quota, g[:perSource]...)
			remaining = append(remaining, g[perSource:]...)
		} else {
			quota = append(quota, g...)
		}
	}

	sortByTimeDesc(remaining)
	extra := n - len(quota)
	if extra < 0 {
		extra = 0
	}
	if extra > len(remaining) {
		extra = len(remaining)
	}
	combined := append(quota, remaining[:extra]...)

	switch ordering {
	case OrderRoundRobin:
		return roundRobin(combined, nil, n)
	default:
		return truncateKeepingSources(combined, n)
	}
}

// truncateKeepingSources 按时间倒序截断到 n，
// 截断前先为每个来源保留其最新一条，来源数超过 n 时保留最新的 n 个来源
func truncateKeepingSources(list []model.Article, n int) []model.Article {
	sortByTimeDesc(list)
	if len(list) <= n {
		return list
	}

	out := make([]model.Article, 0, n)
	picked := make([]bool, len(list))
	seen := make(map[string]bool)
	for i, a := range list {
		if len(out) == n {
			break
		}
		if !seen[a.Source] {
			seen[a.Source] = true
			picked[i] = true
			out = append(out, a)
		}
	}
	for i, a := range list {
		if len(out) == n {
			break
		}
		if !picked[i] {
			out = append(out, a)
		}
	}
	sortByTimeDesc(out)
	return out
}

// groupBySource 按来源分组，组内按时间倒序，来源按字典序返回
func groupBySource(articles []model.Article) (map[string][]model.Article, []string) {
	groups := make(map[string][]model.Article)
	for _, a := range articles {
		groups[a.Source] = append(groups[a.Source], a)
	}
	sources := make([]string, 0, len(groups))
	for src, g := range groups {
		sortByTimeDesc(g)
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return groups, sources
}

func sortByTimeDesc(list []model.Article) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].PublishTime.After(list[j].PublishTime)
	})
}

func sortScoredByTime(list []scored) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].article.PublishTime.After(list[j].article.PublishTime)
	})
}
