package pipeline

import (
	"sort"

	"github.com/iceymoss/go-news/internal/model"
)

// DedupeByTitle 板块内按标题去重
// 去重键为空的文章直接丢弃；键冲突时保留 crawl_time 更晚的一条，输出保持键首次出现的顺序
func DedupeByTitle(articles []model.Article) []model.Article {
	index := make(map[string]int, len(articles))
	out := make([]model.Article, 0, len(articles))

	for _, a := range articles {
		key := a.DedupKey()
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			if a.CrawlTime.After(out[i].CrawlTime) {
				out[i] = a
			}
			continue
		}
		index[key] = len(out)
		out = append(out, a)
	}
	return out
}

type crossKey struct {
	title string
	url   string
}

// CrossCategoryDedupe 跨板块去重
// 按方案的板块优先级遍历，(标题键, url) 首次出现者保留在原板块，
// 之后的重复项进入“胜出者所在板块”的备用池。输入的每篇文章都会落在 kept 或 backup 之一。
func CrossCategoryDedupe(grouped map[model.Category][]model.Article, scheme model.CategoryScheme) (kept, backup map[model.Category][]model.Article) {
	kept = make(map[model.Category][]model.Article, len(grouped))
	backup = make(map[model.Category][]model.Article, len(grouped))

	// 单板块方案：不存在跨板块重复
	if scheme.SingleCategory() {
		for cat, list := range grouped {
			kept[cat] = append([]model.Article(nil), list...)
			backup[cat] = nil
		}
		return kept, backup
	}

	owner := make(map[crossKey]model.Category)
	for _, cat := range scheme.Order(grouped) {
		list, ok := grouped[cat]
		if !ok {
			continue
		}
		if _, ok := kept[cat]; !ok {
			kept[cat] = make([]model.Article, 0, len(list))
		}
		for _, a := range list {
			k := crossKey{title: a.DedupKey(), url: a.URL}
			if winner, dup := owner[k]; dup {
				backup[winner] = append(backup[winner], a)
				continue
			}
			owner[k] = cat
			kept[cat] = append(kept[cat], a)
		}
	}
	return kept, backup
}

// FillToQuota 把每个板块补足到 target 条
// 已达标的板块截断到 target；不足的从本板块备用池按得分降序补充，备用池不够时允许不足额
func FillToQuota(kept, backup map[model.Category][]model.Article, target int, scorer *Scorer) map[model.Category][]model.Article {
	if target < 0 {
		target = 0
	}
	out := make(map[model.Category][]model.Article, len(kept))

	for cat, list := range kept {
		if len(list) >= target {
			out[cat] = append([]model.Article(nil), list[:target]...)
			continue
		}

		pool := scoreAll(backup[cat], "", scorer)
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].score > pool[j].score
		})

		needed := target - len(list)
		if needed > len(pool) {
			needed = len(pool)
		}

		filled := make([]model.Article, 0, len(list)+needed)
		filled = append(filled, list...)
		for _, s := range pool[:needed] {
			filled = append(filled, s.article)
		}
		out[cat] = filled
	}
	return out
}

// Shortfalls 返回补齐后仍不足 target 的板块及缺口数量
func Shortfalls(filled map[model.Category][]model.Article, target int) map[model.Category]int {
	out := make(map[model.Category]int)
	for cat, list := range filled {
		if len(list) < target {
			out[cat] = target - len(list)
		}
	}
	return out
}
