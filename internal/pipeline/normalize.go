package pipeline

import (
	"strings"

	"github.com/iceymoss/go-news/internal/model"
)

// Normalize 把原始记录转换为带有效时间的 Article
// 缺少来源或两个标题都为空的记录在这里被拒绝，不进入后续阶段
func (r *TimeResolver) Normalize(raws []model.RawArticle) (out []model.Article, rejected int) {
	out = make([]model.Article, 0, len(raws))
	for _, raw := range raws {
		if strings.TrimSpace(raw.Source) == "" ||
			(strings.TrimSpace(raw.Title) == "" && strings.TrimSpace(raw.TitleOriginal) == "") {
			rejected++
			continue
		}

		publish := r.ResolveEffectiveTime(raw)
		crawl, ok := ParseTimestamp(raw.CrawlTime)
		if !ok {
			crawl = publish
		}

		lang := raw.Language
		if lang != model.LangEN {
			lang = model.LangZH
		}

		out = append(out, model.Article{
			Title:           raw.Title,
			TitleOriginal:   raw.TitleOriginal,
			Content:         raw.Content,
			ContentOriginal: raw.ContentOriginal,
			Source:          raw.Source,
			SourceOriginal:  raw.SourceOriginal,
			URL:             raw.URL,
			Category:        raw.Category,
			Language:        lang,
			PublishTime:     publish,
			CrawlTime:       crawl,
			RawID:           raw.ID,
		})
	}
	return out, rejected
}
