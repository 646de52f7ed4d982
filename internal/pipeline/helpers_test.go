package pipeline

import (
	"fmt"
	"time"

	"github.com/iceymoss/go-news/internal/model"
)

var baseTime = time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC)

func zhArticle(title, source string, cat model.Category, publishAgo time.Duration) model.Article {
	return model.Article{
		Title:       title,
		Content:     "",
		Source:      source,
		URL:         "https://example.com/" + source + "/" + title,
		Category:    cat,
		Language:    model.LangZH,
		PublishTime: baseTime.Add(-publishAgo),
		CrawlTime:   baseTime,
	}
}

func enArticle(titleOriginal, contentOriginal, source string, cat model.Category) model.Article {
	return model.Article{
		TitleOriginal:   titleOriginal,
		ContentOriginal: contentOriginal,
		Source:          source,
		URL:             "https://example.com/" + source,
		Category:        cat,
		Language:        model.LangEN,
		PublishTime:     baseTime,
		CrawlTime:       baseTime,
	}
}

// sourceArticles 生成某个来源的 n 篇文章，时间依次变旧
func sourceArticles(source string, n int) []model.Article {
	out := make([]model.Article, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, zhArticle(fmt.Sprintf("%s-新闻-%d", source, i), source, model.CategoryGlobal, time.Duration(i)*time.Hour))
	}
	return out
}

func countBySource(list []model.Article) map[string]int {
	m := make(map[string]int)
	for _, a := range list {
		m[a.Source]++
	}
	return m
}
