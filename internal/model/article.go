package model

import (
	"strings"
	"time"
)

// Language 文章语言
type Language string

const (
	LangZH Language = "zh"
	LangEN Language = "en"
)

// Article 在筛选流水线中流转的文章
// ID 为 0 表示尚未落库（新抓取），非 0 表示来自数据库缓存
type Article struct {
	ID uint64 `json:"id,omitempty"`

	Title           string `json:"title"`
	TitleOriginal   string `json:"title_original,omitempty"`
	Content         string `json:"content"`
	ContentOriginal string `json:"content_original,omitempty"`

	Source         string `json:"source"`
	SourceOriginal string `json:"source_original,omitempty"`
	URL            string `json:"url,omitempty"`

	Category Category `json:"category"`
	Language Language `json:"language"`

	// PublishTime 经过 Normalize 之后一定是有效的 UTC 时间
	PublishTime time.Time `json:"publish_time"`
	CrawlTime   time.Time `json:"crawl_time"`

	Tags              []string `json:"tags,omitempty"`
	AIComment         string   `json:"ai_comment,omitempty"`
	Translated        bool     `json:"translated"`
	TranslationMethod string   `json:"translation_method,omitempty"`
	Featured          bool     `json:"featured"`

	// RawID 暂存表 raw_articles 中的主键，仅 process_raw 流程使用
	RawID uint64 `json:"-"`
}

// IsNew 是否为尚未持久化的新文章
func (a Article) IsNew() bool {
	return a.ID == 0
}

// DedupKey 去重键：英文文章用原始标题，其余用中文标题
func (a Article) DedupKey() string {
	if a.Language == LangEN {
		return strings.TrimSpace(a.TitleOriginal)
	}
	return strings.TrimSpace(a.Title)
}

// DisplayTitle 日志展示用
func (a Article) DisplayTitle() string {
	if a.TitleOriginal != "" {
		return a.TitleOriginal
	}
	return a.Title
}

// ScoringText 返回打分用的标题和正文
// 英文文章优先取原文字段，缺失时回退到翻译后的字段
func (a Article) ScoringText() (title, content string) {
	if a.Language == LangEN {
		title = firstNonEmpty(a.TitleOriginal, a.Title)
		content = firstNonEmpty(a.ContentOriginal, a.Content)
		return strings.ToLower(title), strings.ToLower(content)
	}
	return strings.ToLower(a.Title), strings.ToLower(a.Content)
}

// RawArticle 采集边界上的原始记录，时间仍是字符串
type RawArticle struct {
	ID              uint64
	Title           string
	TitleOriginal   string
	Content         string
	ContentOriginal string
	Source          string
	SourceOriginal  string
	URL             string
	Category        Category
	Language        Language
	PublishTime     string
	CrawlTime       string
}

func (r RawArticle) PublishTimeString() string { return r.PublishTime }

func (r RawArticle) CrawlTimeString() string { return r.CrawlTime }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
