package pipeline

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// timeLayouts 按优先级依次尝试，命中即返回
// Go 解析时会自动接受秒后面的小数部分，所以不需要单独列出带微秒的格式
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
}

// 常见时区缩写，Go 遇到不认识的缩写会按 0 偏移处理
var zoneAbbrevOffsets = map[string]int{
	"EST":  -5 * 3600,
	"EDT":  -4 * 3600,
	"PST":  -8 * 3600,
	"PDT":  -7 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"BST":  1 * 3600,
	"JST":  9 * 3600,
	"HKT":  8 * 3600,
	"SGT":  8 * 3600,
}

// ParseTimestamp 多格式解析时间字符串，统一返回 UTC
// 没有时区信息的时间视为已经是 UTC
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		return fixZoneAbbrev(t).UTC(), true
	}
	return time.Time{}, false
}

func fixZoneAbbrev(t time.Time) time.Time {
	name, offset := t.Zone()
	if offset != 0 {
		return t
	}
	if off, ok := zoneAbbrevOffsets[name]; ok {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
			time.FixedZone(name, off))
	}
	return t
}

// TimeSource 有效发布时间的来源
type TimeSource int

const (
	FromPublish TimeSource = iota
	FromCrawl
	FromNow
)

// TimeStats 时间回退统计，反映上游数据质量
type TimeStats struct {
	FromPublish   int `json:"from_publish" bson:"from_publish"`
	CrawlFallback int `json:"crawl_fallback" bson:"crawl_fallback"`
	NowFallback   int `json:"now_fallback" bson:"now_fallback"`
}

// TimeResolver 计算有效发布时间并记录回退次数
// 单次批处理内使用，非并发安全
type TimeResolver struct {
	now   func() time.Time
	log   *zap.Logger
	stats TimeStats
}

func NewTimeResolver(log *zap.Logger) *TimeResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimeResolver{now: time.Now, log: log}
}

// Resolve 发布时间 -> 抓取时间 -> 当前时间，逐级回退，从不返回错误
func (r *TimeResolver) Resolve(publish, crawl string) (time.Time, TimeSource) {
	if t, ok := ParseTimestamp(publish); ok {
		r.stats.FromPublish++
		return t, FromPublish
	}
	if t, ok := ParseTimestamp(crawl); ok {
		r.stats.CrawlFallback++
		r.log.Warn("⚠️ publish_time 缺失或无法解析，使用 crawl_time",
			zap.String("publish_time", publish), zap.String("crawl_time", crawl))
		return t, FromCrawl
	}
	r.stats.NowFallback++
	r.log.Error("❌ publish_time 与 crawl_time 均无法解析，使用当前时间",
		zap.String("publish_time", publish), zap.String("crawl_time", crawl))
	return r.now().UTC(), FromNow
}

// ResolveEffectiveTime 针对原始记录的便捷封装
func (r *TimeResolver) ResolveEffectiveTime(raw RawTimes) time.Time {
	t, _ := r.Resolve(raw.PublishTimeString(), raw.CrawlTimeString())
	return t
}

// Stats 返回当前累计的回退统计
func (r *TimeResolver) Stats() TimeStats {
	return r.stats
}

// RawTimes 暴露原始时间字符串的记录
type RawTimes interface {
	PublishTimeString() string
	CrawlTimeString() string
}
