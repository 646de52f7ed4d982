package objects

import "time"

// RawArticle 对应 raw_articles 暂存表
// 采集结果先原样落在这里，process_raw 流程再统一筛选、增强
type RawArticle struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Title           string `gorm:"type:varchar(512)" json:"title"`
	TitleOriginal   string `gorm:"type:varchar(512)" json:"title_original"`
	Content         string `gorm:"type:text" json:"content"`
	ContentOriginal string `gorm:"type:text" json:"content_original"`
	Source          string `gorm:"type:varchar(128);index:idx_raw_source" json:"source"`
	SourceOriginal  string `gorm:"type:varchar(128)" json:"source_original"`
	URL             string `gorm:"type:varchar(1024)" json:"url"`
	Category        string `gorm:"type:varchar(32);index:idx_raw_category" json:"category"`
	Language        string `gorm:"type:varchar(8)" json:"language"`

	// 时间保持原始字符串，由流水线统一解析
	PublishTime string `gorm:"type:varchar(64)" json:"publish_time"`
	CrawlTime   string `gorm:"type:varchar(64)" json:"crawl_time"`

	TranslationState LockState `gorm:"type:varchar(16);not null;default:free;index" json:"translation_state"`
	CommentState     LockState `gorm:"type:varchar(16);not null;default:free;index" json:"comment_state"`

	CreatedAt time.Time `json:"created_at"`
}

func (RawArticle) TableName() string {
	return "raw_articles"
}
