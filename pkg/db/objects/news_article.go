package objects

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// LockState 翻译/点评写入的状态机 free -> locked -> done
type LockState string

const (
	StateFree   LockState = "free"
	StateLocked LockState = "locked"
	StateDone   LockState = "done"
)

// NewsArticle 对应数据库表 news_articles
type NewsArticle struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 语言 + 去重键的 sha256，唯一索引保证同一条新闻只入库一次
	DedupHash string `gorm:"type:varchar(64);not null;uniqueIndex:idx_news_dedup_hash" json:"dedup_hash"`
	DedupKey  string `gorm:"type:varchar(512);not null" json:"dedup_key"`

	Title           string `gorm:"type:varchar(512)" json:"title"`
	TitleOriginal   string `gorm:"type:varchar(512)" json:"title_original"`
	Content         string `gorm:"type:text" json:"content"`
	ContentOriginal string `gorm:"type:text" json:"content_original"`

	Source         string `gorm:"type:varchar(128);index:idx_news_source" json:"source"`
	SourceOriginal string `gorm:"type:varchar(128)" json:"source_original"`
	URL            string `gorm:"type:varchar(1024)" json:"url"`

	Category string `gorm:"type:varchar(32);index:idx_news_category" json:"category"`
	Language string `gorm:"type:varchar(8)" json:"language"`

	PublishTime time.Time `gorm:"index:idx_news_publish_time;comment:有效发布时间(UTC)" json:"publish_time"`
	CrawlTime   time.Time `json:"crawl_time"`

	// 使用 GORM 的序列化功能，自动将 []string 转为 JSON 字符串存入数据库
	Tags []string `gorm:"serializer:json;type:text" json:"tags"`

	AIComment         string `gorm:"type:text" json:"ai_comment"`
	Translated        bool   `gorm:"default:false" json:"translated"`
	TranslationMethod string `gorm:"type:varchar(64)" json:"translation_method"`

	TranslationState LockState `gorm:"type:varchar(16);not null;default:free;index" json:"translation_state"`
	CommentState     LockState `gorm:"type:varchar(16);not null;default:free;index" json:"comment_state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (NewsArticle) TableName() string {
	return "news_articles"
}

// DedupHash 去重哈希
func DedupHash(language, key string) string {
	sum := sha256.Sum256([]byte(language + ":" + key))
	return hex.EncodeToString(sum[:])
}
