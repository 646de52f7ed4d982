package model

// LangAuto 源未声明语言时由采集端检测
const LangAuto Language = "auto"

// Source 新闻源配置
type Source struct {
	Name        string   `yaml:"name" json:"name"`
	EnglishName string   `yaml:"english_name" json:"english_name"`
	URL         string   `yaml:"url" json:"url"`
	RSS         string   `yaml:"rss" json:"rss"`
	Language    Language `yaml:"language" json:"language"`
	Category    Category `yaml:"category" json:"category"`
	Priority    int      `yaml:"priority" json:"priority"`
	Enabled     bool     `yaml:"enabled" json:"enabled"`
	Translate   bool     `yaml:"translate" json:"translate"`
}
