package conf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/internal/pipeline"
	"github.com/iceymoss/go-news/pkg/db"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Output    OutputConfig    `mapstructure:"output"`
	Sensitive SensitiveConfig `mapstructure:"sensitive"`
	Mailer    MailerConfig    `mapstructure:"mailer"`
	Jobs      []JobConfig     `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // mysql / postgres / sqlite
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// LockTTL 任务运行锁的过期时间
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	MaxPool    uint64 `mapstructure:"max_pool"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai / anthropic / none
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

type PipelineConfig struct {
	Scheme            string `mapstructure:"scheme"`
	PerCategoryTarget int    `mapstructure:"per_category_target"`
	Selector          string `mapstructure:"selector"`
	TopN              int    `mapstructure:"top_n"`
	PerSourceQuota    int    `mapstructure:"per_source_quota"`
	Ordering          string `mapstructure:"ordering"`
	TopNewsCount      int    `mapstructure:"top_news_count"`
	WindowHours       int    `mapstructure:"window_hours"`
	MaxAgeHours       int    `mapstructure:"max_age_hours"`
}

type FetchConfig struct {
	SourcesFile      string        `mapstructure:"sources_file"`
	MaxEntries       int           `mapstructure:"max_entries"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Concurrency      int           `mapstructure:"concurrency"`
	MaxContentLength int           `mapstructure:"max_content_length"`
	UserAgent        string        `mapstructure:"user_agent"`
}

type OutputConfig struct {
	Dir            string `mapstructure:"dir"`
	BaseURL        string `mapstructure:"base_url"`
	IndexDays      int    `mapstructure:"index_days"`
	RegenerateDays int    `mapstructure:"regenerate_days"`
}

type SensitiveConfig struct {
	DictPath string   `mapstructure:"dict_path"`
	Words    []string `mapstructure:"words"`
}

type MailerConfig struct {
	Enable   bool     `mapstructure:"enable"`
	Host     string   `mapstructure:"host"`
	Port     string   `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	To       []string `mapstructure:"to"`
}

type JobConfig struct {
	Name   string                 `mapstructure:"name"`
	Cron   string                 `mapstructure:"cron"`
	Enable bool                   `mapstructure:"enable"`
	Params map[string]interface{} `mapstructure:"params"`
}

// Default 默认配置，配置文件里没写的字段保持这些值
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: ":8080"},
		Log:    LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Driver:   db.DriverSQLite,
			DSN:      "data/news.db?_txlock=immediate",
			LogLevel: "warn",
			MaxOpen:  1,
			MaxIdle:  1,
		},
		Redis: RedisConfig{LockTTL: 70 * time.Minute},
		Mongo: MongoConfig{Database: "newsbot", Collection: "pipeline_reports", MaxPool: 20},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			Timeout:     60 * time.Second,
			Concurrency: 4,
			MaxRetries:  3,
			RetryDelay:  2 * time.Second,
		},
		Pipeline: PipelineConfig{
			Scheme:            model.SchemeRegional.Name,
			PerCategoryTarget: 10,
			Selector:          "", // 为空时按板块方案选择
			TopN:              10,
			PerSourceQuota:    pipeline.DefaultPerSourceQuota,
			Ordering:          string(pipeline.OrderRoundRobin),
			TopNewsCount:      15,
			WindowHours:       24,
			MaxAgeHours:       48,
		},
		Fetch: FetchConfig{
			SourcesFile:      "configs/sources.yaml",
			MaxEntries:       20,
			Timeout:          10 * time.Second,
			Concurrency:      8,
			MaxContentLength: 150,
			UserAgent:        "Mozilla/5.0 (compatible; newsbot/1.0)",
		},
		Output: OutputConfig{
			Dir:            "public",
			IndexDays:      30,
			RegenerateDays: 7,
		},
	}
}

// LoadConfig 加载配置
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NEWSBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // 自动读取环境变量

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 显式展开 YAML 中的 ${VAR}
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	c := Default()
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate 校验策略名等枚举值
func (c *Config) Validate() error {
	if _, err := c.PipelineOptions(); err != nil {
		return err
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "", "none", "openai", "anthropic":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is empty")
	}
	return nil
}

// PipelineOptions 转换为流水线参数
// 单板块方案未显式指定 selector 时使用来源配额选择
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	scheme, err := model.SchemeByName(c.Pipeline.Scheme)
	if err != nil {
		return pipeline.Options{}, err
	}

	selector := pipeline.Selector(c.Pipeline.Selector)
	topN := c.Pipeline.TopN
	if scheme.SingleCategory() && selector == "" {
		selector = pipeline.SelectorSourceQuota
		topN = c.Pipeline.TopNewsCount
	}
	if selector == "" {
		selector = pipeline.SelectorStratified
	}
	ordering := pipeline.Ordering(c.Pipeline.Ordering)
	if ordering == "" {
		ordering = pipeline.OrderRoundRobin
	}

	opts := pipeline.Options{
		Scheme:            scheme,
		PerCategoryTarget: c.Pipeline.PerCategoryTarget,
		Selector:          selector,
		TopN:              topN,
		PerSourceQuota:    c.Pipeline.PerSourceQuota,
		Ordering:          ordering,
		WindowHours:       c.Pipeline.WindowHours,
		FinalLimit:        c.Pipeline.TopNewsCount,
	}
	return opts, opts.Validate()
}

// DBOptions 转换为数据库连接参数
func (c *Config) DBOptions() db.Options {
	return db.Options{
		Driver:   c.Database.Driver,
		DSN:      c.Database.DSN,
		LogLevel: c.Database.LogLevel,
		MaxOpen:  c.Database.MaxOpen,
		MaxIdle:  c.Database.MaxIdle,
	}
}

// RedisOptions 转换为 redis 连接参数
func (c *Config) RedisOptions() db.RedisOptions {
	return db.RedisOptions{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}
