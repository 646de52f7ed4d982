package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/iceymoss/go-news/internal/conf"
	"github.com/iceymoss/go-news/internal/enrich"
	"github.com/iceymoss/go-news/internal/fetch"
	"github.com/iceymoss/go-news/internal/pipeline"
	"github.com/iceymoss/go-news/internal/render"
	"github.com/iceymoss/go-news/internal/repo"
	"github.com/iceymoss/go-news/pkg/db"
	mailer "github.com/iceymoss/go-news/pkg/message/email"
	"github.com/iceymoss/go-news/pkg/sensitive"
	"github.com/iceymoss/go-news/pkg/storage"
	"github.com/iceymoss/go-news/pkg/transaction"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Env 任务运行所需的全部依赖，进程启动时构造一次
type Env struct {
	Config *conf.Config
	Log    *zap.Logger

	DB       *gorm.DB
	Tx       *transaction.Manager
	Articles *repo.ArticleRepo
	Raw      *repo.RawRepo
	Stats    *repo.StatsRepo
	Jobs     *repo.JobRepo
	Reports  *repo.ReportStore // 未配置 mongo 时为 nil，方法可安全调用
	Board    *ReportBoard

	Redis *redis.Client // 未配置时为 nil
	Mongo *mongo.Client // 未配置时为 nil

	Fetcher   *fetch.Fetcher
	Enricher  *enrich.Enricher
	Pipeline  *pipeline.Pipeline
	Storage   storage.FileStorage
	Generator *render.Generator
	Index     *render.IndexUpdater
	Filter    *sensitive.Word
	Mailer    mailer.EmailSender // 未启用时为 nil
}

// NewEnv 按配置建立连接并组装各组件
func NewEnv(ctx context.Context, cfg *conf.Config, log *zap.Logger) (_ *Env, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	env := &Env{Config: cfg, Log: log, Board: NewReportBoard()}
	defer func() {
		if err != nil {
			_ = env.Close()
		}
	}()

	opts, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	env.Pipeline = pipeline.New(opts, log)

	// 数据库
	env.DB, err = db.Open(cfg.DBOptions(), log)
	if err != nil {
		return nil, err
	}
	if err = repo.Migrate(ctx, env.DB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	env.Tx = transaction.NewManager(env.DB)
	env.Articles = repo.NewArticleRepo(env.Tx)
	env.Raw = repo.NewRawRepo(env.Tx)
	env.Jobs = repo.NewJobRepo(env.DB)
	if env.Stats, err = repo.NewStatsRepo(env.DB, cfg.Database.Driver); err != nil {
		return nil, err
	}

	// 可选的 redis / mongo
	if env.Redis, err = db.NewRedis(ctx, cfg.RedisOptions()); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if env.Mongo, err = db.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.MaxPool); err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	env.Reports = repo.NewReportStore(env.Mongo, cfg.Mongo.Database, cfg.Mongo.Collection)

	// 敏感词
	if env.Filter, err = sensitive.NewWord(cfg.Sensitive.DictPath, cfg.Sensitive.Words); err != nil {
		return nil, err
	}

	// 抓取与增强
	env.Fetcher = fetch.New(fetch.Options{
		MaxEntries:  cfg.Fetch.MaxEntries,
		MaxAgeHours: cfg.Pipeline.MaxAgeHours,
		Timeout:     cfg.Fetch.Timeout,
		Concurrency: cfg.Fetch.Concurrency,
		UserAgent:   cfg.Fetch.UserAgent,
	}, log)

	llm, err := enrich.NewModel(enrich.LLMOptions{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		return nil, err
	}
	if llm == nil {
		log.Warn("⚠️ 未配置 LLM，翻译和点评将被跳过", zap.String("provider", cfg.LLM.Provider))
	}
	env.Enricher = enrich.New(llm, env.Filter, enrich.Options{
		Method:      cfg.LLM.Provider,
		Temperature: cfg.LLM.Temperature,
		SummaryLen:  cfg.Fetch.MaxContentLength,
		Concurrency: cfg.LLM.Concurrency,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
		RetryDelay:  cfg.LLM.RetryDelay,
	}, log)

	// 输出
	env.Storage = storage.NewLocalStorage(cfg.Output.Dir, cfg.Output.BaseURL)
	if env.Generator, err = render.NewGenerator(env.Storage, log); err != nil {
		return nil, err
	}
	if env.Index, err = render.NewIndexUpdater(env.Storage, log); err != nil {
		return nil, err
	}

	if cfg.Mailer.Enable {
		m := cfg.Mailer
		env.Mailer = mailer.NewMailer(m.Host, m.Port, m.Username, m.Password, m.To)
	}
	return env, nil
}

// Close 释放连接
func (e *Env) Close() error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.Mongo != nil {
		errs = append(errs, e.Mongo.Disconnect(context.Background()))
	}
	if e.Redis != nil {
		errs = append(errs, e.Redis.Close())
	}
	if e.DB != nil {
		errs = append(errs, db.Close(e.DB))
	}
	return errors.Join(errs...)
}
