package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/internal/pipeline"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options 抓取参数
type Options struct {
	MaxEntries    int // 每个源最多取多少条
	MaxAgeHours   int // 超过这个时效的条目直接丢弃，<=0 不限
	Timeout       time.Duration
	Concurrency   int
	UserAgent     string
	ZHContentSize int // 中文摘要截断长度
}

// Result 一次抓取的汇总
type Result struct {
	Articles []model.RawArticle
	Failed   map[string]error // 抓取失败的源
	TooOld   int
}

// Fetcher RSS 抓取
type Fetcher struct {
	opts     Options
	client   *http.Client
	detector *Detector
	log      *zap.Logger
	now      func() time.Time
}

func New(opts Options, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.ZHContentSize <= 0 {
		opts.ZHContentSize = DefaultZHContentLength
	}
	return &Fetcher{
		opts:     opts,
		client:   &http.Client{Timeout: opts.Timeout},
		detector: NewDetector(),
		log:      log.With(zap.String("component", "fetch")),
		now:      time.Now,
	}
}

// FetchAll 并发抓取所有源，单个源失败只记录不中断
func (f *Fetcher) FetchAll(ctx context.Context, sources []model.Source) Result {
	var (
		mu  sync.Mutex
		res = Result{Failed: make(map[string]error)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)

	// 按源顺序拼接结果，保证输出稳定
	perSource := make([][]model.RawArticle, len(sources))
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			list, tooOld, err := f.FetchSource(gctx, src)
			mu.Lock()
			defer mu.Unlock()
			res.TooOld += tooOld
			if err != nil {
				res.Failed[src.Name] = err
				f.log.Error("❌ 抓取失败", zap.String("source", src.Name), zap.Error(err))
				return nil
			}
			perSource[i] = list
			f.log.Info("🕷️ 抓取完成", zap.String("source", src.Name), zap.Int("count", len(list)))
			return nil
		})
	}
	_ = g.Wait()

	for _, list := range perSource {
		res.Articles = append(res.Articles, list...)
	}
	f.log.Info("📰 全部源抓取完成",
		zap.Int("sources", len(sources)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("articles", len(res.Articles)),
		zap.Int("too_old", res.TooOld))
	return res
}

// FetchSource 抓取单个源
// 英文源只填 TitleOriginal/ContentOriginal，中文源填 Title/Content
func (f *Fetcher) FetchSource(ctx context.Context, src model.Source) ([]model.RawArticle, int, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = f.opts.UserAgent

	feed, err := parser.ParseURLWithContext(src.RSS, ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", src.RSS, err)
	}

	now := f.now().UTC()
	crawl := now.Format(time.RFC3339)
	items := feed.Items
	if len(items) > f.opts.MaxEntries {
		items = items[:f.opts.MaxEntries]
	}

	out := make([]model.RawArticle, 0, len(items))
	tooOld := 0
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		publish, published := publishTime(item)
		if published != nil && f.isTooOld(*published, now) {
			tooOld++
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		summary = CleanHTML(summary)

		lang := src.Language
		if lang == model.LangAuto || lang == "" {
			lang = f.detector.Detect(title + " " + summary)
		}

		raw := model.RawArticle{
			Source:         src.Name,
			SourceOriginal: src.EnglishName,
			URL:            item.Link,
			Category:       src.Category,
			Language:       lang,
			PublishTime:    publish,
			CrawlTime:      crawl,
		}
		if lang == model.LangEN {
			raw.TitleOriginal = title
			raw.ContentOriginal = summary
		} else {
			raw.Title = title
			raw.Content = TruncateZH(summary, f.opts.ZHContentSize)
		}
		out = append(out, raw)
	}
	return out, tooOld, nil
}

// publishTime 优先用 gofeed 解析好的时间，其次原始字符串交给流水线解析
func publishTime(item *gofeed.Item) (string, *time.Time) {
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return t.Format(time.RFC3339), &t
	}
	if item.Published != "" {
		if t, ok := pipeline.ParseTimestamp(item.Published); ok {
			return item.Published, &t
		}
		return item.Published, nil
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return t.Format(time.RFC3339), &t
	}
	return "", nil
}

func (f *Fetcher) isTooOld(t, now time.Time) bool {
	if f.opts.MaxAgeHours <= 0 {
		return false
	}
	return now.Sub(t) > time.Duration(f.opts.MaxAgeHours)*time.Hour
}
