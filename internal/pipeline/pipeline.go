package pipeline

import (
	"fmt"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"go.uber.org/zap"
)

// Options 流水线参数，由配置在进程启动时构造一次
type Options struct {
	Scheme model.CategoryScheme
	// PerCategoryTarget 跨板块去重后每个板块补足到的条数，<=0 表示不做补齐
	PerCategoryTarget int
	Selector          Selector
	// TopN 每个板块最终保留条数，<=0 表示不做选择
	TopN           int
	PerSourceQuota int
	Ordering       Ordering

	// WindowHours 渲染前只保留最近多少小时的文章，<=0 不过滤
	WindowHours int
	// FinalLimit 渲染条数上限，仅 chronological 排序时生效
	FinalLimit int
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		Scheme:            model.SchemeRegional,
		PerCategoryTarget: 15,
		Selector:          SelectorStratified,
		TopN:              10,
		PerSourceQuota:    DefaultPerSourceQuota,
		Ordering:          OrderRoundRobin,
		WindowHours:       24,
		FinalLimit:        15,
	}
}

// Validate 校验策略名
func (o Options) Validate() error {
	switch o.Selector {
	case SelectorStratified, SelectorSourceQuota:
	default:
		return fmt.Errorf("unknown selector %q", o.Selector)
	}
	switch o.Ordering {
	case OrderChronological, OrderRoundRobin:
	default:
		return fmt.Errorf("unknown ordering %q", o.Ordering)
	}
	if len(o.Scheme.Categories) == 0 {
		return fmt.Errorf("category scheme is empty")
	}
	return nil
}

// Result 选择结果
type Result struct {
	ByCategory map[model.Category][]model.Article
	// Articles 按板块优先级展开后的列表
	Articles []model.Article
}

// Pipeline 去重、打分、配额选择的编排
type Pipeline struct {
	opts   Options
	scorer *Scorer
	log    *zap.Logger
}

func New(opts Options, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PerSourceQuota <= 0 {
		opts.PerSourceQuota = DefaultPerSourceQuota
	}
	return &Pipeline{
		opts:   opts,
		scorer: NewScorer(opts.Scheme),
		log:    log.With(zap.String("component", "pipeline")),
	}
}

func (p *Pipeline) Options() Options { return p.opts }

func (p *Pipeline) Scorer() *Scorer { return p.scorer }

// Ingest 标准化原始记录
func (p *Pipeline) Ingest(raws []model.RawArticle, rep *Report) []model.Article {
	resolver := NewTimeResolver(p.log)
	articles, rejected := resolver.Normalize(raws)

	stats := resolver.Stats()
	rep.Input += len(raws)
	rep.Rejected += rejected
	rep.Time.FromPublish += stats.FromPublish
	rep.Time.CrawlFallback += stats.CrawlFallback
	rep.Time.NowFallback += stats.NowFallback

	if rejected > 0 {
		p.log.Warn("⚠️ 丢弃不合法的原始记录", zap.Int("rejected", rejected))
	}
	return articles
}

// Select 分组 -> 板块内去重 -> 跨板块去重 -> 补齐 -> 每板块 Top-N
func (p *Pipeline) Select(articles []model.Article, rep *Report) Result {
	rep.Scheme = p.opts.Scheme.Name
	if rep.Input == 0 {
		rep.Input = len(articles)
	}

	grouped := make(map[model.Category][]model.Article)
	for _, a := range articles {
		grouped[a.Category] = append(grouped[a.Category], a)
	}

	deduped := make(map[model.Category][]model.Article, len(grouped))
	for cat, list := range grouped {
		d := DedupeByTitle(list)
		deduped[cat] = d
		cc := rep.category(cat)
		cc.Input += len(list)
		cc.Deduped += len(d)
		rep.Deduped += len(d)
	}

	kept, backup := CrossCategoryDedupe(deduped, p.opts.Scheme)
	for cat, list := range kept {
		rep.category(cat).Kept += len(list)
	}
	for cat, list := range backup {
		rep.category(cat).Backup += len(list)
		rep.Backup += len(list)
	}

	filled := kept
	if p.opts.PerCategoryTarget > 0 {
		filled = FillToQuota(kept, backup, p.opts.PerCategoryTarget, p.scorer)
		for cat, missing := range Shortfalls(filled, p.opts.PerCategoryTarget) {
			rep.Shortfalls[cat] = missing
			p.log.Warn("⚠️ 板块补齐后仍不足额",
				zap.String("category", string(cat)),
				zap.Int("target", p.opts.PerCategoryTarget),
				zap.Int("actual", len(filled[cat])))
		}
	}

	res := Result{ByCategory: make(map[model.Category][]model.Article, len(filled))}
	for _, cat := range p.opts.Scheme.Order(filled) {
		list, ok := filled[cat]
		if !ok {
			continue
		}
		selected := p.selectTop(list, cat)
		res.ByCategory[cat] = selected
		res.Articles = append(res.Articles, selected...)
		rep.category(cat).Final += len(selected)
	}
	rep.Final = len(res.Articles)

	p.log.Info("✅ 筛选完成", rep.Fields()...)
	return res
}

func (p *Pipeline) selectTop(list []model.Article, cat model.Category) []model.Article {
	if p.opts.TopN <= 0 {
		return list
	}
	switch p.opts.Selector {
	case SelectorSourceQuota:
		return SelectBySourceQuota(list, p.opts.TopN, p.opts.PerSourceQuota, p.opts.Ordering)
	default:
		return SelectStratified(list, cat, p.opts.TopN, p.scorer)
	}
}

// Arrange 渲染前的最终排序
// round_robin: 时间窗口内全部文章按来源轮询，不限条数
// chronological: 按来源配额选出 FinalLimit 条，按时间倒序
func (p *Pipeline) Arrange(articles []model.Article, now time.Time, rep *Report) []model.Article {
	recent := FilterRecent(articles, now, p.opts.WindowHours)
	if dropped := len(articles) - len(recent); dropped > 0 {
		p.log.Info("⏱️ 时间窗口过滤",
			zap.Int("window_hours", p.opts.WindowHours),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(recent)))
	}

	var out []model.Article
	switch {
	case p.opts.Ordering == OrderRoundRobin:
		out = ScheduleRoundRobin(recent)
	case p.opts.FinalLimit > 0:
		out = SelectBySourceQuota(recent, p.opts.FinalLimit, p.opts.PerSourceQuota, OrderChronological)
	default:
		out = recent
		sortByTimeDesc(out)
	}
	rep.Rendered = len(out)
	return out
}
