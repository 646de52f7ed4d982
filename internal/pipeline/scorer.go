package pipeline

import (
	"strings"

	"github.com/iceymoss/go-news/internal/model"
)

const (
	BaseScore = 10
	MaxScore  = 60

	HighThreshold   = 50
	MediumThreshold = 30
)

// Priority 分档
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Classify >=50 高，30-49 中，其余为低
func Classify(score int) Priority {
	switch {
	case score >= HighThreshold:
		return PriorityHigh
	case score >= MediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

var highKeywords = map[model.Language][]string{
	model.LangZH: {
		"央行", "美联储", "欧洲央行", "日本央行", "英国央行",
		"利率", "降息", "加息", "基准利率", "负利率",
		"gdp", "国内生产总值", "经济增速", "经济衰退",
		"通胀", "通货膨胀", "cpi", "消费者物价", "通缩",
		"财政政策", "货币政策", "量化宽松", "缩表", "qe",
	},
	model.LangEN: {
		"central bank", "ecb", "boj", "bank of england",
		"interest rate", "rate cut", "rate hike", "benchmark rate", "negative rate",
		"gdp", "economic growth", "recession",
		"inflation", "cpi", "deflation",
		"monetary policy", "fiscal policy", "qe", "balance sheet reduction",
	},
}

var mediumKeywords = map[model.Language][]string{
	model.LangZH: {
		"股市", "大盘", "指数", "涨跌", "震荡",
		"上证指数", "深证成指", "标普500", "纳斯达克",
		"道琼斯", "日经指数", "恒生指数",
		"牛市", "熊市", "反弹", "回调",
		"财报", "营收", "利润", "季度", "年报",
		"并购", "收购", "ipo", "上市", "退市",
		"ceo", "高管", "董事会", "股东大会",
		"油价", "黄金", "白银", "铜", "铝",
		"原油", "期货", "大宗商品",
	},
	model.LangEN: {
		"stock market", "index", "rally", "drop", "volatility",
		"s&p 500", "nasdaq", "dow jones",
		"nikkei", "hang seng", "ftse",
		"bull market", "bear market", "rebound", "correction",
		"earnings", "revenue", "profit", "quarterly", "annual report",
		"m&a", "acquisition", "ipo", "listing", "delisting",
		"ceo", "executive", "board of directors", "shareholder meeting",
		"oil price", "gold", "silver", "copper", "aluminum",
		"crude oil", "futures", "commodities",
	},
}

type categoryRule struct {
	bonus    int
	keywords map[model.Language][]string
}

var categoryRules = map[model.Category]categoryRule{
	model.CategoryDomestic: {
		bonus: 10,
		keywords: map[model.Language][]string{
			model.LangZH: {"中国", "内地", "国内", "全国", "大陆", "国务院", "证监会", "银保监会"},
			model.LangEN: {"china", "chinese", "mainland", "domestic", "state council", "pboc", "csrc"},
		},
	},
	model.CategoryAsiaPacific: {
		bonus: 10,
		keywords: map[model.Language][]string{
			model.LangZH: {"日本", "韩国", "印度", "澳大利亚", "亚太", "亚洲", "东盟"},
			model.LangEN: {"japan", "korea", "india", "australia", "asia-pacific", "asia", "asean"},
		},
	},
	model.CategoryUSEurope: {
		bonus: 15,
		keywords: map[model.Language][]string{
			model.LangZH: {"美国", "美利坚", "美股", "华尔街", "美联储", "欧洲", "欧盟", "欧元"},
			model.LangEN: {"us", "usa", "united states", "america", "wall street", "fed", "europe", "eu", "euro"},
		},
	},
}

// keyword 关键词按子串匹配，打分文本已转小写
type keyword string

func (k keyword) in(text string) bool {
	return text != "" && strings.Contains(text, string(k))
}

func compile(src map[model.Language][]string) map[model.Language][]keyword {
	out := make(map[model.Language][]keyword, len(src))
	for lang, list := range src {
		kws := make([]keyword, 0, len(list))
		for _, k := range list {
			kws = append(kws, keyword(strings.ToLower(k)))
		}
		out[lang] = kws
	}
	return out
}

// tier 一档关键词，标题和正文分别计分、分别封顶
type tier struct {
	keywords      map[model.Language][]keyword
	titlePoints   int
	titleCap      int
	contentPoints int
	contentCap    int
}

func (t tier) score(lang model.Language, title, content string) int {
	return t.titlePoints*countUpTo(t.keywords[lang], title, t.titleCap) +
		t.contentPoints*countUpTo(t.keywords[lang], content, t.contentCap)
}

// countUpTo 按列表顺序扫描，命中数达到上限即停止
func countUpTo(kws []keyword, text string, limit int) int {
	n := 0
	for _, k := range kws {
		if n >= limit {
			break
		}
		if k.in(text) {
			n++
		}
	}
	return n
}

type compiledRule struct {
	bonus    int
	keywords map[model.Language][]keyword
}

// Scorer 基于关键词的优先级打分器，关键词在构造时预编译
type Scorer struct {
	high, medium  tier
	categories    map[model.Category]compiledRule
	categoryBonus bool
}

// NewScorer 单板块方案下关闭板块加分
func NewScorer(scheme model.CategoryScheme) *Scorer {
	s := &Scorer{
		high: tier{
			keywords:    compile(highKeywords),
			titlePoints: 20, titleCap: 2,
			contentPoints: 10, contentCap: 1,
		},
		medium: tier{
			keywords:    compile(mediumKeywords),
			titlePoints: 10, titleCap: 2,
			contentPoints: 5, contentCap: 1,
		},
		categories:    make(map[model.Category]compiledRule, len(categoryRules)),
		categoryBonus: !scheme.SingleCategory(),
	}
	for cat, rule := range categoryRules {
		s.categories[cat] = compiledRule{bonus: rule.bonus, keywords: compile(rule.keywords)}
	}
	return s
}

// Score 返回 [0, 60] 区间的得分，cat 为空表示不计板块加分
func (s *Scorer) Score(a model.Article, cat model.Category) int {
	title, content := a.ScoringText()
	lang := a.Language
	if lang != model.LangEN {
		lang = model.LangZH
	}

	score := BaseScore
	score += s.high.score(lang, title, content)
	score += s.medium.score(lang, title, content)

	if s.categoryBonus && cat != "" {
		if rule, ok := s.categories[cat]; ok {
			for _, k := range rule.keywords[lang] {
				if k.in(title) || k.in(content) {
					score += rule.bonus
					break
				}
			}
		}
	}

	if score > MaxScore {
		score = MaxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

type scored struct {
	article  model.Article
	score    int
	priority Priority
	index    int
}

func scoreAll(articles []model.Article, cat model.Category, scorer *Scorer) []scored {
	out := make([]scored, 0, len(articles))
	for i, a := range articles {
		sc := scorer.Score(a, cat)
		out = append(out, scored{article: a, score: sc, priority: Classify(sc), index: i})
	}
	return out
}
