package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/storage"
	"github.com/iceymoss/go-news/pkg/utils"
	"github.com/iceymoss/go-news/pkg/xerr"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var categoryLabels = map[model.Category]string{
	model.CategoryDomestic:    "国内",
	model.CategoryAsiaPacific: "亚太",
	model.CategoryUSEurope:    "欧美",
	model.CategoryGlobal:      "全球",
}

// ErrNothingToRender 过滤后没有文章
var ErrNothingToRender = perrors.New(xerr.NOTHING_TO_RENDER, "nothing to render")

type articleView struct {
	Index         string
	Title         string
	TitleOriginal string
	Content       string
	Source        string
	URL           string
	Category      model.Category
	CategoryLabel string
	PublishTime   string
	AIComment     string
	Featured      bool
}

type digestView struct {
	Date        string
	Total       int
	GeneratedAt string
	Articles    []articleView
}

// Generator 日报页面
type Generator struct {
	store storage.FileStorage
	tmpl  *template.Template
	log   *zap.Logger
	now   func() time.Time
}

func NewGenerator(store storage.FileStorage, log *zap.Logger) (*Generator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/digest.html")
	if err != nil {
		return nil, err
	}
	return &Generator{
		store: store,
		tmpl:  tmpl,
		log:   log.With(zap.String("component", "render")),
		now:   time.Now,
	}, nil
}

// DigestName 日报文件名
func DigestName(date string) string {
	return date + ".html"
}

// Digest 渲染 {date}.html，第一篇标记为 featured，返回访问地址
// date 为空时使用当前北京时间的日期
func (g *Generator) Digest(ctx context.Context, date string, articles []model.Article) (string, error) {
	if len(articles) == 0 {
		return "", ErrNothingToRender
	}
	if date == "" {
		date = utils.DateInChina(g.now())
	}

	view := digestView{
		Date:        date,
		Total:       len(articles),
		GeneratedAt: utils.FormatChina(g.now()),
		Articles:    make([]articleView, 0, len(articles)),
	}
	for i, a := range articles {
		view.Articles = append(view.Articles, toView(i, a))
	}
	view.Articles[0].Featured = true

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, view); err != nil {
		return "", perrors.Wrap(xerr.RENDER_ERROR, "render digest", err)
	}

	url, err := g.store.SaveFile(ctx, &buf, DigestName(date), "")
	if err != nil {
		return "", perrors.Wrap(xerr.RENDER_ERROR, "save digest", err)
	}
	g.log.Info("📄 日报已生成", zap.String("date", date), zap.Int("articles", len(articles)), zap.String("url", url))
	return url, nil
}

func toView(i int, a model.Article) articleView {
	v := articleView{
		Index:       fmt.Sprintf("%02d", i+1),
		Title:       a.Title,
		Content:     a.Content,
		Source:      a.Source,
		URL:         a.URL,
		Category:    a.Category,
		PublishTime: utils.FormatChina(a.PublishTime),
		AIComment:   a.AIComment,
		Featured:    a.Featured,
	}
	if v.Title == "" {
		v.Title = a.TitleOriginal
	} else if a.Language == model.LangEN && a.TitleOriginal != a.Title {
		v.TitleOriginal = a.TitleOriginal
	}
	if v.Content == "" {
		v.Content = a.ContentOriginal
	}
	if label, ok := categoryLabels[a.Category]; ok {
		v.CategoryLabel = label
	} else {
		v.CategoryLabel = string(a.Category)
	}
	return v
}
