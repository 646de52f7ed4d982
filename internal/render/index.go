package render

import (
	"bytes"
	"context"
	"html/template"
	"regexp"
	"sort"
	"strings"
	"time"

	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/storage"
	"github.com/iceymoss/go-news/pkg/utils"
	"github.com/iceymoss/go-news/pkg/xerr"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	IndexName        = "index.html"
	DefaultIndexDays = 30

	minTitleRunes = 10
	maxTitleRunes = 100
)

var digestFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.html$`)

// ErrNoPages 时间窗口内没有任何日报
var ErrNoPages = perrors.New(xerr.NOTHING_TO_RENDER, "no digest pages found")

// PageEntry 首页上的一期日报
type PageEntry struct {
	Date         string
	Title        string
	ArticleCount int
	URL          string
}

type indexView struct {
	Days      int
	UpdatedAt string
	Pages     []PageEntry
}

// IndexUpdater 扫描已生成的日报，重建 index.html
type IndexUpdater struct {
	store storage.FileStorage
	tmpl  *template.Template
	log   *zap.Logger
	now   func() time.Time
}

func NewIndexUpdater(store storage.FileStorage, log *zap.Logger) (*IndexUpdater, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &IndexUpdater{
		store: store,
		tmpl:  tmpl,
		log:   log.With(zap.String("component", "index")),
		now:   time.Now,
	}, nil
}

// Scan 返回最近 days 天内的日报，按日期倒序
func (u *IndexUpdater) Scan(ctx context.Context, days int) ([]PageEntry, error) {
	if days <= 0 {
		days = DefaultIndexDays
	}
	files, err := u.store.ListFiles(ctx, "", "*.html")
	if err != nil {
		return nil, err
	}

	cutoff := u.now().In(utils.ChinaLocation).AddDate(0, 0, -days)
	var pages []PageEntry
	for _, f := range files {
		m := digestFilePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		day, err := utils.ParseChinaDate(m[1])
		if err != nil || day.Before(cutoff) {
			continue
		}

		data, err := u.store.ReadFile(ctx, f.Path)
		if err != nil {
			u.log.Warn("⚠️ 读取日报失败", zap.String("file", f.Path), zap.Error(err))
			continue
		}
		title, count, err := ExtractMeta(data, m[1])
		if err != nil {
			u.log.Warn("⚠️ 解析日报失败", zap.String("file", f.Path), zap.Error(err))
			continue
		}
		pages = append(pages, PageEntry{
			Date:         m[1],
			Title:        title,
			ArticleCount: count,
			URL:          u.store.GetFileURL(f.Path),
		})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Date > pages[j].Date })
	return pages, nil
}

// Update 重建首页，返回收录的日报数量
func (u *IndexUpdater) Update(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = DefaultIndexDays
	}
	pages, err := u.Scan(ctx, days)
	if err != nil {
		return 0, err
	}
	if len(pages) == 0 {
		return 0, ErrNoPages
	}

	var buf bytes.Buffer
	err = u.tmpl.Execute(&buf, indexView{
		Days:      days,
		UpdatedAt: utils.FormatChina(u.now()),
		Pages:     pages,
	})
	if err != nil {
		return 0, perrors.Wrap(xerr.RENDER_ERROR, "render index", err)
	}
	if _, err := u.store.SaveFile(ctx, &buf, IndexName, ""); err != nil {
		return 0, perrors.Wrap(xerr.RENDER_ERROR, "save index", err)
	}

	u.log.Info("🗂️ 首页已更新", zap.Int("pages", len(pages)), zap.String("latest", pages[0].Date))
	return len(pages), nil
}

// ExtractMeta 从日报页面里取标题和文章数
// 标题优先用 h1，其次 <title>，都太短时用默认标题
func ExtractMeta(page []byte, date string) (string, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", 0, err
	}

	title := "财经日报 - " + date
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); runeLen(h1) > minTitleRunes {
		title = truncateRunes(h1, maxTitleRunes)
	} else if t := strings.TrimSpace(doc.Find("title").First().Text()); runeLen(t) > minTitleRunes {
		title = t
	}

	return title, doc.Find("article.news-card").Length(), nil
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
