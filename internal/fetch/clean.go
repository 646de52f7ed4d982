package fetch

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DefaultZHContentLength 中文摘要截断长度（字符数）
const DefaultZHContentLength = 300

// CleanHTML 去掉标签，文本节点之间用空格分隔，合并多余空白
func CleanHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script,style").Remove()

	var b strings.Builder
	collectText(doc.Selection, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
			b.WriteByte(' ')
			return
		}
		collectText(c, b)
	})
}

// TruncateZH 按字符截断中文摘要
// 截断点前 30% 范围内有句号时在句号处截断，否则追加省略号
func TruncateZH(content string, max int) string {
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)[:max]
	last := -1
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '。' {
			last = i
			break
		}
	}
	if float64(last) > float64(max)*0.7 {
		return string(runes[:last+1])
	}
	return string(runes) + "……"
}
