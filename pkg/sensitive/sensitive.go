package sensitive

import (
	"fmt"
	"os"

	"github.com/importcjj/sensitive"
)

// DefaultReplaceChar AI 点评里命中的敏感词替换成这个字符
const DefaultReplaceChar = '*'

type Word struct {
	Filter *sensitive.Filter
	size   int
}

// NewWord 词典文件与内联词表二选一或同时使用
// dictPath 为空时只加载 words；文件不存在返回错误
func NewWord(dictPath string, words []string) (*Word, error) {
	filter := sensitive.New()

	if dictPath != "" {
		if _, err := os.Stat(dictPath); err != nil {
			return nil, fmt.Errorf("敏感词词典不可用: %w", err)
		}
		if err := filter.LoadWordDict(dictPath); err != nil {
			return nil, fmt.Errorf("加载敏感词词典失败: %w", err)
		}
	}

	n := 0
	for _, w := range words {
		if w == "" {
			continue
		}
		filter.AddWord(w)
		n++
	}

	return &Word{
		Filter: filter,
		size:   n,
	}, nil
}

// Inline 内联词数量，日志用
func (w *Word) Inline() int {
	return w.size
}

func (w *Word) Validate(content string) (bool, string) {
	return w.Filter.Validate(content)
}

func (w *Word) Replace(content string, replChar rune) string {
	return w.Filter.Replace(content, replChar)
}

// Sanitize 命中的词替换为 DefaultReplaceChar，nil 时原样返回
func (w *Word) Sanitize(content string) string {
	if w == nil || content == "" {
		return content
	}
	return w.Filter.Replace(content, DefaultReplaceChar)
}
