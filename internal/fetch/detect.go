package fetch

import (
	"sync"
	"unicode"

	"github.com/iceymoss/go-news/internal/model"

	"github.com/pemistahl/lingua-go"
)

// Detector 为 language: auto 的源判断文章语言
// 语言模型较大，第一次用到时才构建
type Detector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) build() {
	d.detector = lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Chinese).
		WithMinimumRelativeDistance(0.1).
		Build()
}

// Detect 只区分中英文，无法判断时按是否含汉字决定
func (d *Detector) Detect(text string) model.Language {
	if text == "" {
		return model.LangZH
	}
	d.once.Do(d.build)

	if lang, ok := d.detector.DetectLanguageOf(text); ok {
		if lang == lingua.English {
			return model.LangEN
		}
		return model.LangZH
	}
	if hasHan(text) {
		return model.LangZH
	}
	return model.LangEN
}

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
