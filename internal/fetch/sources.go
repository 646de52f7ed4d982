package fetch

import (
	"fmt"
	"os"

	"github.com/iceymoss/go-news/internal/model"

	"gopkg.in/yaml.v3"
)

// SourcesFile 新闻源配置文件结构
// sources:
//   - name: 财新网
//     rss: https://...
type SourcesFile struct {
	Sources []model.Source `yaml:"sources"`
}

// LoadSources 读取新闻源配置，只返回 enabled 且配置了 rss 的源
func LoadSources(path string) ([]model.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesFile
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	out := make([]model.Source, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		if !s.Enabled || s.RSS == "" {
			continue
		}
		if s.Name == "" {
			return nil, fmt.Errorf("source with rss %s has no name", s.RSS)
		}
		if s.Language == "" {
			s.Language = model.LangAuto
		}
		out = append(out, s)
	}
	return out, nil
}
