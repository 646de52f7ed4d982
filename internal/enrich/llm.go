package enrich

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// LLMOptions 模型连接参数
type LLMOptions struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// NewModel 按 provider 创建 langchaingo 模型
// provider 为 none 或没有 api key 时返回 nil，增强流程整体跳过
func NewModel(opts LLMOptions) (llms.Model, error) {
	provider := strings.ToLower(opts.Provider)
	if provider == "" {
		provider = ProviderOpenAI
	}
	if provider == ProviderNone || opts.APIKey == "" {
		return nil, nil
	}

	switch provider {
	case ProviderOpenAI:
		o := []openai.Option{openai.WithToken(opts.APIKey)}
		if opts.BaseURL != "" {
			o = append(o, openai.WithBaseURL(opts.BaseURL))
		}
		if opts.Model != "" {
			o = append(o, openai.WithModel(opts.Model))
		}
		return openai.New(o...)
	case ProviderAnthropic:
		o := []anthropic.Option{anthropic.WithToken(opts.APIKey)}
		if opts.BaseURL != "" {
			o = append(o, anthropic.WithBaseURL(opts.BaseURL))
		}
		if opts.Model != "" {
			o = append(o, anthropic.WithModel(opts.Model))
		}
		return anthropic.New(o...)
	}
	return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
}
