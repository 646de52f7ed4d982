package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iceymoss/go-news/internal/conf"
	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/enrich"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeLLM 按 prompt 类型返回固定内容
type fakeLLM struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt string
	for _, m := range messages {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				prompt += tc.Text
			}
		}
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	reply := "市场预期之内，短期影响有限。"
	switch {
	case strings.Contains(prompt, "## 原标题"):
		reply = "美联储维持利率不变"
	case strings.Contains(prompt, "## 原文"):
		reply = "美联储宣布将联邦基金利率维持在当前区间。"
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func (f *fakeLLM) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func rssFeed(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>test</title>` + strings.Join(items, "") + `</channel></rss>`
}

func rssItem(title, link, desc string, pub time.Time) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description><![CDATA[%s]]></description><pubDate>%s</pubDate></item>`,
		title, link, desc, pub.Format(time.RFC1123Z))
}

type testEnv struct {
	*core.Env
	llm    *fakeLLM
	public string
}

// newTestEnv 一个中文源、一个英文源，sqlite 临时库，输出到临时目录
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := time.Now()
	zh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed(
			rssItem("央行开展逆回购操作", "https://zh.example/1", "央行今日开展逆回购操作。", now.Add(-time.Hour)),
			rssItem("证监会发布新规", "https://zh.example/2", "证监会发布新规。", now.Add(-2*time.Hour)),
		))
	}))
	t.Cleanup(zh.Close)
	en := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed(
			rssItem("Fed holds rates steady", "https://en.example/1", "The Federal Reserve kept rates unchanged.", now.Add(-3*time.Hour)),
		))
	}))
	t.Cleanup(en.Close)

	dir := t.TempDir()
	sources := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(sources, []byte(fmt.Sprintf(`
sources:
  - name: 财新
    english_name: Caixin
    rss: %s
    language: zh
    category: domestic
    enabled: true
  - name: 路透社
    english_name: Reuters
    rss: %s
    language: en
    category: us_europe
    enabled: true
`, zh.URL, en.URL)), 0644))

	cfg := conf.Default()
	cfg.Database.DSN = filepath.Join(dir, "news.db") + "?_txlock=immediate"
	cfg.Database.LogLevel = "silent"
	cfg.LLM.Provider = "none"
	cfg.Fetch.SourcesFile = sources
	cfg.Output.Dir = filepath.Join(dir, "public")

	env, err := core.NewEnv(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })

	llm := &fakeLLM{}
	env.Enricher = enrich.New(llm, env.Filter, enrich.Options{Method: enrich.ProviderOpenAI, Concurrency: 2}, nil)
	return &testEnv{Env: env, llm: llm, public: cfg.Output.Dir}
}
