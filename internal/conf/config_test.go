package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iceymoss/go-news/internal/model"
	"github.com/iceymoss/go-news/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-test")
	path := writeConfig(t, `
server:
  port: ":9090"
llm:
  provider: anthropic
  api_key: ${TEST_LLM_KEY}
  retry_delay: 500ms
pipeline:
  window_hours: 12
jobs:
  - name: news:digest
    cron: "0 0 8 * * *"
    enable: true
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Server.Port)
	assert.Equal(t, "sk-test", c.LLM.APIKey)
	assert.Equal(t, 500*time.Millisecond, c.LLM.RetryDelay)
	assert.Equal(t, 12, c.Pipeline.WindowHours)
	// 未配置的字段保持默认值
	assert.Equal(t, 48, c.Pipeline.MaxAgeHours)
	assert.Equal(t, 20, c.Fetch.MaxEntries)
	assert.Equal(t, "public", c.Output.Dir)
	require.Len(t, c.Jobs, 1)
	assert.True(t, c.Jobs[0].Enable)
}

func TestLoadConfigRejectsUnknownSelector(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  selector: random
`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestPipelineOptionsGlobalScheme(t *testing.T) {
	c := Default()
	c.Pipeline.Scheme = "global"

	opts, err := c.PipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, model.SchemeGlobal, opts.Scheme)
	assert.Equal(t, pipeline.SelectorSourceQuota, opts.Selector)
	assert.Equal(t, 15, opts.TopN)
	assert.Equal(t, 15, opts.FinalLimit)
}

func TestPipelineOptionsRegionalDefault(t *testing.T) {
	opts, err := Default().PipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, model.SchemeRegional, opts.Scheme)
	assert.Equal(t, pipeline.SelectorStratified, opts.Selector)
	assert.Equal(t, pipeline.OrderRoundRobin, opts.Ordering)
}

func TestValidate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	c.LLM.Provider = "gemini"
	assert.Error(t, c.Validate())

	c = Default()
	c.Pipeline.Scheme = "continents"
	assert.Error(t, c.Validate())
}
