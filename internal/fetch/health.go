package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/iceymoss/go-news/internal/model"

	"golang.org/x/sync/errgroup"
)

// Health 单个源的可用性
type Health struct {
	Source  string        `json:"source"`
	URL     string        `json:"url"`
	Status  int           `json:"status"`
	Latency time.Duration `json:"latency"`
	Err     string        `json:"error,omitempty"`
}

func (h Health) OK() bool {
	return h.Err == "" && h.Status >= 200 && h.Status < 400
}

// CheckHealth 对每个源发 GET 请求，只看状态码不解析内容
func (f *Fetcher) CheckHealth(ctx context.Context, sources []model.Source) []Health {
	out := make([]Health, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			out[i] = f.check(gctx, src)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (f *Fetcher) check(ctx context.Context, src model.Source) Health {
	h := Health{Source: src.Name, URL: src.RSS}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.RSS, nil)
	if err != nil {
		h.Err = err.Error()
		return h
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	h.Latency = time.Since(start)
	if err != nil {
		h.Err = err.Error()
		return h
	}
	defer resp.Body.Close()

	h.Status = resp.StatusCode
	if resp.StatusCode >= 400 {
		h.Err = fmt.Sprintf("http %d", resp.StatusCode)
	}
	return h
}
