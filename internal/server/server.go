package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/engine"
	"github.com/iceymoss/go-news/internal/repo"
	"github.com/iceymoss/go-news/internal/tasks"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	engine    *gin.Engine
	scheduler *engine.Scheduler
	env       *core.Env
	log       *zap.Logger
}

// NewServer 看板 API 加日报静态页面，staticDir 一般就是 output.dir
func NewServer(env *core.Env, scheduler *engine.Scheduler, staticDir string) *Server {
	s := &Server{
		scheduler: scheduler,
		env:       env,
		log:       env.Log.With(zap.String("component", "server")),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())

	api := router.Group("/api")
	{
		api.GET("/tasks", s.listTasks)
		api.POST("/tasks/:name/run", s.runTask)
		api.GET("/stats", s.stats)
		api.GET("/report", s.report)
		api.GET("/logs", s.logs)
	}

	files := http.FileServer(http.Dir(staticDir))
	router.NoRoute(func(c *gin.Context) {
		// 为了安全，防止 API 404 返回了 HTML 页面
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	s.engine = router
	return s
}

// Handler 测试用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 启动调度器和 web server，ctx 取消后优雅退出
func (s *Server) Run(ctx context.Context, addr string) error {
	// 启动任务调度器
	s.scheduler.Start()
	defer s.scheduler.Stop()

	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("🛑 Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) listTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":       s.scheduler.Stats.GetAll(),
		"registered": tasks.Names(),
	})
}

func (s *Server) runTask(c *gin.Context) {
	name := c.Param("name")
	err := s.scheduler.ManualRun(name)
	switch {
	case errors.Is(err, engine.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrJobRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusAccepted, gin.H{"message": "Triggered"})
	}
}

// stats ?days=N 只统计最近 N 天发布的文章
func (s *Server) stats(c *gin.Context) {
	ctx := c.Request.Context()
	var since time.Time
	if days, _ := strconv.Atoi(c.Query("days")); days > 0 {
		since = time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	}

	articles, err := s.env.Stats.Stats(ctx, since)
	if err != nil {
		s.fail(c, err)
		return
	}
	raw, err := s.env.Stats.RawStats(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	locked, err := s.env.Articles.LockedCounts(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	rawLocked, err := s.env.Raw.LockedCounts(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"articles":   articles,
		"raw":        raw,
		"locked":     locked,
		"raw_locked": rawLocked,
	})
}

func (s *Server) report(c *gin.Context) {
	rep, err := s.env.LatestReport(c.Request.Context(), c.Query("task"))
	if errors.Is(err, repo.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report yet"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rep})
}

func (s *Server) logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	list, err := s.env.Jobs.RecentLogs(c.Request.Context(), c.Query("job"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (s *Server) fail(c *gin.Context, err error) {
	s.log.Error("❌ request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("🌐 request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("cost", time.Since(start)),
		)
	}
}
