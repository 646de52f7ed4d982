package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/internal/engine"
	"github.com/iceymoss/go-news/internal/server"
	"github.com/iceymoss/go-news/internal/tasks"
	"github.com/iceymoss/go-news/internal/tasks/news"
	"github.com/iceymoss/go-news/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runDate   string
	runNotify bool
	regenDays int
	rawLimit  int
	rawClear  bool
	statsDays int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scheduler and dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sched := engine.NewScheduler(env, engine.NewRunGuard(env.Redis, env.Config.Redis.LockTTL))

		// 配置文件里的同名任务覆盖代码注册的默认调度
		loaded := sched.LoadConfigJobs(env.Config.Jobs)
		tasks.ApplyAutoJobs(sched, loaded)
		if err := sched.LoadDBJobs(ctx); err != nil {
			logger.Warn("⚠️ load db jobs failed", zap.Error(err))
		}

		srv := server.NewServer(env, sched, env.Config.Output.Dir)
		logger.Info("🌐 Dashboard running", zap.String("addr", env.Config.Server.Port))
		return srv.Run(ctx, env.Config.Server.Port)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run one task now (default news:digest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := news.DigestTaskName
		if len(args) > 0 {
			name = args[0]
		}
		params := copyParams(tasks.DefaultParams(name))
		if runDate != "" {
			params["date"] = runDate
		}
		if cmd.Flags().Changed("notify") {
			params["notify"] = runNotify
		}
		return runTask(cmd.Context(), name, params)
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Rebuild HTML pages of the last N days from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{}
		if regenDays > 0 {
			params["days"] = regenDays
		}
		return runTask(cmd.Context(), news.RegenerateTaskName, params)
	},
}

var processRawCmd = &cobra.Command{
	Use:   "process-raw",
	Short: "Process articles staged by news:fetch_raw",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd.Context(), news.ProcessRawTaskName, map[string]any{
			"limit": rawLimit,
			"clear": rawClear,
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print article and staging statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var since time.Time
		if statsDays > 0 {
			since = time.Now().Add(-time.Duration(statsDays) * 24 * time.Hour)
		}
		articles, err := env.Stats.Stats(ctx, since)
		if err != nil {
			return err
		}
		raw, err := env.Stats.RawStats(ctx)
		if err != nil {
			return err
		}
		locked, err := env.Articles.LockedCounts(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"articles": articles, "raw": raw, "locked": locked})
	},
}

func init() {
	runCmd.Flags().StringVar(&runDate, "date", "", "digest date YYYY-MM-DD (Beijing time)")
	runCmd.Flags().BoolVar(&runNotify, "notify", false, "send the digest email")
	regenerateCmd.Flags().IntVar(&regenDays, "days", 0, "days to rebuild (default output.regenerate_days)")
	processRawCmd.Flags().IntVar(&rawLimit, "limit", 0, "max staged articles to claim, 0 for all")
	processRawCmd.Flags().BoolVar(&rawClear, "clear", false, "delete staged articles after processing")
	statsCmd.Flags().IntVar(&statsDays, "days", 0, "only count articles published in the last N days")
}

// runTask 同步执行一个任务，没有可渲染文章只告警不报错
func runTask(ctx context.Context, name string, params map[string]any) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	sched := engine.NewScheduler(env, engine.NewRunGuard(env.Redis, env.Config.Redis.LockTTL))
	err = sched.RunNow(ctx, name, params)
	if core.IsWarning(err) {
		logger.Warn("⚠️ nothing to render", zap.String("task", name), zap.Error(err))
		return nil
	}
	return err
}

func copyParams(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
