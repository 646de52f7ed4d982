package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iceymoss/go-news/internal/conf"
	"github.com/iceymoss/go-news/internal/core"
	"github.com/iceymoss/go-news/pkg/logger"

	// import anonymously to register tasks to the list
	_ "github.com/iceymoss/go-news/internal/tasks/network"
	_ "github.com/iceymoss/go-news/internal/tasks/news"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "newsbot",
	Short: "Finance news digest: fetch, select, translate and publish",
	Long: `newsbot 抓取国内外财经 RSS，按板块筛选去重，
英文新闻经 LLM 翻译并生成点评，最后输出每日 HTML 日报和首页索引。`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/config.yaml", "config file path")
	rootCmd.AddCommand(serveCmd, runCmd, regenerateCmd, processRawCmd, statsCmd)
}

// setup 加载 .env 和配置，初始化依赖
func setup(ctx context.Context) (*core.Env, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("⚠️ .env load failed", zap.Error(err))
	}

	cfg, err := conf.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configFile, err)
	}
	logger.SetLevel(cfg.Log.Level)

	return core.NewEnv(ctx, cfg, logger.Named("newsbot"))
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
