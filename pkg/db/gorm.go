package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options 数据库连接参数
type Options struct {
	Driver        string
	DSN           string
	LogLevel      string
	MaxOpen       int
	MaxIdle       int
	SlowThreshold time.Duration
}

// Open 按 driver 打开数据库
// 开启 TranslateError，唯一键冲突统一成 gorm.ErrDuplicatedKey
func Open(opts Options, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch strings.ToLower(opts.Driver) {
	case DriverMySQL:
		dialector = mysql.Open(opts.DSN)
	case DriverPostgres, "postgresql":
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite, "sqlite3":
		if err := ensureSQLiteDir(opts.DSN); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	slow := opts.SlowThreshold
	if slow <= 0 {
		slow = 500 * time.Millisecond
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: &ZapLogger{
			Logger: log.With(zap.String("agg_type", "gorm")),
			Config: gormLogger.Config{
				LogLevel:                  GormLevel(opts.LogLevel),
				Colorful:                  false,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             slow,
			},
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}

	pool, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpen > 0 {
		pool.SetMaxOpenConns(opts.MaxOpen)
	}
	if opts.MaxIdle > 0 {
		pool.SetMaxIdleConns(opts.MaxIdle)
	}

	log.Debug("database connected", zap.String("driver", opts.Driver))
	return conn, nil
}

// GormLevel 把 zap 风格的级别名映射成 gorm 日志级别
func GormLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormLogger.Silent
	case "debug", "info":
		return gormLogger.Info
	case "warn", "warning":
		return gormLogger.Warn
	case "error", "fatal", "panic", "dpanic":
		return gormLogger.Error
	default:
		return gormLogger.Warn
	}
}

// Close 关闭底层连接池
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	pool, err := conn.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// ensureSQLiteDir 数据库文件所在目录不存在时先创建
func ensureSQLiteDir(dsn string) error {
	path, _, _ := strings.Cut(dsn, "?")
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
