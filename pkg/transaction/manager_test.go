package transaction

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type counter struct {
	ID    uint `gorm:"primaryKey"`
	Name  string
	Value int
}

func openDB(t *testing.T) *gorm.DB {
	dsn := filepath.Join(t.TempDir(), "tx.db") + "?_txlock=immediate"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&counter{}))
	require.NoError(t, conn.Create(&counter{Name: "views", Value: 1}).Error)
	return conn
}

func incr(ctx context.Context, conn *gorm.DB, name string) error {
	return GetTransactionOrDB(ctx, conn).Model(&counter{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + 1")).Error
}

func value(t *testing.T, conn *gorm.DB) int {
	var c counter
	require.NoError(t, conn.Where("name = ?", "views").First(&c).Error)
	return c.Value
}

func TestExecuteCommit(t *testing.T) {
	conn := openDB(t)
	m := NewManager(conn)

	err := m.Execute(context.Background(), nil, func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		if err := incr(ctx, conn, "views"); err != nil {
			return fmt.Errorf("incr: %w", err)
		}
		return incr(ctx, conn, "views")
	})
	require.NoError(t, err)
	assert.Equal(t, 3, value(t, conn))
}

func TestExecuteRollback(t *testing.T) {
	conn := openDB(t)
	m := NewManager(conn)
	boom := errors.New("boom")

	err := m.Execute(context.Background(), nil, func(ctx context.Context) error {
		require.NoError(t, incr(ctx, conn, "views"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, value(t, conn), "出错后回滚")
}

func TestExecuteNested(t *testing.T) {
	conn := openDB(t)
	m := NewManager(conn)

	err := m.Execute(context.Background(), nil, func(ctx context.Context) error {
		if err := incr(ctx, conn, "views"); err != nil {
			return err
		}
		return m.Execute(ctx, nil, func(ctx context.Context) error {
			return incr(ctx, m.DB(ctx), "views")
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 3, value(t, conn))
}
