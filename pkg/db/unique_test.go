package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/go-news/pkg/db/objects"
)

func TestIsUniqueViolationDriverCodes(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("save: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1045}))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "40001"}))
}

func TestOpenSQLiteDuplicate(t *testing.T) {
	conn, err := Open(Options{Driver: DriverSQLite, DSN: "file::memory:", LogLevel: "silent", MaxOpen: 1}, nil)
	require.NoError(t, err)
	defer Close(conn)
	require.NoError(t, conn.AutoMigrate(&objects.NewsArticle{}))

	row := objects.NewsArticle{DedupHash: objects.DedupHash("zh", "央行降准"), DedupKey: "央行降准", Title: "央行降准"}
	require.NoError(t, conn.Create(&row).Error)

	dup := objects.NewsArticle{DedupHash: row.DedupHash, DedupKey: "央行降准", Title: "央行降准"}
	err = conn.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), "唯一键冲突应被识别: %v", err)

	var saved objects.NewsArticle
	require.NoError(t, conn.First(&saved, row.ID).Error)
	assert.Equal(t, objects.StateFree, saved.TranslationState)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "oracle"}, nil)
	assert.Error(t, err)
}

func TestDedupHashDependsOnLanguage(t *testing.T) {
	assert.NotEqual(t, objects.DedupHash("zh", "x"), objects.DedupHash("en", "x"))
	assert.Len(t, objects.DedupHash("zh", "x"), 64)
}
