package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateInChina(t *testing.T) {
	// UTC 16:30 已经是北京时间第二天
	ts := time.Date(2026, 1, 26, 16, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-27", DateInChina(ts))
	assert.Equal(t, "2026-01-27 00:30", FormatChina(ts))
}

func TestParseChinaDate(t *testing.T) {
	d, err := ParseChinaDate("2026-01-27")
	require.NoError(t, err)
	assert.Equal(t, 16, d.UTC().Hour())
	assert.Equal(t, 26, d.UTC().Day())

	_, err = ParseChinaDate("27/01/2026")
	assert.Error(t, err)
}
