package sensitive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWordInline(t *testing.T) {
	w, err := NewWord("", []string{"内幕消息", ""})
	require.NoError(t, err)
	assert.Equal(t, 1, w.Inline())

	pass, str := w.Validate("据内幕消息称")
	assert.Equal(t, false, pass)
	assert.Equal(t, "内幕消息", str)

	assert.Equal(t, "据****称", w.Sanitize("据内幕消息称"))
	assert.Equal(t, "央行降准", w.Sanitize("央行降准"))
}

func TestNewWordDict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.txt")
	require.NoError(t, os.WriteFile(path, []byte("协警\n"), 0644))

	w, err := NewWord(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "你是！！", w.Replace("你是协警", '！'))

	_, err = NewWord(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestSanitizeNil(t *testing.T) {
	var w *Word
	assert.Equal(t, "原文", w.Sanitize("原文"))
}
