package mailer

import (
	"context"
	"errors"
	"mime"
	"net/smtp"
	"strings"
	"testing"

	"github.com/iceymoss/go-news/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDigest(t *testing.T) {
	m := NewMailer("smtp.example.com", "587", "bot@example.com", "secret", []string{"a@example.com", "b@example.com"})

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err := m.SendDigest(context.Background(), Digest{
		Date:     "2026-01-26",
		Count:    15,
		URL:      "https://news.example.com/2026-01-26.html",
		Headline: []string{"美联储维持利率不变", "<b>x</b>"},
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: bot@example.com\r\nTo: a@example.com, b@example.com\r\n"))
	assert.Contains(t, gotMsg, "Subject: "+mime.QEncoding.Encode("UTF-8", "财经日报 2026-01-26 | 今日 15 条要闻"))
	assert.Contains(t, gotMsg, "美联储维持利率不变")
	assert.Contains(t, gotMsg, "&lt;b&gt;x&lt;/b&gt;")
	assert.Contains(t, gotMsg, `href="https://news.example.com/2026-01-26.html"`)
}

func TestSendRetries(t *testing.T) {
	m := NewMailer("smtp.example.com", "25", "", "", nil)
	m.retry = retry.Config{MaxAttempts: 3}

	calls := 0
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		assert.Nil(t, a, "未配置用户名时不做认证")
		if calls < 3 {
			return errors.New("421 try again")
		}
		return nil
	}
	require.NoError(t, m.Send(context.Background(), []string{"a@example.com"}, "s", "b"))
	assert.Equal(t, 3, calls)

	calls = 0
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		return errors.New("550 rejected")
	}
	err := m.Send(context.Background(), []string{"a@example.com"}, "s", "b")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestSendNoRecipient(t *testing.T) {
	m := NewMailer("smtp.example.com", "25", "", "", nil)
	assert.Error(t, m.SendDigest(context.Background(), Digest{Date: "2026-01-26"}))
}
