package mailer

import (
	"context"
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/iceymoss/go-news/pkg/logger"
	"github.com/iceymoss/go-news/pkg/retry"

	"go.uber.org/zap"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer SMTP 邮件发送器
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	To       []string // 默认收件人

	retry retry.Config
	send  sendFunc
}

// 确保 Mailer 实现了 EmailSender 接口
var _ EmailSender = (*Mailer)(nil)

// NewMailer 创建邮件发送器
func NewMailer(host, port, username, password string, to []string) *Mailer {
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		To:       to,
		retry:    retry.Config{MaxAttempts: 3, Delay: time.Second},
		send:     smtp.SendMail,
	}
}

// DigestSubject 通知邮件标题
func DigestSubject(date string, count int) string {
	return fmt.Sprintf("财经日报 %s | 今日 %d 条要闻", date, count)
}

// SendDigest 发送日报通知给默认收件人
func (m *Mailer) SendDigest(ctx context.Context, d Digest) error {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>财经日报 %s</h2>", html.EscapeString(d.Date))
	fmt.Fprintf(&b, "<p>今日共 %d 条要闻。</p>", d.Count)
	if len(d.Headline) > 0 {
		b.WriteString("<ul>")
		for _, h := range d.Headline {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(h))
		}
		b.WriteString("</ul>")
	}
	if d.URL != "" {
		fmt.Fprintf(&b, `<p><a href="%s">查看完整日报</a></p>`, html.EscapeString(d.URL))
	}
	b.WriteString("</body></html>")

	return m.Send(ctx, m.To, DigestSubject(d.Date, d.Count), b.String())
}

// Send 发送邮件（带重试）
func (m *Mailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("邮件收件人为空")
	}
	msg := m.buildMessage(to, subject, body)

	// 身份验证
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	attempt := 0
	err := retry.Do(ctx, m.retry, func(ctx context.Context) error {
		attempt++
		err := m.send(m.Host+":"+m.Port, auth, m.Username, to, msg)
		if err != nil {
			logger.Warn("📧 邮件发送失败，准备重试", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("邮件发送失败: %w", err)
	}
	return nil
}

func (m *Mailer) buildMessage(to []string, subject, body string) []byte {
	// 邮件头部，顺序固定
	headers := [][2]string{
		{"From", m.Username},
		{"To", strings.Join(to, ", ")},
		{"Subject", mime.QEncoding.Encode("UTF-8", subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
