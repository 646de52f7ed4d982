package mailer

import "context"

// EmailSender 邮件发送接口
// 日报生成后的通知走这里，换成 SendGrid / SES 只需要另写一个实现
type EmailSender interface {
	// Send 发送 HTML 邮件
	Send(ctx context.Context, to []string, subject, body string) error

	// SendDigest 发送日报通知
	SendDigest(ctx context.Context, d Digest) error
}

// Digest 日报通知内容
type Digest struct {
	Date     string
	Count    int
	URL      string
	Headline []string // 前几条标题
}
