package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

var (
	// ChinaLocation 中国时区 (UTC+8)
	ChinaLocation *time.Location
)

func init() {
	var err error
	ChinaLocation, err = time.LoadLocation("Asia/Shanghai")
	if err != nil {
		// 如果加载失败，使用固定偏移量 UTC+8
		ChinaLocation = time.FixedZone("CST", 8*60*60)
	}
}

// NowInChina 获取中国时区的当前时间
func NowInChina() time.Time {
	return time.Now().In(ChinaLocation)
}

// DateInChina 北京时间下的日期字符串，日报文件名使用
func DateInChina(t time.Time) string {
	return t.In(ChinaLocation).Format(DateLayout)
}

// ParseChinaDate 按北京时间解析 YYYY-MM-DD
func ParseChinaDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, ChinaLocation)
}

// FormatChina 页面展示用的北京时间
func FormatChina(t time.Time) string {
	return t.In(ChinaLocation).Format("2006-01-02 15:04")
}
