package tasks

import (
	"strconv"

	"github.com/iceymoss/go-news/pkg/utils"
)

// IntParam 读取整型参数，yaml/json 解出来的数字类型各不相同
func IntParam(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// BoolParam 读取布尔参数
func BoolParam(params map[string]any, key string, def bool) bool {
	v, ok := params[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}

// StringParam 读取字符串参数
func StringParam(params map[string]any, key, def string) string {
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	return def
}

// DateParam 读取 YYYY-MM-DD 日期参数，格式不对时返回默认值
func DateParam(params map[string]any, key, def string) string {
	s := StringParam(params, key, "")
	if s == "" {
		return def
	}
	if _, err := utils.ParseChinaDate(s); err != nil {
		return def
	}
	return s
}
