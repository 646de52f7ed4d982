package model

import (
	"fmt"
	"sort"
)

// Category 新闻板块
type Category string

const (
	CategoryDomestic    Category = "domestic"
	CategoryAsiaPacific Category = "asia_pacific"
	CategoryUSEurope    Category = "us_europe"
	CategoryGlobal      Category = "global"
)

// CategoryScheme 带版本的封闭板块集合，Categories 的顺序即跨板块去重的优先级
type CategoryScheme struct {
	Version    string
	Name       string
	Categories []Category
}

var (
	// SchemeRegional v1：国内 > 亚太 > 欧美
	SchemeRegional = CategoryScheme{
		Version:    "v1",
		Name:       "regional",
		Categories: []Category{CategoryDomestic, CategoryAsiaPacific, CategoryUSEurope},
	}

	// SchemeGlobal v2：统一为 global 单板块
	SchemeGlobal = CategoryScheme{
		Version:    "v2",
		Name:       "global",
		Categories: []Category{CategoryGlobal},
	}
)

// SchemeByName 根据配置名查找板块方案
func SchemeByName(name string) (CategoryScheme, error) {
	switch name {
	case "", SchemeRegional.Name:
		return SchemeRegional, nil
	case SchemeGlobal.Name:
		return SchemeGlobal, nil
	}
	return CategoryScheme{}, fmt.Errorf("unknown category scheme %q", name)
}

// SingleCategory 单板块方案下跨板块去重和板块加分都不生效
func (s CategoryScheme) SingleCategory() bool {
	return len(s.Categories) <= 1
}

// Contains 判断板块是否属于该方案
func (s CategoryScheme) Contains(c Category) bool {
	for _, x := range s.Categories {
		if x == c {
			return true
		}
	}
	return false
}

// Order 返回处理顺序：先按方案优先级，再把方案外出现的板块按字典序追加
func (s CategoryScheme) Order(present map[Category][]Article) []Category {
	order := make([]Category, 0, len(present)+len(s.Categories))
	order = append(order, s.Categories...)

	var extra []Category
	for c := range present {
		if !s.Contains(c) {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}
