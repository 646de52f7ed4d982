package enrich

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// shortSummaryThreshold 原文短于该长度时要求扩写
const shortSummaryThreshold = 100

func titlePrompt(title string) string {
	return fmt.Sprintf(`你是一位专业的金融新闻翻译。请将以下英文新闻标题翻译成地道的中文。

## 要求：
1. 保持金融专业性，准确翻译金融术语
2. 标题简洁有力（不超过30字）
3. 符合中文新闻表达习惯

## 常用术语对照：
- Central Bank: 央行
- Interest Rate: 利率
- Inflation: 通胀/通货膨胀
- Federal Reserve: 美联储
- Treasury Yield: 国债收益率

## 原标题：
%s

## 翻译（只输出翻译结果，不要解释）：`, title)
}

// target 为摘要下限，上限多 50 字
func summaryPrompt(content string, target int) string {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)

	if n < shortSummaryThreshold {
		return fmt.Sprintf(`你是一位专业的金融新闻翻译。请将以下英文新闻翻译成地道的中文。

## 要求：
1. 保持金融专业性，准确翻译金融术语
2. 原文较短（%d字），请根据标题和内容补充相关背景信息，扩展到%d字
3. 可以补充：相关市场背景、历史数据、行业知识、影响分析、专家观点
4. 符合中文新闻表达习惯
5. 保留关键数据、机构名称、人名

## 原文：
%s

## 翻译（只输出翻译结果，不要解释）：`, n, target+50, content)
	}

	return fmt.Sprintf(`你是一位专业的金融新闻翻译。请将以下英文新闻摘要翻译成地道的中文。

## 要求：
1. 保持金融专业性，准确翻译金融术语
2. 翻译后控制在%d-%d字之间
3. 如果原文超过300字，请精简概括到%d字
4. 补充内容可以包括：市场背景、历史数据、行业知识、影响分析
5. 符合中文新闻表达习惯
6. 保留关键数据、机构名称、人名

## 原文：
%s

## 翻译（只输出翻译结果，不要解释）：`, target, target+50, target+50, content)
}

func commentPrompt(title, content string) string {
	return fmt.Sprintf(`你是一位资深金融分析师，请为以下新闻撰写一句专业评论（30-50字）。

## 新闻标题：
%s

## 新闻摘要：
%s

## 评论要求：
1. 使用金融专业术语（如：存量博弈、货币政策、风险溢价、carry trade等）
2. 揭示背后的逻辑和影响
3. 提供前瞻性判断
4. 一句话，30-50字

## 示例风格：
输入："日本央行维持利率不变"
输出："按兵不动符合市场预期，但上调通胀预期暗示日央行对可持续通胀回归的信心增强，下半年加息预期升温将支撑日元汇率。"

输入："基金行业费率改革持续深化"
输出："费率战本质是存量博弈下的价格竞争，长期看将推动行业向规模效应和投研能力分化，中小公司生存压力加剧。"

## 请撰写评论（只输出评论，不要解释）：`, title, content)
}
