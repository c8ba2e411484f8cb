// Package htmlsanitize 清洗用户提交的富文本与纯文本字段
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Rich 保留常见排版标签（段落、列表、链接、表格），去掉脚本与事件属性
// 用于博客正文
func Rich(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(richPolicy.Sanitize(s))
}

// Plain 去掉全部标签，只留文本
// 用于群组简介、活动说明、博客摘要等展示为纯文本的字段
func Plain(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(plainPolicy.Sanitize(s))
}
