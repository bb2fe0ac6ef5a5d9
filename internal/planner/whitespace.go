package planner

import (
	"strings"
	"unicode"
)

// 对话内容里的空白按浏览器的定义判断：除 ASCII 空白外还包括不换行空格、
// 全角空格、BOM 以及行/段分隔符。RE2 的 \s 只认 ASCII。
const (
	spaceClass = `[\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}]`
	// lineChar 匹配除行终止符以外的任意字符
	lineChar = `[^\n\r\x{2028}\x{2029}]`
)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}
