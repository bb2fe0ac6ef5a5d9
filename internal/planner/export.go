package planner

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"blog-planner-go/internal/model"

	"github.com/yuin/goldmark"
)

var whitespaceRun = regexp.MustCompile(spaceClass + `+`)

// maxSlugRunes 限制 slug 长度，保证导出文件名放得进 varchar(255)。
const maxSlugRunes = 200

// RenderMarkdown 把计划渲染为可下载的 Markdown 文档。
func RenderMarkdown(plan model.BlogPlan) string {
	bullets := make([]string, 0, len(plan.Topics))
	for _, topic := range plan.Topics {
		bullets = append(bullets, "- "+topic)
	}
	return strings.TrimSpace(fmt.Sprintf(
		"# Blog Plan: %s\n\n## Description\n%s\n\n## Target Audience\n%s\n\n## Topics\n%s\n\n## Schedule\n%s",
		plan.Title,
		plan.Description,
		plan.TargetAudience,
		strings.Join(bullets, "\n"),
		plan.Schedule,
	))
}

// RenderText 把计划渲染为适合复制到剪贴板的纯文本。
func RenderText(plan model.BlogPlan) string {
	return strings.TrimSpace(fmt.Sprintf(
		"Blog Plan: %s\nDescription: %s\nTarget Audience: %s\nTopics: %s\nSchedule: %s",
		plan.Title,
		plan.Description,
		plan.TargetAudience,
		strings.Join(plan.Topics, ", "),
		plan.Schedule,
	))
}

// RenderHTML 先渲染 Markdown，再用 goldmark 转成 HTML 片段。
func RenderHTML(plan model.BlogPlan) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(RenderMarkdown(plan)), &buf); err != nil {
		return "", fmt.Errorf("render plan html: %w", err)
	}
	return buf.String(), nil
}

// Render 按格式渲染计划内容。
func Render(plan model.BlogPlan, format model.ExportFormat) (string, error) {
	switch format {
	case model.ExportMarkdown:
		return RenderMarkdown(plan), nil
	case model.ExportHTML:
		return RenderHTML(plan)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// Slug 把标题转成小写，并把连续空白替换为单个连字符。
// 超过 maxSlugRunes 的部分被截掉，截断处的连字符一并去掉。
func Slug(title string) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
	if runes := []rune(slug); len(runes) > maxSlugRunes {
		slug = strings.TrimRight(string(runes[:maxSlugRunes]), "-")
	}
	return slug
}

// FileName 返回导出文件名，例如 "cooking-for-busy-parents-plan.md"。
func FileName(plan model.BlogPlan, format model.ExportFormat) string {
	return fmt.Sprintf("%s-plan.%s", Slug(plan.Title), format)
}

// ContentType 返回导出格式对应的 MIME 类型。
func ContentType(format model.ExportFormat) string {
	if format == model.ExportHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}
