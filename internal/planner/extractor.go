package planner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"blog-planner-go/internal/model"
)

// MinTranscriptLen 是生成计划所需的最少消息数。
const MinTranscriptLen = 4

var (
	titlePattern    = regexp.MustCompile(`(?i)(?:blog about|write about)` + spaceClass + `+(` + lineChar + `+?)(?:\.|\?|$)`)
	audiencePattern = regexp.MustCompile(`(?i)(?:audience is|readers are|for)` + spaceClass + `+(` + lineChar + `+?)(?:\.|\?|$)`)
)

// FieldUpdate 把一次规则命中应用到计划草稿上。
type FieldUpdate func(plan model.BlogPlan) model.BlogPlan

// Rule 检查一条用户消息，命中时返回对应的字段更新。
type Rule struct {
	Name  string
	Match func(content string) (FieldUpdate, bool)
}

// DefaultRules 返回按固定顺序执行的提取规则：标题、受众、排期。
func DefaultRules() []Rule {
	return []Rule{
		{Name: "title", Match: matchTitle},
		{Name: "audience", Match: matchAudience},
		{Name: "schedule", Match: matchSchedule},
	}
}

// Extract 使用默认规则从对话记录中提取博客计划。
// 消息数少于 MinTranscriptLen 时返回 nil。
func Extract(transcript []model.Message) *model.BlogPlan {
	return ExtractWith(DefaultRules(), transcript)
}

// ExtractWith 按顺序扫描用户消息，把每条规则的命中折叠进草稿。
// 同一字段以最后一次命中为准。
func ExtractWith(rules []Rule, transcript []model.Message) *model.BlogPlan {
	if len(transcript) < MinTranscriptLen {
		return nil
	}

	draft := model.DefaultBlogPlan()
	for _, msg := range transcript {
		if !msg.IsUser() {
			continue
		}
		for _, rule := range rules {
			if update, ok := rule.Match(msg.Content); ok {
				draft = update(draft)
			}
		}
	}
	return &draft
}

func matchTitle(content string) (FieldUpdate, bool) {
	lowered := strings.ToLower(content)
	if !containsAny(lowered, "blog about", "write about") {
		return nil, false
	}
	title, ok := capture(titlePattern, content)
	if !ok {
		return nil, false
	}
	return func(plan model.BlogPlan) model.BlogPlan {
		plan.Title = title
		plan.Description = "A blog about " + title
		if topics, ok := TopicsFor(title); ok {
			plan.Topics = topics
		}
		return plan
	}, true
}

func matchAudience(content string) (FieldUpdate, bool) {
	lowered := strings.ToLower(content)
	if !containsAny(lowered, "audience", "readers") {
		return nil, false
	}
	audience, ok := capture(audiencePattern, content)
	if !ok {
		return nil, false
	}
	return func(plan model.BlogPlan) model.BlogPlan {
		plan.TargetAudience = audience
		return plan
	}, true
}

func matchSchedule(content string) (FieldUpdate, bool) {
	lowered := strings.ToLower(content)
	if !containsAny(lowered, "schedule", "post", "week") {
		return nil, false
	}

	var schedule string
	switch {
	case strings.Contains(lowered, "weekly"):
		schedule = model.ScheduleWeekly
	case strings.Contains(lowered, "monthly"):
		schedule = model.ScheduleMonthly
	case strings.Contains(lowered, "daily"):
		schedule = model.ScheduleDaily
	case strings.Contains(lowered, "bi-weekly"):
		// "bi-weekly" 也包含 "weekly"，上面的分支总会先命中；保留此分支以维持判定顺序
		schedule = model.ScheduleBiWeekly
	default:
		return nil, false
	}
	return func(plan model.BlogPlan) model.BlogPlan {
		plan.Schedule = schedule
		return plan
	}, true
}

// capture 返回第一个捕获组去除首尾空白后的内容。
// 是否命中以去空白之前的捕获组为准，因此纯空白的捕获会得到空串。
func capture(re *regexp.Regexp, content string) (string, bool) {
	m := re.FindStringSubmatch(content)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return trimSpace(m[1]), true
}

// TopicsFor 根据标题生成五个固定句式的选题。
// 标题中没有长度超过 3 的词时返回 false，调用方应保留原有选题。
func TopicsFor(title string) ([]string, bool) {
	var keyword string
	for _, word := range strings.Split(title, " ") {
		if utf8.RuneCountInString(word) > 3 {
			keyword = word
			break
		}
	}
	if keyword == "" {
		return nil, false
	}
	return []string{
		"Introduction to " + title,
		"Getting Started with " + title,
		fmt.Sprintf("Advanced %s Techniques", keyword),
		title + " Best Practices",
		title + " Case Studies",
	}, true
}
