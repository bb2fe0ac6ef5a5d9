package model

// 排期的四种取值。
const (
	ScheduleDaily    = "Daily posts"
	ScheduleWeekly   = "Weekly posts"
	ScheduleBiWeekly = "Bi-weekly posts"
	ScheduleMonthly  = "Monthly posts"
)

// BlogPlan 的默认字段值。
const (
	DefaultTitle       = "Your New Blog"
	DefaultDescription = "A blog based on our conversation"
	DefaultAudience    = "General audience"
)

// BlogPlan 是从对话记录推导出的博客计划。
// 它不是权威数据：每次提取都从默认值重新计算。
type BlogPlan struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Topics         []string `json:"topics"`
	Schedule       string   `json:"schedule"`
	TargetAudience string   `json:"targetAudience"`
}

// DefaultBlogPlan 返回全部字段为默认值的计划草稿。
func DefaultBlogPlan() BlogPlan {
	return BlogPlan{
		Title:          DefaultTitle,
		Description:    DefaultDescription,
		Topics:         []string{},
		Schedule:       ScheduleWeekly,
		TargetAudience: DefaultAudience,
	}
}
