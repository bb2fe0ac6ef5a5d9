// Package planner 包含博客规划助手的核心逻辑：
// 按关键词选择固定回复模板，以及从对话记录中提取博客计划。
// 包内函数均为纯计算，不做 I/O。
package planner

import (
	"strings"

	"blog-planner-go/internal/model"
)

// Templates 是六条固定的助手回复模板。
type Templates struct {
	Greeting string
	Topic    string
	Audience string
	Schedule string
	Ideas    string
	Default  string
}

// DefaultTemplates 返回内置的回复模板。
func DefaultTemplates() Templates {
	return Templates{
		Greeting: "Hello! I'm your blog planning assistant. What kind of blog would you like to create?",
		Topic:    "That's a great topic! Who is your target audience for this blog?",
		Audience: "Perfect. Now, what kind of content schedule are you thinking about? Weekly posts, bi-weekly, or monthly?",
		Schedule: "Great plan! Based on our conversation, I've created a blog plan for you. Would you like me to suggest some specific post ideas for your first month?",
		Ideas: "Here are some post ideas that could work well for your blog:\n\n" +
			"1. An introductory post explaining your blog's purpose\n" +
			"2. A beginner's guide to your main topic\n" +
			"3. A case study or success story\n" +
			"4. A how-to tutorial on a specific aspect\n" +
			"5. A roundup of useful resources\n\n" +
			"What do you think of these ideas?",
		Default: "I'm here to help you plan your blog. What specific aspect would you like to discuss next?",
	}
}

// Selector 按关键词从模板表中挑选回复。
type Selector struct {
	templates Templates
	routes    []route
}

type route struct {
	keywords []string
	reply    string
}

// NewSelector 创建一个使用给定模板的 Selector。
func NewSelector(t Templates) *Selector {
	return &Selector{
		templates: t,
		// 顺序即优先级
		routes: []route{
			{keywords: []string{"topic", "write about", "blog about"}, reply: t.Topic},
			{keywords: []string{"audience", "readers", "demographic"}, reply: t.Audience},
			{keywords: []string{"schedule", "frequency", "how often"}, reply: t.Schedule},
			{keywords: []string{"idea", "suggestion", "recommend"}, reply: t.Ideas},
		},
	}
}

// Templates 返回 Selector 使用的模板表。
func (s *Selector) Templates() Templates {
	return s.templates
}

// Select 根据最新的用户输入与对话长度选择回复。
// 对话的前两轮一律返回问候语，不看关键词。
func (s *Selector) Select(input string, transcript []model.Message) string {
	if len(transcript) <= 1 {
		return s.templates.Greeting
	}

	lowered := strings.ToLower(input)
	for _, r := range s.routes {
		if containsAny(lowered, r.keywords...) {
			return r.reply
		}
	}
	return s.templates.Default
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
