package model

import "time"

// PlanDocument 定义了存储在 Elasticsearch 中的博客计划文档。
type PlanDocument struct {
	ExportID       uint      `json:"export_id"`
	UserID         uint      `json:"user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	TargetAudience string    `json:"target_audience"`
	Schedule       string    `json:"schedule"`
	Topics         []string  `json:"topics"`
	ExportedAt     time.Time `json:"exported_at"`
}

// PlanSearchResult 定义了返回给前端的计划搜索结果。
type PlanSearchResult struct {
	ExportID       uint     `json:"exportId"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	TargetAudience string   `json:"targetAudience"`
	Schedule       string   `json:"schedule"`
	Topics         []string `json:"topics"`
	Score          float64  `json:"score"`
}
