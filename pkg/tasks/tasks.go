// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "blog-planner-go/internal/model"

// PlanExportTask 描述一次异步导出：把计划快照渲染成文件并归档。
type PlanExportTask struct {
	ExportID uint               `json:"export_id"`
	UserID   uint               `json:"user_id"`
	Format   model.ExportFormat `json:"format"`
	FileName string             `json:"file_name"`
	Plan     model.BlogPlan     `json:"plan"`
}
