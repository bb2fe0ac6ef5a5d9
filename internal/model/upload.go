// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// ExportFormat 是导出文件的格式。
type ExportFormat string

const (
	ExportMarkdown ExportFormat = "md"
	ExportHTML     ExportFormat = "html"
)

// Valid 判断导出格式是否受支持。
func (f ExportFormat) Valid() bool {
	return f == ExportMarkdown || f == ExportHTML
}

// 导出记录的状态。
const (
	ExportPending   = 0
	ExportCompleted = 1
	ExportFailed    = 2
)

// ExportRecord 定义了 plan_exports 表的 ORM 模型。
// 它记录了每次异步导出的计划快照、状态与对象存储位置。
type ExportRecord struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint         `gorm:"index;not null" json:"userId"`
	Format      ExportFormat `gorm:"type:varchar(8);not null" json:"format"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	PlanJSON    string       `gorm:"type:text;not null" json:"-"`
	FileName    string       `gorm:"type:varchar(255);not null" json:"fileName"`
	ObjectName  string       `gorm:"type:varchar(512)" json:"objectName"`
	Status      int          `gorm:"type:tinyint;not null;default:0" json:"status"` // 0: pending, 1: completed, 2: failed
	Error       string       `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	CompletedAt *time.Time   `gorm:"default:null" json:"completedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ExportRecord) TableName() string {
	return "plan_exports"
}
