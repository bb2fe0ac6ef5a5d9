package repository

import (
	"time"

	"blog-planner-go/internal/model"

	"gorm.io/gorm"
)

// ExportRepository 定义了导出记录的持久化操作。
type ExportRepository interface {
	Create(record *model.ExportRecord) error
	FindByID(id uint) (*model.ExportRecord, error)
	FindByUser(userID uint) ([]model.ExportRecord, error)
	MarkCompleted(id uint, objectName string) error
	MarkFailed(id uint, reason string) error
}

type exportRepository struct {
	db *gorm.DB
}

// NewExportRepository 创建一个新的 ExportRepository 实例。
func NewExportRepository(db *gorm.DB) ExportRepository {
	return &exportRepository{db: db}
}

func (r *exportRepository) Create(record *model.ExportRecord) error {
	return r.db.Create(record).Error
}

func (r *exportRepository) FindByID(id uint) (*model.ExportRecord, error) {
	var record model.ExportRecord
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUser 按创建时间倒序列出用户的导出记录。
func (r *exportRepository) FindByUser(userID uint) ([]model.ExportRecord, error) {
	var records []model.ExportRecord
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	return records, err
}

func (r *exportRepository) MarkCompleted(id uint, objectName string) error {
	now := time.Now()
	return r.db.Model(&model.ExportRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       model.ExportCompleted,
		"object_name":  objectName,
		"error":        "",
		"completed_at": &now,
	}).Error
}

func (r *exportRepository) MarkFailed(id uint, reason string) error {
	return r.db.Model(&model.ExportRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status": model.ExportFailed,
		"error":  reason,
	}).Error
}
