package repository

import (
	"context"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

// 本・プロモーションの変更履歴を1行追加
func (r *AuditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *AuditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.AuditLog{}).Scopes(auditLogWhere(f))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return []model.AuditLog{}, 0, err
	}

	entries := []model.AuditLog{}
	err := base.
		Order("created_at desc, id desc").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&entries).Error
	if err != nil {
		return []model.AuditLog{}, 0, err
	}
	return entries, total, nil
}

func auditLogWhere(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ActorUserID != nil {
			db = db.Where("actor_user_id = ?", *f.ActorUserID)
		}
		if f.Action != "" {
			db = db.Where("action = ?", f.Action)
		}
		if f.ResourceType != "" {
			db = db.Where("resource_type = ?", f.ResourceType)
		}
		if f.ResourceID != nil {
			db = db.Where("resource_id = ?", *f.ResourceID)
		}
		return db
	}
}
