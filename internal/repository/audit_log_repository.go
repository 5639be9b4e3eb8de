package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

// 管理画面の監査ログ一覧の絞り込み
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   *int64
	Page         int
	Limit        int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
}
