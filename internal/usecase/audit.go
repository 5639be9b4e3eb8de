package usecase

import (
	"context"
	"encoding/json"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

// 監査ログを作成
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
func writeAudit(
	ctx context.Context,
	audits repo.AuditLogRepository,
	actorUserID int64,
	action model.AuditAction,
	resource model.AuditResourceType,
	resourceID int64,
	before interface{},
	after interface{},
	now time.Time,
) error {
	beforeJSON, err := toAuditJSON(before)
	if err != nil {
		return err
	}
	afterJSON, err := toAuditJSON(after)
	if err != nil {
		return err
	}

	return audits.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    now,
	})
}

// nilは空文字
func toAuditJSON(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
