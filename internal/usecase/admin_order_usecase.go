package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

// 管理画面の注文一覧・監査ログ一覧
type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo}
}

// From/ToはRFC3339
type AdminOrderListInput struct {
	Page      int
	Limit     int
	UserID    *int64
	PromoCode string
	From      string
	To        string
}

type AuditLogListInput struct {
	Page         int
	Limit        int
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// 全ユーザーの注文（明細つき）
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	f := repo.AdminOrderListFilter{
		UserID:    in.UserID,
		PromoCode: strings.ToUpper(strings.TrimSpace(in.PromoCode)),
		Page:      in.Page,
		Limit:     in.Limit,
	}
	if in.From != "" {
		t, ok := parseDateTimeRFC3339(in.From)
		if !ok {
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid from")
		}
		f.From = t
	}
	if in.To != "" {
		t, ok := parseDateTimeRFC3339(in.To)
		if !ok {
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid to")
		}
		f.To = t
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be before to")
	}

	out := OrderListOutput{Page: in.Page, Limit: in.Limit}

	// 注文と明細を同じスナップショットで読む
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.Total = total

		items, err := withOrderItems(ctx, r.OrderItems(), orders)
		if err != nil {
			return err
		}
		out.Items = items
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) AuditLogs(ctx context.Context, in AuditLogListInput) (AuditLogListOutput, error) {
	if in.Page < 1 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		Page:        in.Page,
		Limit:       in.Limit,
	}
	if in.Action != "" {
		f.Action = model.AuditAction(strings.ToUpper(strings.TrimSpace(in.Action)))
	}
	switch rt := model.AuditResourceType(strings.ToLower(strings.TrimSpace(in.ResourceType))); rt {
	case "":
	case model.AuditResourceBook, model.AuditResourcePromotion:
		f.ResourceType = rt
	default:
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
	}

	logs, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return AuditLogListOutput{Items: logs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 期間パラメータ用
func parseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
