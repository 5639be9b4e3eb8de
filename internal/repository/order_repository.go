package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
)

// 管理画面の注文一覧の絞り込み
type AdminOrderListFilter struct {
	UserID    *int64
	PromoCode string
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
}
