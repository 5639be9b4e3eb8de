package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
)

// ユーザーごとのカート本体（明細はCartItemRepository）
type CartRepository interface {
	//無ければ作る
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	//ゲストカートを取り込んだ時刻を残す
	MarkMerged(ctx context.Context, cartID int64, at time.Time) error
	Clear(ctx context.Context, cartID int64) error
}
