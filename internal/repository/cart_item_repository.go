package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一の本は数量を加算
	UpsertByCartAndBook(ctx context.Context, cartID int64, bookID int64, addQty int64) error
	// 数量を上書き（無ければ作る）
	SetQuantity(ctx context.Context, cartID int64, bookID int64, qty int64) error
	DeleteByCartAndBook(ctx context.Context, cartID int64, bookID int64) error
}
