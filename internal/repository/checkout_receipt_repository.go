package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type CheckoutReceiptRepository interface {
	FindByKey(ctx context.Context, userID int64, key string) (model.CheckoutReceipt, bool, error)
	//同じ(userID, key)が既にあればErrDuplicate
	Create(ctx context.Context, r *model.CheckoutReceipt) error
	MarkEmailSent(ctx context.Context, id int64) error
}
