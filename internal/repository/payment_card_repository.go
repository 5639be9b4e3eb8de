package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type PaymentCardRepository interface {
	Create(ctx context.Context, card model.PaymentCard) (model.PaymentCard, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.PaymentCard, error)
	FindByID(ctx context.Context, cardID int64) (model.PaymentCard, error)
	Delete(ctx context.Context, cardID int64) error
}
