package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type PromotionRepository interface {
	List(ctx context.Context) ([]model.Promotion, error)
	FindByID(ctx context.Context, id int64) (model.Promotion, error)
	// codeは大文字で渡す
	FindByCode(ctx context.Context, code string) (model.Promotion, error)
	// コード重複はErrDuplicate
	Create(ctx context.Context, p model.Promotion) (model.Promotion, error)
	Update(ctx context.Context, p model.Promotion) error
	Delete(ctx context.Context, id int64) error
}
