package repository

import (
	"context"
	"errors"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type CheckoutReceiptGormRepository struct {
	db *gorm.DB
}

func NewCheckoutReceiptGormRepository(db *gorm.DB) *CheckoutReceiptGormRepository {
	return &CheckoutReceiptGormRepository{db: db}
}

func (r *CheckoutReceiptGormRepository) FindByKey(ctx context.Context, userID int64, key string) (model.CheckoutReceipt, bool, error) {
	var rc model.CheckoutReceipt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&rc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CheckoutReceipt{}, false, nil
	}
	if err != nil {
		return model.CheckoutReceipt{}, false, err
	}
	return rc, true, nil
}

func (r *CheckoutReceiptGormRepository) Create(ctx context.Context, rc *model.CheckoutReceipt) error {
	return translateWriteError(r.db.WithContext(ctx).Create(rc).Error)
}

func (r *CheckoutReceiptGormRepository) MarkEmailSent(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CheckoutReceipt{}).
		Where("id = ?", id).
		Update("email_sent", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
