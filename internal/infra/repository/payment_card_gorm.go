package repository

import (
	"context"
	"errors"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type paymentCardGormRepository struct {
	db *gorm.DB
}

func NewPaymentCardGormRepository(db *gorm.DB) repo.PaymentCardRepository {
	return &paymentCardGormRepository{db: db}
}

func (r *paymentCardGormRepository) Create(ctx context.Context, card model.PaymentCard) (model.PaymentCard, error) {
	if err := r.db.WithContext(ctx).Create(&card).Error; err != nil {
		return model.PaymentCard{}, err
	}
	return card, nil
}

func (r *paymentCardGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.PaymentCard, error) {
	list := []model.PaymentCard{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *paymentCardGormRepository) FindByID(ctx context.Context, cardID int64) (model.PaymentCard, error) {
	var c model.PaymentCard
	err := r.db.WithContext(ctx).First(&c, cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentCard{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PaymentCard{}, err
	}
	return c, nil
}

func (r *paymentCardGormRepository) Delete(ctx context.Context, cardID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.PaymentCard{}, cardID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
