package repository

import (
	"context"
	"errors"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type PromotionGormRepository struct {
	db *gorm.DB
}

func NewPromotionGormRepository(db *gorm.DB) *PromotionGormRepository {
	return &PromotionGormRepository{db: db}
}

func (r *PromotionGormRepository) List(ctx context.Context) ([]model.Promotion, error) {
	list := []model.Promotion{}
	if err := r.db.WithContext(ctx).Order("start_date desc").Order("id desc").Find(&list).Error; err != nil {
		return []model.Promotion{}, err
	}
	return list, nil
}

func (r *PromotionGormRepository) FindByID(ctx context.Context, id int64) (model.Promotion, error) {
	var p model.Promotion
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Promotion{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Promotion{}, err
	}
	return p, nil
}

func (r *PromotionGormRepository) FindByCode(ctx context.Context, code string) (model.Promotion, error) {
	var p model.Promotion
	err := r.db.WithContext(ctx).Where("promo_code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Promotion{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Promotion{}, err
	}
	return p, nil
}

func (r *PromotionGormRepository) Create(ctx context.Context, p model.Promotion) (model.Promotion, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Promotion{}, translateWriteError(err)
	}
	return p, nil
}

func (r *PromotionGormRepository) Update(ctx context.Context, p model.Promotion) error {
	res := r.db.WithContext(ctx).Model(&model.Promotion{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"promo_code": p.PromoCode,
		"discount":   p.Discount,
		"start_date": p.StartDate,
		"end_date":   p.EndDate,
		"pushed":     p.Pushed,
	})
	if res.Error != nil {
		return translateWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PromotionGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Promotion{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
