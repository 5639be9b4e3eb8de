package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type BookGormRepository struct {
	db *gorm.DB
}

// DI
func NewBookGormRepository(db *gorm.DB) *BookGormRepository {
	return &BookGormRepository{db: db}
}

func (r *BookGormRepository) ListAll(ctx context.Context) ([]model.Book, error) {
	books := []model.Book{}
	if err := r.db.WithContext(ctx).Order("title asc").Order("id asc").Find(&books).Error; err != nil {
		return []model.Book{}, err
	}
	return books, nil
}

// タイトル/著者/ISBN/カテゴリを対象に部分一致
func (r *BookGormRepository) Search(ctx context.Context, term string) ([]model.Book, error) {
	books := []model.Book{}
	like := "%" + strings.TrimSpace(term) + "%"

	err := r.db.WithContext(ctx).
		Where("title ILIKE ? OR author ILIKE ? OR isbn ILIKE ? OR category ILIKE ?", like, like, like, like).
		Order("title asc").
		Find(&books).Error
	if err != nil {
		return []model.Book{}, err
	}
	return books, nil
}

func (r *BookGormRepository) ListFeatured(ctx context.Context) ([]model.Book, error) {
	books := []model.Book{}
	if err := r.db.WithContext(ctx).Where("featured = ?", true).Order("id asc").Find(&books).Error; err != nil {
		return []model.Book{}, err
	}
	return books, nil
}

func (r *BookGormRepository) ListComingSoon(ctx context.Context, now time.Time) ([]model.Book, error) {
	books := []model.Book{}
	err := r.db.WithContext(ctx).
		Where("release_date IS NOT NULL AND release_date > ?", now).
		Order("release_date asc").
		Find(&books).Error
	if err != nil {
		return []model.Book{}, err
	}
	return books, nil
}

// IDで本を取得
func (r *BookGormRepository) FindByID(ctx context.Context, id int64) (model.Book, error) {
	var b model.Book
	err := r.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Book{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r *BookGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Book, error) {
	books := []model.Book{}
	if len(ids) == 0 {
		return books, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&books).Error; err != nil {
		return []model.Book{}, err
	}
	return books, nil
}

func (r *BookGormRepository) Create(ctx context.Context, b model.Book) (model.Book, error) {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		return model.Book{}, translateWriteError(err)
	}
	return b, nil
}

func (r *BookGormRepository) Update(ctx context.Context, b model.Book) error {
	res := r.db.WithContext(ctx).Model(&model.Book{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"isbn":              b.ISBN,
		"category":          b.Category,
		"author":            b.Author,
		"title":             b.Title,
		"cover_image":       b.CoverImage,
		"edition":           b.Edition,
		"publisher":         b.Publisher,
		"publication_year":  b.PublicationYear,
		"quantity_in_stock": b.QuantityInStock,
		"min_threshold":     b.MinThreshold,
		"buying_price":      b.BuyingPrice,
		"selling_price":     b.SellingPrice,
		"rating":            b.Rating,
		"featured":          b.Featured,
		"release_date":      b.ReleaseDate,
	})
	if res.Error != nil {
		return translateWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *BookGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
