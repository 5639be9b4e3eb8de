package repository

import (
	"bookstore/internal/domain/model"
	"context"
	"time"
)

// 本の永続化（保存・取得）だけを約束。
type BookRepository interface {
	ListAll(ctx context.Context) ([]model.Book, error)
	//タイトル・著者・ISBN・カテゴリの部分一致
	Search(ctx context.Context, term string) ([]model.Book, error)
	ListFeatured(ctx context.Context) ([]model.Book, error)
	//発売日がnowより後のもの
	ListComingSoon(ctx context.Context, now time.Time) ([]model.Book, error)

	FindByID(ctx context.Context, id int64) (model.Book, error)
	//見つからないIDは結果に含めない
	FindByIDs(ctx context.Context, ids []int64) ([]model.Book, error)

	Create(ctx context.Context, b model.Book) (model.Book, error)
	Update(ctx context.Context, b model.Book) error
	SoftDelete(ctx context.Context, id int64) error
}
