package repository

import (
	"bookstore/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最後のログインなど
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
	//パスワードを差し替え、同時にトークンのバージョンも＋１
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	//有効かつ配信希望のユーザー
	ListPromotionSubscribers(ctx context.Context) ([]model.User, error)
}
