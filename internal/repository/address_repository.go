package repository

import (
	"bookstore/internal/domain/model"
	"context"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はIDが埋まったものを返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーが持つ住所一覧（kindで絞る）
	ListByUserID(ctx context.Context, userID int64, kind model.AddressKind) ([]model.Address, error)

	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	Delete(ctx context.Context, addressID int64) error

	//住所がそのユーザーのものか
	IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error)
}
