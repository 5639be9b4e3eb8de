package storage

import (
	"context"
	"errors"
)

// キーが存在しない
var ErrNotFound = errors.New("storage: key not found")

// ローカルのカート・注文履歴の保存先
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
