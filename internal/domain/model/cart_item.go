package model

import "time"

// カートの明細
// 同じカートに同じ本は1行だけ（cart_id + book_id）。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:idx_cart_book" json:"cart_id"`
	BookID    int64     `gorm:"not null;uniqueIndex:idx_cart_book" json:"book_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
