package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文は作成後に変更しない
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64           `gorm:"not null;index" json:"user_id"`
	PromoID        *int64          `json:"promo_id"`
	PromoCode      string          `gorm:"type:varchar(50)" json:"promo_code"`
	GrandTotal     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"grand_total"`
	IdempotencyKey string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
