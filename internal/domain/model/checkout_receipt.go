package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// /api/checkout/process の受付記録。同じキーの再送には同じ確認番号を返す
type CheckoutReceipt struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"-"`

	//ゲストは0
	UserID         int64  `gorm:"not null;uniqueIndex:idx_checkout_receipt_key" json:"-"`
	IdempotencyKey string `gorm:"type:varchar(255);not null;uniqueIndex:idx_checkout_receipt_key" json:"-"`

	ConfirmationID string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"confirmationID"`
	MaskedCardNo   string          `gorm:"type:varchar(32);not null" json:"maskedCardNo"`
	Total          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	EmailSent      bool            `gorm:"not null;default:false" json:"emailSent"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
}
