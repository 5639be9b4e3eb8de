package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64           `gorm:"not null;index" json:"order_id"`
	BookID            int64           `gorm:"not null;index" json:"book_id"`
	TitleSnapshot     string          `gorm:"type:varchar(255);not null" json:"title_snapshot"`
	AuthorSnapshot    string          `gorm:"type:varchar(255);not null" json:"author_snapshot"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price_snapshot"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
