package model

import "time"

type AddressKind string

const (
	AddressKindBilling  AddressKind = "BILLING"
	AddressKindShipping AddressKind = "SHIPPING"
)

// 請求先・配送先の住所
type Address struct {
	ID     int64       `gorm:"primaryKey;autoIncrement" json:"addressID"`
	UserID int64       `gorm:"not null;index" json:"userID"`
	Kind   AddressKind `gorm:"type:varchar(20);not null;index" json:"kind"`

	Street  string `gorm:"type:varchar(255);not null" json:"street"`
	City    string `gorm:"type:varchar(255);not null" json:"city"`
	State   string `gorm:"type:varchar(100);not null" json:"state"`
	ZipCode string `gorm:"type:varchar(20);not null" json:"zipCode"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}
