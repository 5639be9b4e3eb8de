package model

import "time"

type CartStatus string

// 注文後も同じカートを使い回す（明細だけ空にする）
const CartStatusActive CartStatus = "ACTIVE"

// ログイン中ユーザーのサーバー側カート。1ユーザーに1つ
type Cart struct {
	ID     int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64      `gorm:"not null;uniqueIndex" json:"userID"`
	Status CartStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`

	//最後にゲストカートを取り込んだ時刻
	LastMergedAt *time.Time `json:"lastMergedAt"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}
