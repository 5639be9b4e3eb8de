package model

import "time"

// 保存済みのカード。請求先住所を1つ持つ
type PaymentCard struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"cardID"`
	UserID int64 `gorm:"not null;index" json:"userID"`

	//暗号化せずに返さないこと（レスポンスはマスクする）
	CardNo string `gorm:"type:varchar(32);not null" json:"-"`

	Type             string    `gorm:"type:varchar(30);not null" json:"type"`
	ExpirationDate   string    `gorm:"type:varchar(5);not null" json:"expirationDate"`
	BillingAddressID int64     `gorm:"not null;index" json:"billingAddressID"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"-"`
}

// 下4桁以外を伏せる
func MaskCardNo(cardNo string) string {
	digits := make([]byte, 0, len(cardNo))
	for i := 0; i < len(cardNo); i++ {
		if cardNo[i] >= '0' && cardNo[i] <= '9' {
			digits = append(digits, cardNo[i])
		}
	}
	last4 := string(digits)
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	return "**** **** **** " + last4
}
