package model

import "time"

// プロモーション（割引コード）
type Promotion struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"promoID"`

	//大文字で保存する
	PromoCode string `gorm:"type:varchar(50);not null;uniqueIndex" json:"promoCode"`

	//割引率（1〜100 %）
	Discount int `gorm:"not null" json:"discount"`

	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"not null" json:"endDate"`

	//会員にメール配信済みか
	Pushed bool `gorm:"not null;default:false" json:"pushed"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}

// 終了日を過ぎたものは配信しない
func (p Promotion) HasEnded(now time.Time) bool {
	return now.After(p.EndDate)
}
