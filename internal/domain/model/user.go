package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone        string `gorm:"type:varchar(30)" json:"phone"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	TokenVersion int    `gorm:"not null;default:0" json:"token_version"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`

	//プロモーションのお知らせを受け取るか
	EnrollForPromotions bool `gorm:"not null;default:false" json:"enroll_for_promotions"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
