package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Book struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ISBN            string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"isbn"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	Author          string          `gorm:"type:varchar(255);not null" json:"author"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	CoverImage      string          `gorm:"type:text" json:"coverImage"`
	Edition         string          `gorm:"type:varchar(50)" json:"edition"`
	Publisher       string          `gorm:"type:varchar(255)" json:"publisher"`
	PublicationYear int             `json:"publicationYear"`
	QuantityInStock int64           `gorm:"not null;default:0" json:"quantityInStock"`
	MinThreshold    int64           `gorm:"not null;default:0" json:"minThreshold"`
	BuyingPrice     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"buyingPrice"`
	SellingPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"sellingPrice"`
	Rating          float64         `json:"rating"`

	//トップページの「おすすめ」に出すか
	Featured bool `gorm:"not null;default:false;index" json:"featured"`

	//未来日なら「近日発売」扱い
	ReleaseDate *time.Time `gorm:"index" json:"releaseDate"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
