package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Category  string    `gorm:"index" json:"category"`
	Rating    float64   `json:"rating"`
	Products  []Product `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RestaurantID uint            `gorm:"index;not null" json:"restaurantId"`
	Restaurant   *Restaurant     `json:"restaurant,omitempty"`
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Image        string          `json:"image,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
