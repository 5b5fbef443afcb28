package entity

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `json:"-"`
	Phone     string    `json:"phone,omitempty"`
	BirthDate string    `json:"birthDate,omitempty"`
	Role      string    `gorm:"not null;default:customer" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// All returns every model for AutoMigrate, parents first.
func All() []any {
	return []any{
		&User{},
		&Restaurant{}, &Product{},
		&Cart{}, &CartLine{},
		&Address{}, &PaymentMethod{},
		&Order{}, &OrderItem{},
	}
}
