package entity

import (
	"fmt"
	"strings"
	"time"
)

type Address struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index" json:"-"`
	Street       string    `json:"street"`
	Number       string    `json:"number"`
	Complement   string    `json:"complement,omitempty"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `gorm:"size:2" json:"state"`
	Zip          string    `gorm:"size:8" json:"zip"`
	IsDefault    bool      `json:"isDefault"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Formatted is the one-line form copied into orders.
func (a Address) Formatted() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s", a.Street, a.Number)
	if a.Complement != "" {
		fmt.Fprintf(&b, " (%s)", a.Complement)
	}
	b.WriteString(" - ")
	if a.Neighborhood != "" {
		fmt.Fprintf(&b, "%s, ", a.Neighborhood)
	}
	fmt.Fprintf(&b, "%s/%s", a.City, a.State)
	if len(a.Zip) == 8 {
		fmt.Fprintf(&b, " %s-%s", a.Zip[:5], a.Zip[5:])
	}
	return b.String()
}
