package entity

import "time"

type PaymentType string

const (
	PaymentCredit PaymentType = "credit"
	PaymentDebit  PaymentType = "debit"
	PaymentPix    PaymentType = "pix"
	PaymentCash   PaymentType = "cash"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentCredit, PaymentDebit, PaymentPix, PaymentCash:
		return true
	}
	return false
}

// RequiresCard reports whether card fields are mandatory for t.
func (t PaymentType) RequiresCard() bool {
	return t == PaymentCredit || t == PaymentDebit
}

// PaymentMethod is a saved way to pay. Only the last four card digits are
// stored; the full number and CVV never reach the database.
type PaymentMethod struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     uint        `gorm:"index" json:"-"`
	Type       PaymentType `gorm:"type:varchar(10);not null" json:"type"`
	Last4      string      `gorm:"size:4" json:"last4,omitempty"`
	HolderName string      `json:"holderName,omitempty"`
	Expiry     string      `gorm:"size:5" json:"expiry,omitempty"`
	IsDefault  bool        `json:"isDefault"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Label is the human-readable form copied into orders.
func (p PaymentMethod) Label() string {
	switch p.Type {
	case PaymentCredit:
		return "Crédito •••• " + p.Last4
	case PaymentDebit:
		return "Débito •••• " + p.Last4
	case PaymentPix:
		return "PIX"
	case PaymentCash:
		return "Dinheiro"
	}
	return string(p.Type)
}
