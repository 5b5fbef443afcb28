package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderPreparing  OrderStatus = "preparing"
	OrderDelivering OrderStatus = "delivering"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderFlow is the forward-only path; cancelled sits outside it.
var orderFlow = []OrderStatus{OrderPending, OrderConfirmed, OrderPreparing, OrderDelivering, OrderDelivered}

// OrderStatuses lists every status in display order.
var OrderStatuses = append(append([]OrderStatus{}, orderFlow...), OrderCancelled)

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Next is the status that follows s on the forward path.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, v := range orderFlow {
		if v == s && i+1 < len(orderFlow) {
			return orderFlow[i+1], true
		}
	}
	return "", false
}

// CanTransition allows one step forward, or cancellation from any
// non-terminal status.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if to == OrderCancelled {
		return true
	}
	next, ok := s.Next()
	return ok && next == to
}

// Order is an immutable snapshot of a checkout. Address and payment are
// copied as display text so the order stays readable after they change.
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Reference    string          `gorm:"uniqueIndex;size:36" json:"reference"`
	UserID       uint            `gorm:"index" json:"userId"`
	RestaurantID uint            `gorm:"index" json:"restaurantId"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	AddressID    uint            `json:"addressId"`
	Address      string          `json:"address"`
	PaymentID    uint            `json:"paymentId"`
	PaymentType  PaymentType     `gorm:"type:varchar(10)" json:"paymentType"`
	PaymentLabel string          `json:"paymentLabel"`
	Status       OrderStatus     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   uint            `gorm:"index" json:"-"`
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
}

// SnapshotItems copies cart lines into order items.
func SnapshotItems(lines []CartLine) []OrderItem {
	out := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	return out
}
