// Package events fans order lifecycle events out to subscribers.
package events

import (
	"context"
	"errors"
	"time"

	"pedeai/entity"

	"github.com/shopspring/decimal"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type         string             `json:"type"`
	OrderID      uint               `json:"orderId"`
	Reference    string             `json:"reference"`
	UserID       uint               `json:"userId"`
	RestaurantID uint               `json:"restaurantId"`
	Status       entity.OrderStatus `json:"status"`
	Previous     entity.OrderStatus `json:"previous,omitempty"`
	Total        decimal.Decimal    `json:"total"`
	At           time.Time          `json:"at"`
}

// NewOrderEvent builds an event for o. previous is empty for new orders.
func NewOrderEvent(o *entity.Order, previous entity.OrderStatus) OrderEvent {
	typ := OrderStatusChanged
	if previous == "" {
		typ = OrderCreated
	}
	return OrderEvent{
		Type:         typ,
		OrderID:      o.ID,
		Reference:    o.Reference,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Status:       o.Status,
		Previous:     previous,
		Total:        o.Total,
		At:           time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e OrderEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
