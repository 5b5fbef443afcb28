package services

import (
	"context"
	"fmt"

	"pedeai/entity"
	"pedeai/pkg/apperr"

	"gorm.io/gorm"
)

// Transition moves an order to status to. Only one step forward along the
// delivery path, or cancellation of a live order, is accepted.
func (s *OrderService) Transition(ctx context.Context, orderID uint, to entity.OrderStatus) (*entity.Order, error) {
	if !to.Valid() {
		return nil, apperr.Validation("unknown order status %q", to)
	}
	o, err := s.Repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, o, to)
}

// Advance moves an order to the next status on the delivery path.
func (s *OrderService) Advance(ctx context.Context, orderID uint) (*entity.Order, error) {
	o, err := s.Repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	next, ok := o.Status.Next()
	if !ok {
		return nil, apperr.Rejected(fmt.Sprintf("order is already %s", o.Status))
	}
	return s.move(ctx, o, next)
}

// Cancel lets the owner or an admin cancel a live order.
func (s *OrderService) Cancel(ctx context.Context, userID uint, role string, orderID uint) (*entity.Order, error) {
	o, err := s.Get(ctx, userID, role, orderID)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, o, entity.OrderCancelled)
}

func (s *OrderService) move(ctx context.Context, o *entity.Order, to entity.OrderStatus) (*entity.Order, error) {
	from := o.Status
	if !from.CanTransition(to) {
		return nil, apperr.Rejected(fmt.Sprintf("order cannot go from %s to %s", from, to))
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.Repo.UpdateStatusGuard(tx, o.ID, from, to)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Rejected("order status changed meanwhile, reload and try again")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.Status = to
	s.Log.InfoContext(ctx, "order status changed", "order_id", o.ID, "from", from, "to", to)
	s.publish(ctx, o, from)
	return o, nil
}
