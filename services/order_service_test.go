package services

import (
	"context"
	"errors"
	"testing"

	"pedeai/entity"
	"pedeai/events"
	"pedeai/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_CreatesSnapshotAndClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, f.margherita, 2)
	f.add(t, f.calabresa, 1)

	total := decimal.RequireFromString("82.50")
	o, err := f.orders.Checkout(ctx, f.userID, &CheckoutIn{AddressID: f.addr.ID, PaymentID: f.payment.ID, Total: &total})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Equal(t, "82.50", o.Total.StringFixed(2))
	assert.Equal(t, f.pizzeria.ID, o.RestaurantID)
	assert.Equal(t, "Rua A, 10 - Centro, Recife/PE 50000-123", o.Address)
	assert.Equal(t, "PIX", o.PaymentLabel)
	assert.NotEmpty(t, o.Reference)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "50.00", o.Items[0].Subtotal.StringFixed(2))

	c, err := f.cart.Get(ctx, f.userID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	got := f.events.all()
	require.Len(t, got, 1)
	assert.Equal(t, events.OrderCreated, got[0].Type)
	assert.Equal(t, o.ID, got[0].OrderID)
}

func TestCheckout_SnapshotSurvivesAddressEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, f.margherita, 1)

	o, err := f.orders.Checkout(ctx, f.userID, &CheckoutIn{AddressID: f.addr.ID, PaymentID: f.payment.ID})
	require.NoError(t, err)

	_, err = f.address.Update(ctx, f.userID, f.addr.ID, &AddressIn{Street: ptr("Rua Nova")})
	require.NoError(t, err)

	got, err := f.orders.Get(ctx, f.userID, entity.RoleCustomer, o.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Address, "Rua A")
}

func TestCheckout_FailuresLeaveCartUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, f.margherita, 2)

	stale := decimal.RequireFromString("25.00")
	tests := []struct {
		name string
		in   CheckoutIn
		kind error
	}{
		{"stale total", CheckoutIn{AddressID: f.addr.ID, PaymentID: f.payment.ID, Total: &stale}, apperr.ErrRejected},
		{"stale items", CheckoutIn{AddressID: f.addr.ID, PaymentID: f.payment.ID, Items: []CheckoutLine{{ProductID: f.margherita.ID, Quantity: 1}}}, apperr.ErrRejected},
		{"unknown address", CheckoutIn{AddressID: 999, PaymentID: f.payment.ID}, apperr.ErrNotFound},
		{"unknown payment", CheckoutIn{AddressID: f.addr.ID, PaymentID: 999}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.Checkout(ctx, f.userID, &tt.in)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)

			c, err := f.cart.Get(ctx, f.userID)
			require.NoError(t, err)
			require.Len(t, c.Items, 1)
			assert.Equal(t, 2, c.Items[0].Quantity)
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&entity.Order{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, f.events.all())
}

func TestCheckout_TotalMismatchMessage(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.margherita, 1)

	wrong := decimal.RequireFromString("1.00")
	_, err := f.orders.Checkout(context.Background(), f.userID, &CheckoutIn{AddressID: f.addr.ID, PaymentID: f.payment.ID, Total: &wrong})
	assert.Equal(t, msgTotalChanged, apperr.MessageOf(err, ""))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Checkout(context.Background(), f.userID, &CheckoutIn{AddressID: f.addr.ID, PaymentID: f.payment.ID})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCheckout_OtherUsersAddressIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other, err := f.auth.Register(ctx, &RegisterIn{Name: "Bia", Email: "bia@example.com", Password: "secret2"})
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, other.User.ID, &AddToCartIn{ProductID: f.temaki.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.orders.Checkout(ctx, other.User.ID, &CheckoutIn{AddressID: f.addr.ID, PaymentID: f.payment.ID})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func placeOrder(t *testing.T, f *fixture, p entity.Product, qty int) *entity.Order {
	t.Helper()
	f.add(t, p, qty)
	o, err := f.orders.Checkout(context.Background(), f.userID, &CheckoutIn{AddressID: f.addr.ID, PaymentID: f.payment.ID})
	require.NoError(t, err)
	return o
}

func TestOrderTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := placeOrder(t, f, f.margherita, 1)

	for _, want := range []entity.OrderStatus{entity.OrderConfirmed, entity.OrderPreparing, entity.OrderDelivering, entity.OrderDelivered} {
		got, err := f.orders.Advance(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	_, err := f.orders.Advance(ctx, o.ID)
	assert.True(t, errors.Is(err, apperr.ErrRejected))
	_, err = f.orders.Cancel(ctx, f.userID, entity.RoleCustomer, o.ID)
	assert.True(t, errors.Is(err, apperr.ErrRejected), "delivered orders cannot be cancelled")

	last := f.events.all()[len(f.events.all())-1]
	assert.Equal(t, events.OrderStatusChanged, last.Type)
	assert.Equal(t, entity.OrderDelivering, last.Previous)
	assert.Equal(t, entity.OrderDelivered, last.Status)
}

func TestOrderTransition_SkippingIsRejected(t *testing.T) {
	f := newFixture(t)
	o := placeOrder(t, f, f.margherita, 1)

	_, err := f.orders.Transition(context.Background(), o.ID, entity.OrderDelivered)
	assert.True(t, errors.Is(err, apperr.ErrRejected))

	_, err = f.orders.Transition(context.Background(), o.ID, "lost")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestOrderCancel_OwnerOrAdminOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := placeOrder(t, f, f.margherita, 1)

	_, err := f.orders.Cancel(ctx, f.userID+100, entity.RoleCustomer, o.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	got, err := f.orders.Cancel(ctx, f.userID+100, entity.RoleAdmin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, got.Status)
}

func TestOrderStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	delivered := placeOrder(t, f, f.margherita, 2) // 50.00
	for i := 0; i < 4; i++ {
		_, err := f.orders.Advance(ctx, delivered.ID)
		require.NoError(t, err)
	}
	cancelled := placeOrder(t, f, f.calabresa, 1) // 32.50
	_, err := f.orders.Cancel(ctx, f.userID, entity.RoleCustomer, cancelled.ID)
	require.NoError(t, err)
	placeOrder(t, f, f.temaki, 1) // 18.90, pending

	stats, err := f.orders.Stats(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.CompletedOrders)
	assert.Equal(t, int64(1), stats.CancelledOrders)
	assert.Equal(t, int64(1), stats.ByStatus[entity.OrderPending])
	assert.Equal(t, "68.90", stats.TotalSpent.StringFixed(2))
	assert.Equal(t, "68.90", stats.AverageTicket.StringFixed(2))

	list, err := f.orders.ListForUser(ctx, f.userID, "cancelled", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cancelled.ID, list[0].ID)

	_, err = f.orders.ListForUser(ctx, f.userID, "bogus", 0)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestOrderStats_NoOrders(t *testing.T) {
	f := newFixture(t)
	stats, err := f.orders.Stats(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.AverageTicket.IsZero())
}
