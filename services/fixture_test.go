package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pedeai/entity"
	"pedeai/events"
	"pedeai/repository"
	"pedeai/store"
	"pedeai/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (r *recorder) Publish(_ context.Context, e events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []events.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.OrderEvent(nil), r.events...)
}

// fixture is a migrated database with two restaurants, a customer with one
// address and one payment method, and every service wired to a gorm cart.
type fixture struct {
	db *gorm.DB

	carts    store.CartStore
	events   *recorder
	cart     *CartService
	orders   *OrderService
	address  *AddressService
	payments *PaymentService
	auth     *AuthService

	pizzeria, sushi entity.Restaurant
	margherita      entity.Product
	calabresa       entity.Product
	temaki          entity.Product

	userID  uint
	addr    *entity.Address
	payment *entity.PaymentMethod
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)

	f := &fixture{db: db, events: &recorder{}}
	f.carts = repository.NewCartRepository(db)

	products := repository.NewProductRepository(db)
	addresses := repository.NewAddressRepository(db)
	payments := repository.NewPaymentRepository(db)
	users := repository.NewUserRepository(db)

	f.cart = NewCartService(f.carts, products)
	f.orders = NewOrderService(db, repository.NewOrderRepository(db), f.carts, addresses, payments, f.events, discardLogger())
	f.address = NewAddressService(db, addresses, 2)
	f.payments = NewPaymentService(db, payments)
	f.payments.now = func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }
	f.auth = NewAuthService(db, users, f.carts, addresses, payments, "secret", time.Hour, discardLogger())

	f.pizzeria = entity.Restaurant{Name: "Pizzaria Napoli", Category: "Pizza", Rating: 4.7}
	f.sushi = entity.Restaurant{Name: "Sushi Kento", Category: "Japonesa", Rating: 4.5}
	require.NoError(t, db.Create(&f.pizzeria).Error)
	require.NoError(t, db.Create(&f.sushi).Error)

	f.margherita = entity.Product{RestaurantID: f.pizzeria.ID, Name: "Margherita", Price: decimal.RequireFromString("25.00")}
	f.calabresa = entity.Product{RestaurantID: f.pizzeria.ID, Name: "Calabresa", Price: decimal.RequireFromString("32.50")}
	f.temaki = entity.Product{RestaurantID: f.sushi.ID, Name: "Temaki", Price: decimal.RequireFromString("18.90")}
	for _, p := range []*entity.Product{&f.margherita, &f.calabresa, &f.temaki} {
		require.NoError(t, db.Omit("Restaurant").Create(p).Error)
	}

	session, err := f.auth.Register(ctx, &RegisterIn{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	f.userID = session.User.ID

	f.addr, err = f.address.Create(ctx, f.userID, &AddressIn{
		Street: ptr("Rua A"), Number: ptr("10"), Neighborhood: ptr("Centro"),
		City: ptr("Recife"), State: ptr("pe"), Zip: ptr("50000-123"),
	})
	require.NoError(t, err)

	f.payment, err = f.payments.Create(ctx, f.userID, &PaymentIn{Type: entity.PaymentPix})
	require.NoError(t, err)
	return f
}

func (f *fixture) add(t *testing.T, p entity.Product, qty int) *entity.Cart {
	t.Helper()
	c, err := f.cart.Add(context.Background(), f.userID, &AddToCartIn{ProductID: p.ID, Quantity: qty})
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }
