package services

import (
	"context"
	"log/slog"

	"pedeai/entity"
	"pedeai/events"
	"pedeai/pkg/apperr"
	"pedeai/repository"
	"pedeai/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService struct {
	DB        *gorm.DB
	Repo      *repository.OrderRepository
	Carts     store.CartStore
	Addresses *repository.AddressRepository
	Payments  *repository.PaymentRepository
	Events    events.Publisher
	Log       *slog.Logger
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	carts store.CartStore,
	addresses *repository.AddressRepository,
	payments *repository.PaymentRepository,
	pub events.Publisher,
	logger *slog.Logger,
) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		DB: db, Repo: repo, Carts: carts,
		Addresses: addresses, Payments: payments,
		Events: pub, Log: logger,
	}
}

// CheckoutIn is the order submission. Address and PaymentLabel are the
// display strings the client showed; the server stores its own snapshot.
// Total and Items, when sent, must match the server's cart.
type CheckoutIn struct {
	AddressID    uint             `json:"addressId" binding:"required"`
	PaymentID    uint             `json:"paymentId" binding:"required"`
	Items        []CheckoutLine   `json:"items"`
	Total        *decimal.Decimal `json:"total"`
	Address      string           `json:"address"`
	PaymentLabel string           `json:"paymentLabel"`
}

type CheckoutLine struct {
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

const (
	msgTotalChanged = "cart total changed, review your cart before ordering"
	msgCartChanged  = "cart changed, review your cart before ordering"
)

// sameLines reports whether the client's lines name the same products and
// quantities as the cart, in any order.
func sameLines(c *entity.Cart, lines []CheckoutLine) bool {
	if len(lines) != len(c.Items) {
		return false
	}
	for _, l := range lines {
		got, ok := c.Find(l.ProductID)
		if !ok || got.Quantity != l.Quantity {
			return false
		}
	}
	return true
}

// Checkout turns the user's cart into an order and clears the cart in the
// same cart mutation. Any failure leaves the cart as it was.
func (s *OrderService) Checkout(ctx context.Context, userID uint, in *CheckoutIn) (*entity.Order, error) {
	addr, err := s.Addresses.FindForUser(ctx, userID, in.AddressID)
	if err != nil {
		return nil, err
	}
	pay, err := s.Payments.FindForUser(ctx, userID, in.PaymentID)
	if err != nil {
		return nil, err
	}

	var order *entity.Order
	_, err = s.Carts.Mutate(ctx, userID, func(ctx context.Context, c *entity.Cart) error {
		if c.IsEmpty() {
			return apperr.Validation("cart is empty")
		}
		total := c.Total().Round(2)
		if len(in.Items) > 0 && !sameLines(c, in.Items) {
			return apperr.Rejected(msgCartChanged)
		}
		if in.Total != nil && !in.Total.Equal(total) {
			return apperr.Rejected(msgTotalChanged)
		}

		o := &entity.Order{
			Reference:    uuid.NewString(),
			UserID:       userID,
			RestaurantID: *c.RestaurantID,
			Items:        entity.SnapshotItems(c.Items),
			Total:        total,
			AddressID:    addr.ID,
			Address:      addr.Formatted(),
			PaymentID:    pay.ID,
			PaymentType:  pay.Type,
			PaymentLabel: pay.Label(),
			Status:       entity.OrderPending,
		}
		if err := s.Repo.Create(repository.Conn(ctx, s.DB), o); err != nil {
			return err
		}
		order = o
		c.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.InfoContext(ctx, "order placed", "order_id", order.ID, "user_id", userID, "total", order.Total.StringFixed(2))
	s.publish(ctx, order, "")
	return order, nil
}

// Get returns an order visible to the caller. Other users' orders look
// missing rather than forbidden.
func (s *OrderService) Get(ctx context.Context, userID uint, role string, orderID uint) (*entity.Order, error) {
	o, err := s.Repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID && role != entity.RoleAdmin {
		return nil, apperr.NotFound("order")
	}
	return o, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uint, status string, limit int) ([]entity.Order, error) {
	var filter *entity.OrderStatus
	if status != "" {
		st := entity.OrderStatus(status)
		if !st.Valid() {
			return nil, apperr.Validation("unknown order status %q", status)
		}
		filter = &st
	}
	return s.Repo.ListByUser(ctx, userID, filter, limit)
}

type OrderStats struct {
	TotalOrders     int64                        `json:"totalOrders"`
	ByStatus        map[entity.OrderStatus]int64 `json:"byStatus"`
	TotalSpent      decimal.Decimal              `json:"totalSpent"`
	CompletedOrders int64                        `json:"completedOrders"`
	CancelledOrders int64                        `json:"cancelledOrders"`
	AverageTicket   decimal.Decimal              `json:"averageTicket"`
}

// Stats summarizes the user's history. Spending excludes cancelled orders
// and the average ticket divides it by the delivered count.
func (s *OrderService) Stats(ctx context.Context, userID uint) (*OrderStats, error) {
	rows, err := s.Repo.TotalsByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &OrderStats{ByStatus: make(map[entity.OrderStatus]int64, len(rows)), TotalSpent: decimal.Zero, AverageTicket: decimal.Zero}
	for _, r := range rows {
		out.ByStatus[r.Status] = r.Count
		out.TotalOrders += r.Count
		if r.Status != entity.OrderCancelled {
			out.TotalSpent = out.TotalSpent.Add(r.Total)
		}
	}
	out.CompletedOrders = out.ByStatus[entity.OrderDelivered]
	out.CancelledOrders = out.ByStatus[entity.OrderCancelled]
	if out.CompletedOrders > 0 {
		out.AverageTicket = out.TotalSpent.Div(decimal.NewFromInt(out.CompletedOrders)).Round(2)
	}
	out.TotalSpent = out.TotalSpent.Round(2)
	return out, nil
}

func (s *OrderService) publish(ctx context.Context, o *entity.Order, previous entity.OrderStatus) {
	if err := s.Events.Publish(ctx, events.NewOrderEvent(o, previous)); err != nil {
		s.Log.WarnContext(ctx, "publish order event", "order_id", o.ID, "err", err)
	}
}
