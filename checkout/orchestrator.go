// Package checkout drives order submission on the client: it keeps the
// address and payment selection, checks that an order can be placed and
// turns the cart into an order payload.
package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pedeai/client"
	"pedeai/entity"
	"pedeai/pkg/apperr"
)

// DefaultNavigateDelay is how long the success notice stays up before the
// order list is shown.
const DefaultNavigateDelay = 1500 * time.Millisecond

const (
	msgOrderPlaced   = "Order placed!"
	msgGenericFailed = "Could not place your order, please try again."
)

// API is the slice of the backend checkout talks to.
type API interface {
	Addresses(ctx context.Context) ([]entity.Address, error)
	Payments(ctx context.Context) ([]entity.PaymentMethod, error)
	CreateOrder(ctx context.Context, p client.OrderPayload) (*entity.Order, error)
}

// Cart is the client cart being checked out. cartstore.Store implements it.
type Cart interface {
	Cart() *entity.Cart
	// Wait returns once every mutation already submitted has settled.
	Wait(ctx context.Context) error
	// Reset empties the cart locally after the server consumed it.
	Reset()
}

type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

type Navigator interface {
	ToOrders()
}

type Orchestrator struct {
	api    API
	cart   Cart
	notify Notifier
	nav    Navigator
	log    *slog.Logger

	// NavigateDelay is the pause between a successful order and navigation.
	NavigateDelay time.Duration
	after         func(time.Duration, func())

	mu            sync.Mutex
	addresses     []entity.Address
	payments      []entity.PaymentMethod
	addressID     uint
	paymentID     uint
	addressPicked bool
	paymentPicked bool
	submitting    bool
}

func New(api API, cart Cart, notify Notifier, nav Navigator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		api: api, cart: cart, notify: notify, nav: nav,
		log:           logger.With("component", "checkout"),
		NavigateDelay: DefaultNavigateDelay,
		after:         func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Load fetches the saved addresses and payment methods. Defaults are
// selected unless the user already picked something that still exists.
func (o *Orchestrator) Load(ctx context.Context) error {
	addrs, err := o.api.Addresses(ctx)
	if err != nil {
		return err
	}
	pays, err := o.api.Payments(ctx)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.addresses, o.payments = addrs, pays

	if !o.addressPicked || findAddress(addrs, o.addressID) == nil {
		o.addressID, o.addressPicked = 0, false
		for _, a := range addrs {
			if a.IsDefault {
				o.addressID = a.ID
				break
			}
		}
	}
	if !o.paymentPicked || findPayment(pays, o.paymentID) == nil {
		o.paymentID, o.paymentPicked = 0, false
		for _, p := range pays {
			if p.IsDefault {
				o.paymentID = p.ID
				break
			}
		}
	}
	return nil
}

func (o *Orchestrator) SelectAddress(id uint) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if findAddress(o.addresses, id) == nil {
		return apperr.Validation("address %d is not one of your addresses", id)
	}
	o.addressID, o.addressPicked = id, true
	return nil
}

func (o *Orchestrator) SelectPayment(id uint) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if findPayment(o.payments, id) == nil {
		return apperr.Validation("payment method %d is not one of yours", id)
	}
	o.paymentID, o.paymentPicked = id, true
	return nil
}

// Selection returns the selected address and payment ids; zero means none.
func (o *Orchestrator) Selection() (addressID, paymentID uint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.addressID, o.paymentID
}

// CanSubmit reports whether an order could be placed right now.
func (o *Orchestrator) CanSubmit() bool {
	return o.Validate() == nil
}

func (o *Orchestrator) Validate() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _, err := o.preconditionsLocked(o.cart.Cart())
	return err
}

func (o *Orchestrator) preconditionsLocked(cart *entity.Cart) (*entity.Address, *entity.PaymentMethod, error) {
	addr := findAddress(o.addresses, o.addressID)
	if addr == nil {
		return nil, nil, apperr.Validation("select a delivery address")
	}
	pay := findPayment(o.payments, o.paymentID)
	if pay == nil {
		return nil, nil, apperr.Validation("select a payment method")
	}
	if cart.IsEmpty() {
		return nil, nil, apperr.Validation("your cart is empty")
	}
	return addr, pay, nil
}

// SubmitOrder places the order once the cart has no mutations in flight.
// On success the cart is emptied locally, the user is told and the order
// list is shown after NavigateDelay. On failure the cart is left alone and
// the backend's message, if any, is shown.
func (o *Orchestrator) SubmitOrder(ctx context.Context) (*entity.Order, error) {
	o.mu.Lock()
	if o.submitting {
		o.mu.Unlock()
		return nil, apperr.Validation("order is already being submitted")
	}
	o.submitting = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.submitting = false
		o.mu.Unlock()
	}()

	if err := o.cart.Wait(ctx); err != nil {
		return nil, err
	}

	o.mu.Lock()
	cart := o.cart.Cart()
	addr, pay, err := o.preconditionsLocked(cart)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	payload := buildPayload(cart, addr, pay)
	o.mu.Unlock()

	order, err := o.api.CreateOrder(ctx, payload)
	if err != nil {
		msg := msgGenericFailed
		if k := apperr.KindOf(err); k != "" && k != apperr.KindTransient {
			msg = apperr.MessageOf(err, msgGenericFailed)
		}
		o.log.WarnContext(ctx, "order submission failed", "err", err)
		o.notify.Failure(msg)
		return nil, err
	}

	// the server emptied the cart as part of the order
	o.cart.Reset()
	o.notify.Success(msgOrderPlaced)
	o.after(o.NavigateDelay, o.nav.ToOrders)
	return order, nil
}

// buildPayload copies the lines and recomputes the total from the copies.
func buildPayload(cart *entity.Cart, addr *entity.Address, pay *entity.PaymentMethod) client.OrderPayload {
	p := client.OrderPayload{
		AddressID:    addr.ID,
		PaymentID:    pay.ID,
		Items:        make([]client.OrderLine, 0, len(cart.Items)),
		Address:      addr.Formatted(),
		PaymentLabel: pay.Label(),
	}
	snapshot := &entity.Cart{Items: make([]entity.CartLine, len(cart.Items))}
	copy(snapshot.Items, cart.Items)
	for _, l := range snapshot.Items {
		p.Items = append(p.Items, client.OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	p.Total = snapshot.Total().Round(2)
	return p
}

func findAddress(list []entity.Address, id uint) *entity.Address {
	if id == 0 {
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func findPayment(list []entity.PaymentMethod, id uint) *entity.PaymentMethod {
	if id == 0 {
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
