package entity

import (
	"time"

	"pedeai/pkg/apperr"

	"github.com/shopspring/decimal"
)

// Cart is the per-user cart. RestaurantID is nil iff Items is empty.
type Cart struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	UserID       uint       `gorm:"uniqueIndex" json:"-"`
	RestaurantID *uint      `json:"restaurantId"`
	Items        []CartLine `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CartLine is one product in the cart. Position keeps insertion order
// across a DB round trip.
type CartLine struct {
	ID           uint            `gorm:"primaryKey" json:"-"`
	CartID       uint            `gorm:"index" json:"-"`
	Position     int             `json:"-"`
	ProductID    uint            `json:"productId"`
	RestaurantID uint            `json:"restaurantId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Quantity     int             `json:"quantity"`
}

// Subtotal is price × quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Add merges line into the cart. A line from another restaurant is refused
// while the cart is non-empty and the cart is left as it was.
func (c *Cart) Add(line CartLine) error {
	if line.Quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	if line.ProductID == 0 || line.RestaurantID == 0 {
		return apperr.Validation("productId and restaurantId are required")
	}
	if line.Price.IsNegative() {
		return apperr.Validation("price cannot be negative")
	}
	if c.RestaurantID != nil && !c.IsEmpty() && *c.RestaurantID != line.RestaurantID {
		return apperr.CrossRestaurant(*c.RestaurantID, line.RestaurantID)
	}

	if i := c.index(line.ProductID); i >= 0 {
		c.Items[i].Quantity += line.Quantity
		return nil
	}

	line.ID, line.CartID = 0, c.ID
	line.Price = line.Price.Round(2)
	line.Position = len(c.Items)
	c.Items = append(c.Items, line)
	rid := line.RestaurantID
	c.RestaurantID = &rid
	return nil
}

// SetQuantity sets the absolute quantity of a line; quantity <= 0 removes it.
func (c *Cart) SetQuantity(productID uint, quantity int) error {
	if quantity <= 0 {
		c.Remove(productID)
		return nil
	}
	i := c.index(productID)
	if i < 0 {
		return apperr.NotFound("cart item")
	}
	c.Items[i].Quantity = quantity
	return nil
}

// Remove drops the line for productID. Removing a missing product is a no-op.
func (c *Cart) Remove(productID uint) {
	if i := c.index(productID); i >= 0 {
		c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
	}
	c.renumber()
	if c.IsEmpty() {
		c.RestaurantID = nil
	}
}

func (c *Cart) Clear() {
	c.Items = nil
	c.RestaurantID = nil
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Items {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Find(productID uint) (CartLine, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartLine{}, false
}

// Clone returns a deep copy; the copy shares no line storage with c.
func (c *Cart) Clone() *Cart {
	out := *c
	if c.RestaurantID != nil {
		rid := *c.RestaurantID
		out.RestaurantID = &rid
	}
	if c.Items != nil {
		out.Items = make([]CartLine, len(c.Items))
		copy(out.Items, c.Items)
	}
	return &out
}

// Validate checks the cart invariants: positive quantities, unique products,
// one restaurant, and RestaurantID set iff there are items.
func (c *Cart) Validate() error {
	if c.IsEmpty() {
		if c.RestaurantID != nil {
			return apperr.Validation("empty cart must not reference a restaurant")
		}
		return nil
	}
	if c.RestaurantID == nil {
		return apperr.Validation("non-empty cart must reference a restaurant")
	}
	seen := make(map[uint]struct{}, len(c.Items))
	for _, l := range c.Items {
		if l.Quantity < 1 {
			return apperr.Validation("product %d has quantity %d", l.ProductID, l.Quantity)
		}
		if l.RestaurantID != *c.RestaurantID {
			return apperr.Validation("product %d belongs to restaurant %d", l.ProductID, l.RestaurantID)
		}
		if _, dup := seen[l.ProductID]; dup {
			return apperr.Validation("product %d appears twice", l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}

func (c *Cart) index(productID uint) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) renumber() {
	for i := range c.Items {
		c.Items[i].Position = i
	}
}

// CartView is the wire form of a cart: lines in insertion order plus the
// derived total.
type CartView struct {
	RestaurantID *uint           `json:"restaurantId"`
	Items        []CartLine      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"itemCount"`
}

func (c *Cart) View() CartView {
	v := CartView{RestaurantID: c.RestaurantID, Items: make([]CartLine, len(c.Items)), Total: c.Total().Round(2)}
	copy(v.Items, c.Items)
	for _, l := range c.Items {
		v.ItemCount += l.Quantity
	}
	return v
}

// Cart rebuilds a cart from its wire form. Total and ItemCount are derived
// and ignored.
func (v CartView) Cart() *Cart {
	c := &Cart{}
	if v.RestaurantID != nil && len(v.Items) > 0 {
		rid := *v.RestaurantID
		c.RestaurantID = &rid
	}
	if len(v.Items) > 0 {
		c.Items = make([]CartLine, len(v.Items))
		copy(c.Items, v.Items)
		c.renumber()
	}
	return c
}
