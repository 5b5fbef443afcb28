package cartstore

import (
	"context"

	"pedeai/entity"
	"pedeai/store"
)

// LocalBackend serves one user's cart straight from a CartStore, such as
// the mock adapter, without going over HTTP.
type LocalBackend struct {
	Store  store.CartStore
	UserID uint
}

var _ Backend = LocalBackend{}

func (b LocalBackend) Cart(ctx context.Context) (*entity.Cart, error) {
	return b.Store.Load(ctx, b.UserID)
}

func (b LocalBackend) AddItem(ctx context.Context, line entity.CartLine) (*entity.Cart, error) {
	return b.Store.Mutate(ctx, b.UserID, func(_ context.Context, c *entity.Cart) error {
		return c.Add(line)
	})
}

func (b LocalBackend) UpdateQuantity(ctx context.Context, productID uint, quantity int) (*entity.Cart, error) {
	return b.Store.Mutate(ctx, b.UserID, func(_ context.Context, c *entity.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
}

func (b LocalBackend) RemoveItem(ctx context.Context, productID uint) (*entity.Cart, error) {
	return b.Store.Mutate(ctx, b.UserID, func(_ context.Context, c *entity.Cart) error {
		c.Remove(productID)
		return nil
	})
}

func (b LocalBackend) ClearCart(ctx context.Context) (*entity.Cart, error) {
	return b.Store.Mutate(ctx, b.UserID, func(_ context.Context, c *entity.Cart) error {
		c.Clear()
		return nil
	})
}
