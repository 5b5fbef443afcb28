// Package store defines the cart persistence boundary shared by the gorm
// repository and the in-memory mock adapter.
package store

import (
	"context"

	"pedeai/entity"
)

// MutateFunc edits a working copy of the cart. Returning an error discards
// the copy and leaves the stored cart untouched.
type MutateFunc func(ctx context.Context, c *entity.Cart) error

// CartStore persists one cart per user.
//
// Mutate calls for the same user are applied one at a time in the order they
// were submitted, so concurrent read-modify-write cycles never lose updates.
// The returned cart is the authoritative state after the mutation.
type CartStore interface {
	Load(ctx context.Context, userID uint) (*entity.Cart, error)
	Mutate(ctx context.Context, userID uint, fn MutateFunc) (*entity.Cart, error)
}
