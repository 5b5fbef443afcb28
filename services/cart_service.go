package services

import (
	"context"

	"pedeai/entity"
	"pedeai/pkg/apperr"
	"pedeai/repository"
	"pedeai/store"
)

// CartService applies cart operations through a CartStore. Product name,
// price and restaurant always come from the catalog, never from the client.
type CartService struct {
	Carts    store.CartStore
	Products *repository.ProductRepository
}

func NewCartService(carts store.CartStore, products *repository.ProductRepository) *CartService {
	return &CartService{Carts: carts, Products: products}
}

type AddToCartIn struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateQuantityIn struct {
	// Quantity <= 0 removes the line.
	Quantity *int `json:"quantity" binding:"required"`
}

func (s *CartService) Get(ctx context.Context, userID uint) (*entity.Cart, error) {
	return s.Carts.Load(ctx, userID)
}

// Add merges the product into the cart. A product from another restaurant
// than the one already in the cart fails with a cross-restaurant conflict.
func (s *CartService) Add(ctx context.Context, userID uint, in *AddToCartIn) (*entity.Cart, error) {
	if in.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	p, err := s.Products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	line := entity.CartLine{
		ProductID:    p.ID,
		RestaurantID: p.RestaurantID,
		Name:         p.Name,
		Price:        p.Price,
		Quantity:     in.Quantity,
	}
	return s.Carts.Mutate(ctx, userID, func(_ context.Context, c *entity.Cart) error {
		return c.Add(line)
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*entity.Cart, error) {
	return s.Carts.Mutate(ctx, userID, func(_ context.Context, c *entity.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) (*entity.Cart, error) {
	return s.Carts.Mutate(ctx, userID, func(_ context.Context, c *entity.Cart) error {
		c.Remove(productID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID uint) (*entity.Cart, error) {
	return s.Carts.Mutate(ctx, userID, func(_ context.Context, c *entity.Cart) error {
		c.Clear()
		return nil
	})
}
