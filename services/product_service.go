package services

import (
	"context"
	"strings"

	"pedeai/entity"
	"pedeai/pkg/apperr"
	"pedeai/repository"

	"github.com/shopspring/decimal"
)

type ProductService struct {
	Repo        *repository.ProductRepository
	Restaurants *repository.RestaurantRepository
}

func NewProductService(repo *repository.ProductRepository, restaurants *repository.RestaurantRepository) *ProductService {
	return &ProductService{Repo: repo, Restaurants: restaurants}
}

type ProductIn struct {
	RestaurantID *uint            `json:"restaurantId"`
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Image        *string          `json:"image"`
}

// Search matches q against product and restaurant text. restID narrows the
// result to one restaurant when non-zero.
func (s *ProductService) Search(ctx context.Context, q string, restID uint) ([]entity.Product, error) {
	return s.Repo.Search(ctx, q, restID)
}

func (s *ProductService) Get(ctx context.Context, id uint) (*entity.Product, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, in *ProductIn) (*entity.Product, error) {
	p := &entity.Product{}
	if err := s.apply(ctx, in, p); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in *ProductIn) (*entity.Product, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, in, p); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	return s.Repo.Delete(ctx, id)
}

func (s *ProductService) apply(ctx context.Context, in *ProductIn, p *entity.Product) error {
	if in.RestaurantID != nil {
		p.RestaurantID = *in.RestaurantID
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = in.Price.Round(2)
	}
	if in.Image != nil {
		p.Image = strings.TrimSpace(*in.Image)
	}

	if p.Name == "" {
		return apperr.Validation("name is required")
	}
	if !p.Price.IsPositive() {
		return apperr.Validation("price must be greater than zero")
	}
	if p.RestaurantID == 0 {
		return apperr.Validation("restaurantId is required")
	}
	ok, err := s.Restaurants.Exists(ctx, p.RestaurantID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("restaurant")
	}
	return nil
}
