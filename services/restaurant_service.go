package services

import (
	"context"
	"strings"

	"pedeai/entity"
	"pedeai/pkg/apperr"
	"pedeai/repository"
)

type RestaurantService struct {
	Repo     *repository.RestaurantRepository
	Products *repository.ProductRepository
}

func NewRestaurantService(repo *repository.RestaurantRepository, products *repository.ProductRepository) *RestaurantService {
	return &RestaurantService{Repo: repo, Products: products}
}

type RestaurantIn struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Rating   *float64 `json:"rating"`
}

// List returns every restaurant, or those whose name or category matches q.
func (s *RestaurantService) List(ctx context.Context, q string) ([]entity.Restaurant, error) {
	return s.Repo.FindAll(ctx, q)
}

func (s *RestaurantService) Get(ctx context.Context, id uint) (*entity.Restaurant, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *RestaurantService) Menu(ctx context.Context, id uint) ([]entity.Product, error) {
	if _, err := s.Repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.Products.FindByRestaurant(ctx, id)
}

func (s *RestaurantService) Create(ctx context.Context, in *RestaurantIn) (*entity.Restaurant, error) {
	rest := &entity.Restaurant{}
	if err := in.apply(rest); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, rest); err != nil {
		return nil, err
	}
	return rest, nil
}

func (s *RestaurantService) Update(ctx context.Context, id uint, in *RestaurantIn) (*entity.Restaurant, error) {
	rest, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(rest); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, rest); err != nil {
		return nil, err
	}
	return rest, nil
}

func (s *RestaurantService) Delete(ctx context.Context, id uint) error {
	return s.Repo.Delete(ctx, id)
}

func (in *RestaurantIn) apply(r *entity.Restaurant) error {
	if in.Name != nil {
		r.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		r.Category = strings.TrimSpace(*in.Category)
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if r.Name == "" {
		return apperr.Validation("name is required")
	}
	if r.Rating < 0 || r.Rating > 5 {
		return apperr.Validation("rating must be between 0 and 5")
	}
	return nil
}
