package repository

import (
	"context"
	"strings"

	"pedeai/entity"
	"pedeai/pkg/apperr"

	"gorm.io/gorm"
)

type RestaurantRepository struct {
	DB *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: db}
}

// FindAll lists restaurants, best rated first. A non-empty query filters on
// name and category.
func (r *RestaurantRepository) FindAll(ctx context.Context, query string) ([]entity.Restaurant, error) {
	q := Conn(ctx, r.DB)
	if p := likePattern(query); p != "" {
		q = q.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", p, p)
	}
	var out []entity.Restaurant
	err := q.Order("rating DESC").Order("id").Find(&out).Error
	return out, err
}

func (r *RestaurantRepository) FindByID(ctx context.Context, id uint) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	if err := Conn(ctx, r.DB).First(&rest, id).Error; err != nil {
		return nil, notFound(err, "restaurant")
	}
	return &rest, nil
}

func (r *RestaurantRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := Conn(ctx, r.DB).Model(&entity.Restaurant{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *RestaurantRepository) Create(ctx context.Context, rest *entity.Restaurant) error {
	return Conn(ctx, r.DB).Create(rest).Error
}

func (r *RestaurantRepository) Update(ctx context.Context, rest *entity.Restaurant) error {
	return Conn(ctx, r.DB).Omit("Products").Save(rest).Error
}

// Delete removes the restaurant and its products.
func (r *RestaurantRepository) Delete(ctx context.Context, id uint) error {
	return Conn(ctx, r.DB).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", id).Delete(&entity.Product{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Restaurant{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("restaurant")
		}
		return nil
	})
}

func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return ""
	}
	return "%" + q + "%"
}
