package repository

import (
	"context"

	"pedeai/entity"
	"pedeai/pkg/apperr"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) FindByRestaurant(ctx context.Context, restID uint) ([]entity.Product, error) {
	var out []entity.Product
	err := Conn(ctx, r.DB).Where("restaurant_id = ?", restID).Order("id").Find(&out).Error
	return out, err
}

// Search matches product name, description, restaurant name and category.
// restID narrows the search to one restaurant when non-zero.
func (r *ProductRepository) Search(ctx context.Context, query string, restID uint) ([]entity.Product, error) {
	q := Conn(ctx, r.DB).Joins("Restaurant")
	if restID != 0 {
		q = q.Where("products.restaurant_id = ?", restID)
	}
	if p := likePattern(query); p != "" {
		q = q.Where(
			`LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER("Restaurant"."name") LIKE ? OR LOWER("Restaurant"."category") LIKE ?`,
			p, p, p, p,
		)
	}
	var out []entity.Product
	err := q.Order("products.id").Find(&out).Error
	return out, err
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*entity.Product, error) {
	var p entity.Product
	if err := Conn(ctx, r.DB).First(&p, id).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return Conn(ctx, r.DB).Omit("Restaurant").Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	return Conn(ctx, r.DB).Omit("Restaurant").Save(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := Conn(ctx, r.DB).Delete(&entity.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product")
	}
	return nil
}
