package repository

import (
	"context"

	"pedeai/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// Create inserts the order together with its items.
func (r *OrderRepository) Create(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*entity.Order, error) {
	var o entity.Order
	if err := Conn(ctx, r.DB).Preload("Items").First(&o, id).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first. A nil status lists all.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint, status *entity.OrderStatus, limit int) ([]entity.Order, error) {
	q := Conn(ctx, r.DB).Preload("Items").Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []entity.Order
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// UpdateStatusGuard moves an order from one status to another only if it
// is still in from. Zero rows affected means someone else moved it first.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID uint, from, to entity.OrderStatus) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

type StatusTotal struct {
	Status entity.OrderStatus
	Count  int64
	Total  decimal.Decimal
}

// TotalsByStatus groups the user's orders by status.
func (r *OrderRepository) TotalsByStatus(ctx context.Context, userID uint) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := Conn(ctx, r.DB).Model(&entity.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}
