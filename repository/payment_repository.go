package repository

import (
	"context"

	"pedeai/entity"
	"pedeai/pkg/apperr"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID uint) ([]entity.PaymentMethod, error) {
	var out []entity.PaymentMethod
	err := Conn(ctx, r.DB).Where("user_id = ?", userID).
		Order("is_default DESC").Order("id").
		Find(&out).Error
	return out, err
}

func (r *PaymentRepository) FindForUser(ctx context.Context, userID, id uint) (*entity.PaymentMethod, error) {
	var p entity.PaymentMethod
	if err := Conn(ctx, r.DB).Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
		return nil, notFound(err, "payment method")
	}
	return &p, nil
}

func (r *PaymentRepository) Create(tx *gorm.DB, p *entity.PaymentMethod) error {
	return tx.Create(p).Error
}

func (r *PaymentRepository) Save(tx *gorm.DB, p *entity.PaymentMethod) error {
	return tx.Save(p).Error
}

// ClearDefault unsets is_default on every method of the user except keepID.
func (r *PaymentRepository) ClearDefault(tx *gorm.DB, userID, keepID uint) error {
	return tx.Model(&entity.PaymentMethod{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keepID, true).
		Update("is_default", false).Error
}

func (r *PaymentRepository) Delete(tx *gorm.DB, userID, id uint) error {
	res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.PaymentMethod{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("payment method")
	}
	return nil
}

func (r *PaymentRepository) DeleteForUser(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&entity.PaymentMethod{}).Error
}
