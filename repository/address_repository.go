package repository

import (
	"context"

	"pedeai/entity"
	"pedeai/pkg/apperr"

	"gorm.io/gorm"
)

type AddressRepository struct {
	DB *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{DB: db}
}

// Default address first, then oldest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Address, error) {
	var out []entity.Address
	err := Conn(ctx, r.DB).Where("user_id = ?", userID).
		Order("is_default DESC").Order("id").
		Find(&out).Error
	return out, err
}

func (r *AddressRepository) FindForUser(ctx context.Context, userID, id uint) (*entity.Address, error) {
	var a entity.Address
	if err := Conn(ctx, r.DB).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, notFound(err, "address")
	}
	return &a, nil
}

func (r *AddressRepository) CountByUser(tx *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := tx.Model(&entity.Address{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *AddressRepository) Create(tx *gorm.DB, a *entity.Address) error {
	return tx.Create(a).Error
}

func (r *AddressRepository) Save(tx *gorm.DB, a *entity.Address) error {
	return tx.Save(a).Error
}

// ClearDefault unsets is_default on every address of the user except keepID.
func (r *AddressRepository) ClearDefault(tx *gorm.DB, userID, keepID uint) error {
	return tx.Model(&entity.Address{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keepID, true).
		Update("is_default", false).Error
}

func (r *AddressRepository) Delete(tx *gorm.DB, userID, id uint) error {
	res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("address")
	}
	return nil
}

func (r *AddressRepository) DeleteForUser(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&entity.Address{}).Error
}
